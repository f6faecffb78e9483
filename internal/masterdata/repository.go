package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListSuppliers returns suppliers ordered by name.
func (r *Repository) ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, error) {
	query := `SELECT id, code, name, gstin, phone, is_active, created_at FROM suppliers WHERE ($1 = '' OR name ILIKE '%' || $1 || '%') AND ($2::bool IS NULL OR is_active = $2) ORDER BY name`
	var active any
	if filters.IsActive != nil {
		active = *filters.IsActive
	}
	rows, err := r.pool.Query(ctx, query, filters.Search, active)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.GSTIN, &s.Phone, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// GetSupplier fetches one supplier.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, gstin, phone, is_active, created_at FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Code, &s.Name, &s.GSTIN, &s.Phone, &s.IsActive, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, ErrNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

// ListReasons returns return reasons, active first.
func (r *Repository) ListReasons(ctx context.Context) ([]ReturnReason, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, label, is_active FROM purchase_return_reasons ORDER BY is_active DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var reasons []ReturnReason
	for rows.Next() {
		var reason ReturnReason
		if err := rows.Scan(&reason.ID, &reason.Code, &reason.Label, &reason.IsActive); err != nil {
			return nil, err
		}
		reasons = append(reasons, reason)
	}
	return reasons, rows.Err()
}

// CreateReason inserts a reason and returns its id.
func (r *Repository) CreateReason(ctx context.Context, reason ReturnReason) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO purchase_return_reasons (code, label, is_active) VALUES ($1, $2, $3) RETURNING id`, reason.Code, reason.Label, reason.IsActive).Scan(&id)
	return id, err
}

// SetReasonActive toggles a reason.
func (r *Repository) SetReasonActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_return_reasons SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReasonLabels loads the id→label table for active reasons.
func (r *Repository) ReasonLabels(ctx context.Context) (map[int64]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, label FROM purchase_return_reasons WHERE is_active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	labels := make(map[int64]string)
	for rows.Next() {
		var id int64
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, err
		}
		labels[id] = label
	}
	return labels, rows.Err()
}

// SupplierNames loads the id→name table for active suppliers.
func (r *Repository) SupplierNames(ctx context.Context) (map[int64]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM suppliers WHERE is_active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
