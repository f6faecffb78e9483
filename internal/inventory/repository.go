package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rxledger/rxledger/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	GetBalanceForUpdate(ctx context.Context, productID int64, batchNo string) (Balance, error)
	UpsertBalance(ctx context.Context, balance Balance) error
	InsertMovement(ctx context.Context, movement Movement) (int64, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// StockCard returns movements for a product batch in posting order.
func (r *Repository) StockCard(ctx context.Context, productID int64, batchNo string) ([]StockCardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, type, posted_at, qty, note
		FROM stock_movements
		WHERE product_id = $1 AND batch_no = $2
		ORDER BY posted_at, id`, productID, batchNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []StockCardEntry
	balance := 0.0
	for rows.Next() {
		var entry StockCardEntry
		var qty float64
		if err := rows.Scan(&entry.Code, &entry.Type, &entry.PostedAt, &qty, &entry.Note); err != nil {
			return nil, err
		}
		if entry.Type == string(MovementTypeOut) {
			entry.QtyOut = qty
			balance -= qty
		} else {
			entry.QtyIn = qty
			balance += qty
		}
		entry.BalanceQty = balance
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (tx *txRepo) GetBalanceForUpdate(ctx context.Context, productID int64, batchNo string) (Balance, error) {
	var b Balance
	err := tx.tx.QueryRow(ctx, `SELECT product_id, batch_no, qty, updated_at FROM stock_balances WHERE product_id = $1 AND batch_no = $2 FOR UPDATE`, productID, batchNo).
		Scan(&b.ProductID, &b.BatchNo, &b.Qty, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

func (tx *txRepo) UpsertBalance(ctx context.Context, balance Balance) error {
	_, err := tx.tx.Exec(ctx, `
		INSERT INTO stock_balances (product_id, batch_no, qty, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, batch_no) DO UPDATE SET qty = EXCLUDED.qty, updated_at = EXCLUDED.updated_at`,
		balance.ProductID, balance.BatchNo, balance.Qty, time.Now())
	return err
}

func (tx *txRepo) InsertMovement(ctx context.Context, movement Movement) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `
		INSERT INTO stock_movements (code, type, product_id, batch_no, qty, unit_cost, ref_module, ref_id, note, posted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		movement.Code, movement.Type, movement.ProductID, movement.BatchNo, movement.Qty, movement.UnitCost,
		movement.RefModule, movement.RefID, movement.Note, movement.PostedAt).Scan(&id)
	return id, err
}
