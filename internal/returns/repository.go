package returns

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rxledger/rxledger/internal/platform/db"
)

// LedgerFilters narrows the returnable-ledger listing.
type LedgerFilters struct {
	SupplierID      int64
	PurchaseOrderID int64
	Status          LedgerStatus
	Limit           int
	Offset          int
}

// NoteFilters narrows the return-note listing.
type NoteFilters struct {
	SupplierID int64
	Status     NoteStatus
	Limit      int
	Offset     int
}

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
	CreateNote(ctx context.Context, note ReturnNote) (int64, error)
	InsertNoteLine(ctx context.Context, noteID int64, line PayloadLine) error
	UpdateLedgerStatus(ctx context.Context, ledgerID int64, status LedgerStatus) error
	UpdateNoteStatus(ctx context.Context, noteID int64, status NoteStatus) error
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

const rawLedgerColumns = `
	id, purchase_order_id, supplier_id, product_id, product_name, batch_no,
	expiry_date, created_at, return_quantity,
	amount_with_tax::text, wallet_amount::text, tax_rate, total_round_off_amt::text,
	purchase_return_reason_id, status`

// ListReturnableLedgers fetches raw ledger rows in purchase-order fetch
// order. Amounts come back as text and stay unparsed until Normalize.
func (r *Repository) ListReturnableLedgers(ctx context.Context, filters LedgerFilters) ([]RawLedgerLine, int, error) {
	status := filters.Status
	if status == "" {
		status = LedgerStatusNew
	}
	query := `SELECT ` + rawLedgerColumns + `
		FROM purchase_ledgers
		WHERE status = $1
		  AND return_quantity > 0
		  AND ($2 = 0 OR supplier_id = $2)
		  AND ($3 = 0 OR purchase_order_id = $3)
		ORDER BY purchase_order_id, id
		LIMIT NULLIF($4, 0) OFFSET $5`
	rows, err := r.pool.Query(ctx, query, status, filters.SupplierID, filters.PurchaseOrderID, filters.Limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var ledgers []RawLedgerLine
	for rows.Next() {
		line, err := scanRawLedger(rows)
		if err != nil {
			return nil, 0, err
		}
		ledgers = append(ledgers, line)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchase_ledgers
		WHERE status = $1 AND return_quantity > 0
		  AND ($2 = 0 OR supplier_id = $2)
		  AND ($3 = 0 OR purchase_order_id = $3)`,
		status, filters.SupplierID, filters.PurchaseOrderID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return ledgers, total, nil
}

// LedgersForOrder fetches the NEW ledger rows of one purchase order.
func (r *Repository) LedgersForOrder(ctx context.Context, purchaseOrderID int64) ([]RawLedgerLine, error) {
	query := `SELECT ` + rawLedgerColumns + `
		FROM purchase_ledgers
		WHERE purchase_order_id = $1 AND status = $2 AND return_quantity > 0
		ORDER BY id`
	rows, err := r.pool.Query(ctx, query, purchaseOrderID, LedgerStatusNew)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ledgers []RawLedgerLine
	for rows.Next() {
		line, err := scanRawLedger(rows)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, line)
	}
	return ledgers, rows.Err()
}

func scanRawLedger(rows pgx.Rows) (RawLedgerLine, error) {
	var line RawLedgerLine
	var amount, wallet, roundOff string
	err := rows.Scan(
		&line.LedgerID, &line.PurchaseOrderID, &line.SupplierID, &line.ProductID, &line.ProductName, &line.BatchNo,
		&line.ExpiryDate, &line.CreatedDate, &line.ReturnQuantity,
		&amount, &wallet, &line.TaxRate, &roundOff,
		&line.ReasonID, &line.Status,
	)
	if err != nil {
		return RawLedgerLine{}, err
	}
	line.AmountWithTax = RawAmount(amount)
	line.WalletAmount = RawAmount(wallet)
	line.TotalRoundOff = RawAmount(roundOff)
	return line, nil
}

// GetNote returns a note header and its lines.
func (r *Repository) GetNote(ctx context.Context, id int64) (ReturnNote, []PayloadLine, error) {
	var note ReturnNote
	var total, tax string
	err := r.pool.QueryRow(ctx, `
		SELECT id, number, purchase_order_id, supplier_id, status, total_amount::text, total_tax::text, created_at
		FROM return_notes WHERE id = $1`, id).
		Scan(&note.ID, &note.Number, &note.PurchaseOrderID, &note.SupplierID, &note.Status, &total, &tax, &note.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ReturnNote{}, nil, ErrNotFound
		}
		return ReturnNote{}, nil, err
	}
	if note.TotalAmount, err = parseAmount(RawAmount(total)); err != nil {
		return ReturnNote{}, nil, err
	}
	if note.TotalTax, err = parseAmount(RawAmount(tax)); err != nil {
		return ReturnNote{}, nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT ledger_id, supplier_id, product_id, product_name, batch_no, expiry_date::text,
		       tax_rate::text, return_quantity, wallet_amount::text, reason, reason_id,
		       purchase_order_id, status, amount_with_tax::text, total_round_off_amt::text, created_at
		FROM return_note_lines WHERE note_id = $1 ORDER BY id`, id)
	if err != nil {
		return ReturnNote{}, nil, err
	}
	defer rows.Close()
	var lines []PayloadLine
	for rows.Next() {
		var line PayloadLine
		var rate, wallet, amount, roundOff string
		if err := rows.Scan(
			&line.LedgerID, &line.SupplierID, &line.ProductID, &line.ProductName, &line.BatchNo, &line.ExpiryDate,
			&rate, &line.ReturnQuantity, &wallet, &line.Reason, &line.ReasonID,
			&line.PurchaseOrderID, &line.Status, &amount, &roundOff, &line.CreatedAt,
		); err != nil {
			return ReturnNote{}, nil, err
		}
		if line.TaxRate, err = parseAmount(RawAmount(rate)); err != nil {
			return ReturnNote{}, nil, err
		}
		if line.WalletAmount, err = parseAmount(RawAmount(wallet)); err != nil {
			return ReturnNote{}, nil, err
		}
		if line.AmountWithTax, err = parseAmount(RawAmount(amount)); err != nil {
			return ReturnNote{}, nil, err
		}
		if line.TotalRoundOff, err = parseAmount(RawAmount(roundOff)); err != nil {
			return ReturnNote{}, nil, err
		}
		lines = append(lines, line)
	}
	return note, lines, rows.Err()
}

// ListNotes returns note headers plus a total count.
func (r *Repository) ListNotes(ctx context.Context, filters NoteFilters) ([]ReturnNote, int, error) {
	query := `
		SELECT id, number, purchase_order_id, supplier_id, status, total_amount::text, total_tax::text, created_at
		FROM return_notes
		WHERE ($1 = 0 OR supplier_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.pool.Query(ctx, query, filters.SupplierID, string(filters.Status), filters.Limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var notes []ReturnNote
	for rows.Next() {
		var note ReturnNote
		var total, tax string
		if err := rows.Scan(&note.ID, &note.Number, &note.PurchaseOrderID, &note.SupplierID, &note.Status, &total, &tax, &note.CreatedAt); err != nil {
			return nil, 0, err
		}
		if note.TotalAmount, err = parseAmount(RawAmount(total)); err != nil {
			return nil, 0, err
		}
		if note.TotalTax, err = parseAmount(RawAmount(tax)); err != nil {
			return nil, 0, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var count int
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM return_notes
		WHERE ($1 = 0 OR supplier_id = $1) AND ($2 = '' OR status = $2)`,
		filters.SupplierID, string(filters.Status)).Scan(&count)
	if err != nil {
		return nil, 0, err
	}
	return notes, count, nil
}

// GetNoteStatus loads just the status column.
func (r *Repository) GetNoteStatus(ctx context.Context, id int64) (NoteStatus, error) {
	var status NoteStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM return_notes WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return status, nil
}

func (tx *txRepo) CreateNote(ctx context.Context, note ReturnNote) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `
		INSERT INTO return_notes (number, purchase_order_id, supplier_id, status, total_amount, total_tax, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		note.Number, note.PurchaseOrderID, note.SupplierID, note.Status,
		note.TotalAmount.String(), note.TotalTax.String(), note.CreatedAt).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertNoteLine(ctx context.Context, noteID int64, line PayloadLine) error {
	_, err := tx.tx.Exec(ctx, `
		INSERT INTO return_note_lines (
			note_id, ledger_id, supplier_id, product_id, product_name, batch_no, expiry_date,
			tax_rate, return_quantity, wallet_amount, reason, reason_id,
			purchase_order_id, status, amount_with_tax, total_round_off_amt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		noteID, line.LedgerID, line.SupplierID, line.ProductID, line.ProductName, line.BatchNo, line.ExpiryDate,
		line.TaxRate.String(), line.ReturnQuantity, line.WalletAmount.String(), line.Reason, line.ReasonID,
		line.PurchaseOrderID, line.Status, line.AmountWithTax.String(), line.TotalRoundOff.String(), line.CreatedAt)
	return err
}

func (tx *txRepo) UpdateLedgerStatus(ctx context.Context, ledgerID int64, status LedgerStatus) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE purchase_ledgers SET status = $2 WHERE id = $1`, ledgerID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) UpdateNoteStatus(ctx context.Context, noteID int64, status NoteStatus) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE return_notes SET status = $2 WHERE id = $1`, noteID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
