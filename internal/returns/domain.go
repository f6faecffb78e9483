package returns

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger line lifecycle statuses.
type LedgerStatus string

const (
	LedgerStatusNew        LedgerStatus = "NEW"
	LedgerStatusProcessing LedgerStatus = "PROCESSING"
	LedgerStatusCompleted  LedgerStatus = "COMPLETED"
	LedgerStatusRejected   LedgerStatus = "REJECTED"
)

// Return note lifecycle statuses.
type NoteStatus string

const (
	NoteStatusNew        NoteStatus = "NEW"
	NoteStatusProcessing NoteStatus = "PROCESSING"
	NoteStatusCompleted  NoteStatus = "COMPLETED"
	NoteStatusRejected   NoteStatus = "REJECTED"
)

// DefaultTaxRate substitutes an absent or zero tax rate on incoming ledgers.
// The upstream ordering system omits the rate for legacy batches and expects
// the standard 12% slab to apply.
const DefaultTaxRate = 12

// RawLedgerLine is a purchase ledger record as delivered by the upstream
// fetch, amounts still unparsed.
type RawLedgerLine struct {
	LedgerID        int64        `json:"ledger_id"`
	PurchaseOrderID int64        `json:"purchase_order_id"`
	SupplierID      int64        `json:"supplier_id"`
	ProductID       int64        `json:"product_id"`
	ProductName     string       `json:"product_name"`
	BatchNo         string       `json:"batch_no"`
	ExpiryDate      time.Time    `json:"expiry_date"`
	CreatedDate     time.Time    `json:"created_date"`
	ReturnQuantity  int64        `json:"return_quantity"`
	AmountWithTax   RawAmount    `json:"amount_with_tax"`
	WalletAmount    RawAmount    `json:"wallet_amount"`
	TaxRate         float64      `json:"tax_rate"`
	TotalRoundOff   RawAmount    `json:"total_round_off_amt"`
	ReasonID        int64        `json:"purchase_return_reason_id"`
	Status          LedgerStatus `json:"status"`
}

// LedgerLine is a normalized, returnable purchase ledger entry.
type LedgerLine struct {
	SN              int
	LedgerID        int64
	PurchaseOrderID int64
	SupplierID      int64
	ProductID       int64
	ProductName     string
	BatchNo         string
	ExpiryDate      time.Time
	CreatedDate     time.Time
	ReturnQuantity  int64
	AmountWithTax   decimal.Decimal
	WalletAmount    decimal.Decimal
	TaxRate         decimal.Decimal
	TotalRoundOff   decimal.Decimal
	ReasonID        int64
	Status          LedgerStatus
	DisplayAmount   string
}

// PurchaseOrderGroup collects ledger lines sharing one purchase order.
// Groups are recomputed on every fetch and never mutated.
type PurchaseOrderGroup struct {
	PurchaseOrderID int64
	Lines           []LedgerLine
}

// ReturnNote is the persisted return artifact for one purchase order.
type ReturnNote struct {
	ID              int64
	Number          string
	PurchaseOrderID int64
	SupplierID      int64
	Status          NoteStatus
	TotalAmount     decimal.Decimal
	TotalTax        decimal.Decimal
	CreatedAt       time.Time
}

// ReturnNotePayload is the submission unit handed to persistence.
type ReturnNotePayload struct {
	PurchaseOrderID int64         `json:"purchase_order_id"`
	Ledgers         []PayloadLine `json:"ledgers"`
}

// PayloadLine is one ledger entry inside a ReturnNotePayload. ExpiryDate is
// already rendered in the wire format (YYYY-MM-DD).
type PayloadLine struct {
	LedgerID        int64           `json:"ledger_id"`
	SupplierID      int64           `json:"supplier_id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	BatchNo         string          `json:"batch_no"`
	ExpiryDate      string          `json:"expiry_date"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	ReturnQuantity  int64           `json:"return_quantity"`
	WalletAmount    decimal.Decimal `json:"wallet_amount"`
	Reason          string          `json:"reason"`
	ReasonID        int64           `json:"purchase_return_reason_id"`
	PurchaseOrderID int64           `json:"purchase_order_id"`
	Status          LedgerStatus    `json:"status"`
	AmountWithTax   decimal.Decimal `json:"amount_with_tax"`
	TotalRoundOff   decimal.Decimal `json:"total_round_off_amt"`
	CreatedAt       time.Time       `json:"created_at"`
}

var (
	// ErrMalformedAmount occurs when a monetary field cannot be parsed.
	ErrMalformedAmount = errors.New("returns: malformed amount")
	// ErrEmptyGroup occurs when a payload build targets a group with no lines.
	ErrEmptyGroup = errors.New("returns: empty purchase order group")
	// ErrInvalidState occurs when action violates the note status workflow.
	ErrInvalidState = errors.New("returns: invalid state transition")
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("returns: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("returns: invalid input")
)
