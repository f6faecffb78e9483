package inventory

import (
	"errors"
	"time"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementTypeIn represents an inbound movement.
	MovementTypeIn MovementType = "IN"
	// MovementTypeOut represents an outbound movement, e.g. a supplier return.
	MovementTypeOut MovementType = "OUT"
	// MovementTypeAdjust indicates manual adjustments.
	MovementTypeAdjust MovementType = "ADJUST"
)

// Movement models one stock movement of a product batch.
type Movement struct {
	ID        int64
	Code      string
	Type      MovementType
	ProductID int64
	BatchNo   string
	Qty       float64
	UnitCost  float64
	RefModule string
	RefID     string
	Note      string
	PostedAt  time.Time
}

// Balance summarises on-hand stock per product batch.
type Balance struct {
	ProductID int64
	BatchNo   string
	Qty       float64
	UpdatedAt time.Time
}

// StockCardEntry describes a stock card row for the dashboard detail view.
type StockCardEntry struct {
	Code       string    `json:"code"`
	Type       string    `json:"type"`
	PostedAt   time.Time `json:"posted_at"`
	QtyIn      float64   `json:"qty_in"`
	QtyOut     float64   `json:"qty_out"`
	BalanceQty float64   `json:"balance_qty"`
	Note       string    `json:"note"`
}

// OutboundInput describes a stock decrement request.
type OutboundInput struct {
	Code      string
	ProductID int64
	BatchNo   string
	Qty       float64
	RefModule string
	RefID     string
	Note      string
}

var (
	// ErrInsufficientStock occurs when an outbound exceeds the batch balance.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("inventory: invalid input")
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("inventory: not found")
)
