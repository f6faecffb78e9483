package returns

import (
	"context"
	"time"
)

// NoteLineEvent describes individual line values for downstream consumers.
type NoteLineEvent struct {
	LedgerID       int64
	ProductID      int64
	BatchNo        string
	ReturnQuantity int64
}

// NoteCreatedEvent captures details required to dispatch a return note to the
// supplier gateway.
type NoteCreatedEvent struct {
	ID              int64
	Number          string
	PurchaseOrderID int64
	SupplierID      int64
	CreatedAt       time.Time
	Lines           []NoteLineEvent
}

// IntegrationHandler receives returns domain events for supplier integration.
type IntegrationHandler interface {
	HandleNoteCreated(ctx context.Context, evt NoteCreatedEvent) error
}
