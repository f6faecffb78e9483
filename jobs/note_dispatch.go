package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/rxledger/rxledger/internal/jobs"
	"github.com/rxledger/rxledger/internal/returns"
)

// NoteService is the slice of the returns service the dispatcher needs.
type NoteService interface {
	GetReturnNote(ctx context.Context, id int64) (returns.ReturnNote, []returns.PayloadLine, error)
	MarkNoteDispatched(ctx context.Context, noteID int64) error
}

// NoteDispatcher forwards created notes to the supplier gateway and advances
// their status. A nil gateway skips the outbound call, which keeps local
// environments functional without supplier credentials.
type NoteDispatcher struct {
	service NoteService
	gateway returns.IntegrationHandler
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
}

// NewNoteDispatcher constructs the dispatcher.
func NewNoteDispatcher(service NoteService, gateway returns.IntegrationHandler, metrics *jobmetrics.Metrics, logger *slog.Logger) *NoteDispatcher {
	return &NoteDispatcher{service: service, gateway: gateway, metrics: metrics, logger: logger}
}

// Handle processes one TaskTypeNoteDispatch task.
func (d *NoteDispatcher) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := d.metrics.Track("note_dispatch")
	var payload NoteDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	note, lines, err := d.service.GetReturnNote(ctx, payload.NoteID)
	if err != nil {
		if errors.Is(err, returns.ErrNotFound) {
			d.logger.Warn("dispatch for unknown note", slog.Int64("note_id", payload.NoteID))
			return tracker.End(asynq.SkipRetry)
		}
		return tracker.End(err)
	}
	if d.gateway != nil {
		evt := returns.NoteCreatedEvent{
			ID:              note.ID,
			Number:          note.Number,
			PurchaseOrderID: note.PurchaseOrderID,
			SupplierID:      note.SupplierID,
			CreatedAt:       note.CreatedAt,
		}
		for _, line := range lines {
			evt.Lines = append(evt.Lines, returns.NoteLineEvent{
				LedgerID:       line.LedgerID,
				ProductID:      line.ProductID,
				BatchNo:        line.BatchNo,
				ReturnQuantity: line.ReturnQuantity,
			})
		}
		if err := d.gateway.HandleNoteCreated(ctx, evt); err != nil {
			return tracker.End(err)
		}
	}
	if err := d.service.MarkNoteDispatched(ctx, payload.NoteID); err != nil {
		// A redelivered task finds the note already advanced.
		if errors.Is(err, returns.ErrInvalidState) {
			return tracker.End(nil)
		}
		return tracker.End(err)
	}
	d.logger.Info("return note dispatched", slog.Int64("note_id", payload.NoteID), slog.String("number", note.Number))
	return tracker.End(nil)
}
