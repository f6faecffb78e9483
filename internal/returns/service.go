package returns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rxledger/rxledger/internal/inventory"
	"github.com/rxledger/rxledger/internal/masterdata"
	"github.com/rxledger/rxledger/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListReturnableLedgers(ctx context.Context, filters LedgerFilters) ([]RawLedgerLine, int, error)
	LedgersForOrder(ctx context.Context, purchaseOrderID int64) ([]RawLedgerLine, error)
	GetNote(ctx context.Context, id int64) (ReturnNote, []PayloadLine, error)
	GetNoteStatus(ctx context.Context, id int64) (NoteStatus, error)
	ListNotes(ctx context.Context, filters NoteFilters) ([]ReturnNote, int, error)
}

// LookupPort exposes the masterdata id→label tables.
type LookupPort interface {
	Lookup(ctx context.Context) (masterdata.LookupMaps, error)
}

// InventoryPort exposes required inventory integration.
type InventoryPort interface {
	PostOutbound(ctx context.Context, input inventory.OutboundInput) (inventory.Movement, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Enqueuer hands submitted notes to the background dispatcher.
type Enqueuer interface {
	EnqueueNoteDispatch(ctx context.Context, noteID int64) error
}

// Service orchestrates the return-note workflow around the pure pipeline.
type Service struct {
	repo        RepositoryPort
	lookup      LookupPort
	inventory   InventoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	enqueuer    Enqueuer
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs returns service.
func NewService(repo RepositoryPort, lookup LookupPort, inv InventoryPort, audit AuditPort, idem *shared.IdempotencyStore, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, lookup: lookup, inventory: inv, audit: audit, idempotency: idem, enqueuer: enqueuer, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// LineView is one returnable ledger line prepared for the dashboard.
type LineView struct {
	SN             int             `json:"sn"`
	LedgerID       int64           `json:"ledger_id"`
	ProductName    string          `json:"product_name"`
	BatchNo        string          `json:"batch_no"`
	ExpiryDate     string          `json:"expiry_date"`
	ReturnQuantity int64           `json:"return_quantity"`
	Amount         decimal.Decimal `json:"amount_with_tax"`
	DisplayAmount  string          `json:"display_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	CGSTAmount     decimal.Decimal `json:"cgst_amount"`
	SGSTAmount     decimal.Decimal `json:"sgst_amount"`
	ReasonID       int64           `json:"reason_id"`
	Reason         string          `json:"reason"`
}

// OrderView is one purchase order group prepared for the dashboard.
type OrderView struct {
	PurchaseOrderID int64        `json:"purchase_order_id"`
	SupplierID      int64        `json:"supplier_id"`
	SupplierName    string       `json:"supplier_name"`
	Lines           []LineView   `json:"lines"`
	Summary         GroupSummary `json:"summary"`
}

// Workspace is the full returnable-ledger view: grouped orders, aggregate
// summary and per-line rejection diagnostics.
type Workspace struct {
	Orders     []OrderView       `json:"orders"`
	Summary    ReturnSummary     `json:"summary"`
	Rejected   []string          `json:"rejected,omitempty"`
	Pagination shared.Pagination `json:"pagination"`
}

// ListReturnableLedgers fetches raw ledgers and lookup tables concurrently,
// runs the pure pipeline and shapes the grouped dashboard view. Malformed
// lines are reported, not fatal.
func (s *Service) ListReturnableLedgers(ctx context.Context, filters LedgerFilters, page, perPage int) (Workspace, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	filters.Limit = perPage
	filters.Offset = (page - 1) * perPage

	var (
		raw   []RawLedgerLine
		total int
		maps  masterdata.LookupMaps
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, total, err = s.repo.ListReturnableLedgers(gctx, filters)
		return err
	})
	g.Go(func() error {
		var err error
		maps, err = s.lookup.Lookup(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Workspace{}, err
	}

	lines, rejects := Normalize(raw)
	for _, reject := range rejects {
		s.logger.Warn("ledger line rejected", slog.Int64("ledger_id", reject.LedgerID), slog.Any("error", reject.Err))
	}
	groups := GroupByOrder(lines)

	ws := Workspace{
		Summary:    SummarizeAll(groups),
		Pagination: shared.NewPagination(page, perPage, total),
	}
	for _, reject := range rejects {
		ws.Rejected = append(ws.Rejected, reject.Error())
	}
	resolver := resolverFromMap(maps.Reasons)
	for _, group := range groups {
		view := OrderView{
			PurchaseOrderID: group.PurchaseOrderID,
			Summary:         Summarize(group),
		}
		if len(group.Lines) > 0 {
			view.SupplierID = group.Lines[0].SupplierID
			view.SupplierName = maps.Suppliers[view.SupplierID]
		}
		for _, line := range group.Lines {
			b := ComputeBreakdown(line)
			view.Lines = append(view.Lines, LineView{
				SN:             line.SN,
				LedgerID:       line.LedgerID,
				ProductName:    line.ProductName,
				BatchNo:        line.BatchNo,
				ExpiryDate:     line.ExpiryDate.Format(wireDateLayout),
				ReturnQuantity: line.ReturnQuantity,
				Amount:         line.AmountWithTax.Round(2),
				DisplayAmount:  line.DisplayAmount,
				TaxRate:        line.TaxRate,
				TaxableAmount:  b.TaxableAmount.Round(2),
				TotalTax:       b.TotalTax.Round(2),
				CGSTAmount:     b.CGSTAmount.Round(2),
				SGSTAmount:     b.SGSTAmount.Round(2),
				ReasonID:       line.ReasonID,
				Reason:         resolveReason(resolver, line.ReasonID),
			})
		}
		ws.Orders = append(ws.Orders, view)
	}
	return ws, nil
}

// CreateNoteInput describes a return-note submission.
type CreateNoteInput struct {
	PurchaseOrderID int64
	Number          string
	ActorID         int64
}

// CreateReturnNote re-derives the purchase order group from current ledger
// state, builds the payload and persists note header plus lines in one
// transaction. Ledgers move to PROCESSING, stock is decremented per line and
// the note is queued for supplier dispatch.
func (s *Service) CreateReturnNote(ctx context.Context, input CreateNoteInput) (ReturnNote, error) {
	if input.PurchaseOrderID == 0 {
		return ReturnNote{}, ErrValidation
	}
	raw, err := s.repo.LedgersForOrder(ctx, input.PurchaseOrderID)
	if err != nil {
		return ReturnNote{}, err
	}
	lines, rejects := Normalize(raw)
	if len(rejects) > 0 {
		// A submission must not silently drop corrupted lines.
		return ReturnNote{}, fmt.Errorf("%w: %s", ErrValidation, rejects[0].Error())
	}
	groups := GroupByOrder(lines)
	if len(groups) == 0 {
		return ReturnNote{}, ErrEmptyGroup
	}
	group := groups[0]

	maps, err := s.lookup.Lookup(ctx)
	if err != nil {
		return ReturnNote{}, err
	}
	payload, err := BuildPayload(group, resolverFromMap(maps.Reasons), s.now())
	if err != nil {
		return ReturnNote{}, err
	}

	summary := Summarize(group)
	taxes := SummarizeTaxes(groups)
	totalTax := decimal.Zero
	for _, bucket := range taxes {
		totalTax = totalTax.Add(bucket.TotalTax)
	}

	if input.Number == "" {
		input.Number = generateNumber("RN")
	}
	note := ReturnNote{
		Number:          input.Number,
		PurchaseOrderID: group.PurchaseOrderID,
		SupplierID:      group.Lines[0].SupplierID,
		Status:          NoteStatusNew,
		TotalAmount:     summary.TotalReturnAmount,
		TotalTax:        totalTax.Round(2),
		CreatedAt:       s.now(),
	}

	key := fmt.Sprintf("RN:%s", note.Number)
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "returns.note"); err != nil {
			return ReturnNote{}, err
		}
		inserted = true
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		noteID, err := tx.CreateNote(ctx, note)
		if err != nil {
			return err
		}
		note.ID = noteID
		for _, line := range payload.Ledgers {
			if err := tx.InsertNoteLine(ctx, noteID, line); err != nil {
				return err
			}
			if err := tx.UpdateLedgerStatus(ctx, line.LedgerID, LedgerStatusProcessing); err != nil {
				return err
			}
			if s.inventory == nil {
				return errors.New("inventory integration not configured")
			}
			refID := uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("RN:%d:%d", noteID, line.LedgerID)))
			_, err := s.inventory.PostOutbound(ctx, inventory.OutboundInput{
				Code:      fmt.Sprintf("RN-%s-%d", note.Number, line.LedgerID),
				ProductID: line.ProductID,
				BatchNo:   line.BatchNo,
				Qty:       float64(line.ReturnQuantity),
				RefModule: "RETURNS",
				RefID:     refID.String(),
				Note:      fmt.Sprintf("Return note %s", note.Number),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		return ReturnNote{}, err
	}

	s.recordAudit(ctx, input.ActorID, "RN_CREATE", note.ID, map[string]any{"number": note.Number, "po": note.PurchaseOrderID})
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueNoteDispatch(ctx, note.ID); err != nil {
			s.logger.Warn("enqueue note dispatch", slog.Any("error", err), slog.Int64("note_id", note.ID))
		}
	}
	return note, nil
}

// GetReturnNote loads one note with its lines.
func (s *Service) GetReturnNote(ctx context.Context, id int64) (ReturnNote, []PayloadLine, error) {
	return s.repo.GetNote(ctx, id)
}

// ListReturnNotes lists note headers.
func (s *Service) ListReturnNotes(ctx context.Context, filters NoteFilters, page, perPage int) ([]ReturnNote, shared.Pagination, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	filters.Limit = perPage
	filters.Offset = (page - 1) * perPage
	notes, total, err := s.repo.ListNotes(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return notes, shared.NewPagination(page, perPage, total), nil
}

// MarkNoteDispatched transitions NEW → PROCESSING; called by the worker.
func (s *Service) MarkNoteDispatched(ctx context.Context, noteID int64) error {
	return s.transitionNote(ctx, noteID, NoteStatusNew, NoteStatusProcessing)
}

// CompleteNote transitions PROCESSING → COMPLETED.
func (s *Service) CompleteNote(ctx context.Context, noteID int64, actorID int64) error {
	if err := s.transitionNote(ctx, noteID, NoteStatusProcessing, NoteStatusCompleted); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "RN_COMPLETE", noteID, nil)
	return nil
}

// RejectNote transitions PROCESSING → REJECTED.
func (s *Service) RejectNote(ctx context.Context, noteID int64, actorID int64) error {
	if err := s.transitionNote(ctx, noteID, NoteStatusProcessing, NoteStatusRejected); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "RN_REJECT", noteID, nil)
	return nil
}

func (s *Service) transitionNote(ctx context.Context, noteID int64, from, to NoteStatus) error {
	status, err := s.repo.GetNoteStatus(ctx, noteID)
	if err != nil {
		return err
	}
	if status != from {
		return ErrInvalidState
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateNoteStatus(ctx, noteID, to)
	})
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{ActorID: actorID, Action: action, Entity: "returns", EntityID: fmt.Sprintf("%d", entityID), Meta: meta})
}

func resolverFromMap(labels map[int64]string) ReasonResolver {
	return func(id int64) (string, bool) {
		label, ok := labels[id]
		return label, ok
	}
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
