package returns

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rxledger/rxledger/internal/inventory"
	"github.com/rxledger/rxledger/internal/masterdata"
	"github.com/rxledger/rxledger/internal/shared"
)

type memRepo struct {
	ledgers      []RawLedgerLine
	ledgerStatus map[int64]LedgerStatus
	notes        map[int64]ReturnNote
	noteLines    map[int64][]PayloadLine
	nextID       int64
}

func newMemRepo(ledgers ...RawLedgerLine) *memRepo {
	return &memRepo{
		ledgers:      ledgers,
		ledgerStatus: make(map[int64]LedgerStatus),
		notes:        make(map[int64]ReturnNote),
		noteLines:    make(map[int64][]PayloadLine),
	}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memRepo) ListReturnableLedgers(ctx context.Context, filters LedgerFilters) ([]RawLedgerLine, int, error) {
	return m.ledgers, len(m.ledgers), nil
}

func (m *memRepo) LedgersForOrder(ctx context.Context, purchaseOrderID int64) ([]RawLedgerLine, error) {
	var out []RawLedgerLine
	for _, l := range m.ledgers {
		if l.PurchaseOrderID == purchaseOrderID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memRepo) GetNote(ctx context.Context, id int64) (ReturnNote, []PayloadLine, error) {
	note, ok := m.notes[id]
	if !ok {
		return ReturnNote{}, nil, ErrNotFound
	}
	return note, m.noteLines[id], nil
}

func (m *memRepo) GetNoteStatus(ctx context.Context, id int64) (NoteStatus, error) {
	note, ok := m.notes[id]
	if !ok {
		return "", ErrNotFound
	}
	return note.Status, nil
}

func (m *memRepo) ListNotes(ctx context.Context, filters NoteFilters) ([]ReturnNote, int, error) {
	var out []ReturnNote
	for _, n := range m.notes {
		out = append(out, n)
	}
	return out, len(out), nil
}

func (m *memRepo) CreateNote(ctx context.Context, note ReturnNote) (int64, error) {
	m.nextID++
	note.ID = m.nextID
	m.notes[note.ID] = note
	return note.ID, nil
}

func (m *memRepo) InsertNoteLine(ctx context.Context, noteID int64, line PayloadLine) error {
	m.noteLines[noteID] = append(m.noteLines[noteID], line)
	return nil
}

func (m *memRepo) UpdateLedgerStatus(ctx context.Context, ledgerID int64, status LedgerStatus) error {
	m.ledgerStatus[ledgerID] = status
	return nil
}

func (m *memRepo) UpdateNoteStatus(ctx context.Context, noteID int64, status NoteStatus) error {
	note, ok := m.notes[noteID]
	if !ok {
		return ErrNotFound
	}
	note.Status = status
	m.notes[noteID] = note
	return nil
}

type stubLookup struct{ maps masterdata.LookupMaps }

func (s stubLookup) Lookup(ctx context.Context) (masterdata.LookupMaps, error) {
	return s.maps, nil
}

type stubInventory struct {
	calls []inventory.OutboundInput
	err   error
}

func (s *stubInventory) PostOutbound(ctx context.Context, input inventory.OutboundInput) (inventory.Movement, error) {
	if s.err != nil {
		return inventory.Movement{}, s.err
	}
	s.calls = append(s.calls, input)
	return inventory.Movement{ID: int64(len(s.calls))}, nil
}

type stubAudit struct{ logs []shared.AuditLog }

func (s *stubAudit) Record(ctx context.Context, log shared.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

type stubEnqueuer struct{ noteIDs []int64 }

func (s *stubEnqueuer) EnqueueNoteDispatch(ctx context.Context, noteID int64) error {
	s.noteIDs = append(s.noteIDs, noteID)
	return nil
}

func testLookup() stubLookup {
	return stubLookup{maps: masterdata.LookupMaps{
		Reasons:   map[int64]string{2: "Damaged in transit"},
		Suppliers: map[int64]string{3: "Medico Distributors"},
	}}
}

func fixtureLedgers() []RawLedgerLine {
	return []RawLedgerLine{
		{
			LedgerID: 1, PurchaseOrderID: 7, SupplierID: 3, ProductID: 55,
			ProductName: "Paracetamol 500mg", BatchNo: "B-2301",
			ExpiryDate:     time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC),
			ReturnQuantity: 1, AmountWithTax: RawAmount("112"),
			TaxRate: 12, TotalRoundOff: RawAmount("112"), ReasonID: 2,
			Status: LedgerStatusNew,
		},
		{
			LedgerID: 2, PurchaseOrderID: 7, SupplierID: 3, ProductID: 56,
			ProductName: "ORS Sachet", BatchNo: "B-2302",
			ExpiryDate:     time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			ReturnQuantity: 2, AmountWithTax: RawAmount("206"),
			TaxRate: 3, TotalRoundOff: RawAmount("206"), ReasonID: 999,
			Status: LedgerStatusNew,
		},
	}
}

func newTestService(repo *memRepo, inv *stubInventory, enq *stubEnqueuer) (*Service, *stubAudit) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := &stubAudit{}
	svc := NewService(repo, testLookup(), inv, audit, nil, enq, logger)
	svc.WithNow(func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC) })
	return svc, audit
}

func TestListReturnableLedgers(t *testing.T) {
	ledgers := append(fixtureLedgers(), RawLedgerLine{
		LedgerID: 9, PurchaseOrderID: 8, SupplierID: 4,
		AmountWithTax: RawAmount("bogus"),
	})
	repo := newMemRepo(ledgers...)
	svc, _ := newTestService(repo, &stubInventory{}, &stubEnqueuer{})

	ws, err := svc.ListReturnableLedgers(context.Background(), LedgerFilters{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, ws.Orders, 1)
	require.Len(t, ws.Rejected, 1)

	order := ws.Orders[0]
	require.Equal(t, int64(7), order.PurchaseOrderID)
	require.Equal(t, "Medico Distributors", order.SupplierName)
	require.Len(t, order.Lines, 2)
	require.Equal(t, 1, order.Lines[0].SN)
	require.Equal(t, 2, order.Lines[1].SN)
	require.Equal(t, "Damaged in transit", order.Lines[0].Reason)
	require.Equal(t, "Reason 999", order.Lines[1].Reason)
	require.Equal(t, "100.00", order.Lines[0].TaxableAmount.StringFixed(2))
	require.Equal(t, "6.00", order.Lines[0].CGSTAmount.StringFixed(2))

	require.Equal(t, "318", ws.Summary.ReturnAmount.String())
	require.Equal(t, "18.00", ws.Summary.GrandTotalTax.StringFixed(2))
	require.Equal(t, 3, ws.Pagination.Total)
}

func TestCreateReturnNote(t *testing.T) {
	repo := newMemRepo(fixtureLedgers()...)
	inv := &stubInventory{}
	enq := &stubEnqueuer{}
	svc, audit := newTestService(repo, inv, enq)

	note, err := svc.CreateReturnNote(context.Background(), CreateNoteInput{PurchaseOrderID: 7, Number: "RN-001", ActorID: 12})
	require.NoError(t, err)
	require.Equal(t, int64(1), note.ID)
	require.Equal(t, "RN-001", note.Number)
	require.Equal(t, int64(3), note.SupplierID)
	require.Equal(t, NoteStatusNew, note.Status)
	require.Equal(t, "318", note.TotalAmount.String())
	require.Equal(t, "18.00", note.TotalTax.StringFixed(2))

	require.Len(t, repo.noteLines[note.ID], 2)
	require.Equal(t, LedgerStatusProcessing, repo.ledgerStatus[1])
	require.Equal(t, LedgerStatusProcessing, repo.ledgerStatus[2])

	require.Len(t, inv.calls, 2)
	require.Equal(t, int64(55), inv.calls[0].ProductID)
	require.Equal(t, "RETURNS", inv.calls[0].RefModule)
	require.Equal(t, float64(2), inv.calls[1].Qty)

	require.Equal(t, []int64{note.ID}, enq.noteIDs)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "RN_CREATE", audit.logs[0].Action)
}

func TestCreateReturnNoteGeneratesNumber(t *testing.T) {
	repo := newMemRepo(fixtureLedgers()...)
	svc, _ := newTestService(repo, &stubInventory{}, &stubEnqueuer{})

	note, err := svc.CreateReturnNote(context.Background(), CreateNoteInput{PurchaseOrderID: 7})
	require.NoError(t, err)
	require.NotEmpty(t, note.Number)
	require.Contains(t, note.Number, "RN-")
}

func TestCreateReturnNoteNoLedgers(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newTestService(repo, &stubInventory{}, &stubEnqueuer{})

	_, err := svc.CreateReturnNote(context.Background(), CreateNoteInput{PurchaseOrderID: 7})
	require.ErrorIs(t, err, ErrEmptyGroup)
}

func TestCreateReturnNoteMalformedLedger(t *testing.T) {
	repo := newMemRepo(RawLedgerLine{LedgerID: 1, PurchaseOrderID: 7, AmountWithTax: RawAmount("NaN rupees")})
	svc, _ := newTestService(repo, &stubInventory{}, &stubEnqueuer{})

	_, err := svc.CreateReturnNote(context.Background(), CreateNoteInput{PurchaseOrderID: 7})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateReturnNoteInventoryFailure(t *testing.T) {
	repo := newMemRepo(fixtureLedgers()...)
	inv := &stubInventory{err: errors.New("stock unavailable")}
	enq := &stubEnqueuer{}
	svc, _ := newTestService(repo, inv, enq)

	_, err := svc.CreateReturnNote(context.Background(), CreateNoteInput{PurchaseOrderID: 7})
	require.Error(t, err)
	require.Empty(t, enq.noteIDs)
}

func TestNoteStatusWorkflow(t *testing.T) {
	repo := newMemRepo(fixtureLedgers()...)
	svc, _ := newTestService(repo, &stubInventory{}, &stubEnqueuer{})

	note, err := svc.CreateReturnNote(context.Background(), CreateNoteInput{PurchaseOrderID: 7})
	require.NoError(t, err)

	// Completion before dispatch violates the workflow.
	require.ErrorIs(t, svc.CompleteNote(context.Background(), note.ID, 1), ErrInvalidState)

	require.NoError(t, svc.MarkNoteDispatched(context.Background(), note.ID))
	status, err := repo.GetNoteStatus(context.Background(), note.ID)
	require.NoError(t, err)
	require.Equal(t, NoteStatusProcessing, status)

	require.NoError(t, svc.CompleteNote(context.Background(), note.ID, 1))
	require.ErrorIs(t, svc.RejectNote(context.Background(), note.ID, 1), ErrInvalidState)

	require.ErrorIs(t, svc.MarkNoteDispatched(context.Background(), 404), ErrNotFound)
}
