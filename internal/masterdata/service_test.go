package masterdata

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	suppliers   []Supplier
	reasons     []ReturnReason
	nextID      int64
	labelCalls  int
	reasonCalls int
}

func (m *memRepo) ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, error) {
	return m.suppliers, nil
}

func (m *memRepo) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	for _, s := range m.suppliers {
		if s.ID == id {
			return s, nil
		}
	}
	return Supplier{}, ErrNotFound
}

func (m *memRepo) ListReasons(ctx context.Context) ([]ReturnReason, error) {
	m.reasonCalls++
	return m.reasons, nil
}

func (m *memRepo) CreateReason(ctx context.Context, reason ReturnReason) (int64, error) {
	m.nextID++
	reason.ID = m.nextID
	m.reasons = append(m.reasons, reason)
	return reason.ID, nil
}

func (m *memRepo) SetReasonActive(ctx context.Context, id int64, active bool) error {
	for i := range m.reasons {
		if m.reasons[i].ID == id {
			m.reasons[i].IsActive = active
			return nil
		}
	}
	return ErrNotFound
}

func (m *memRepo) ReasonLabels(ctx context.Context) (map[int64]string, error) {
	m.labelCalls++
	labels := make(map[int64]string, len(m.reasons))
	for _, r := range m.reasons {
		if r.IsActive {
			labels[r.ID] = r.Label
		}
	}
	return labels, nil
}

func (m *memRepo) SupplierNames(ctx context.Context) (map[int64]string, error) {
	names := make(map[int64]string, len(m.suppliers))
	for _, s := range m.suppliers {
		names[s.ID] = s.Name
	}
	return names, nil
}

func testCache(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func fixtureRepo() *memRepo {
	return &memRepo{
		suppliers: []Supplier{{ID: 3, Code: "SUP-3", Name: "Medico Distributors", IsActive: true}},
		reasons: []ReturnReason{
			{ID: 1, Code: "DMG", Label: "Damaged in transit", IsActive: true},
			{ID: 2, Code: "EXP", Label: "Near expiry", IsActive: true},
		},
		nextID: 2,
	}
}

func TestLookupServesFromCache(t *testing.T) {
	repo := fixtureRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, testCache(t), logger, time.Minute)

	maps, err := svc.Lookup(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Damaged in transit", maps.Reasons[1])
	require.Equal(t, "Medico Distributors", maps.Suppliers[3])
	require.Equal(t, 1, repo.labelCalls)

	// Second call is a cache hit; the repository is not consulted again.
	maps, err = svc.Lookup(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Near expiry", maps.Reasons[2])
	require.Equal(t, 1, repo.labelCalls)
}

func TestLookupWithoutCache(t *testing.T) {
	repo := fixtureRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, nil, logger, time.Minute)

	_, err := svc.Lookup(context.Background())
	require.NoError(t, err)
	_, err = svc.Lookup(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.labelCalls)
}

func TestCreateReasonInvalidatesLookup(t *testing.T) {
	repo := fixtureRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, testCache(t), logger, time.Minute)

	_, err := svc.Lookup(context.Background())
	require.NoError(t, err)

	created, err := svc.CreateReason(context.Background(), ReturnReason{Code: " SHORT ", Label: " Short supply ", IsActive: true})
	require.NoError(t, err)
	require.Equal(t, int64(3), created.ID)
	require.Equal(t, "SHORT", created.Code)
	require.Equal(t, "Short supply", created.Label)

	maps, err := svc.Lookup(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Short supply", maps.Reasons[3])
	require.Equal(t, 2, repo.labelCalls)
}

func TestCreateReasonValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(fixtureRepo(), nil, logger, time.Minute)

	_, err := svc.CreateReason(context.Background(), ReturnReason{Code: "", Label: "x"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateReason(context.Background(), ReturnReason{Code: "x", Label: "   "})
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetReasonActiveDropsFromLookup(t *testing.T) {
	repo := fixtureRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, testCache(t), logger, time.Minute)

	require.NoError(t, svc.SetReasonActive(context.Background(), 2, false))

	maps, err := svc.Lookup(context.Background())
	require.NoError(t, err)
	require.Contains(t, maps.Reasons, int64(1))
	require.NotContains(t, maps.Reasons, int64(2))
}
