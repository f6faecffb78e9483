package masterdata

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const lookupCacheKey = "masterdata:lookup_maps"

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	ListReasons(ctx context.Context) ([]ReturnReason, error)
	CreateReason(ctx context.Context, reason ReturnReason) (int64, error)
	SetReasonActive(ctx context.Context, id int64, active bool) error
	ReasonLabels(ctx context.Context) (map[int64]string, error)
	SupplierNames(ctx context.Context) (map[int64]string, error)
}

// Service serves supplier and return-reason master data. Lookup maps are
// cached in Redis; concurrent rebuilds are collapsed with singleflight.
type Service struct {
	repo     RepositoryPort
	cache    *redis.Client
	logger   *slog.Logger
	cacheTTL time.Duration
	rebuild  singleflight.Group
}

// NewService constructs masterdata service. cache may be nil, in which case
// every lookup hits the repository.
func NewService(repo RepositoryPort, cache *redis.Client, logger *slog.Logger, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{repo: repo, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// ListSuppliers lists suppliers with filters.
func (s *Service) ListSuppliers(ctx context.Context, filters ListFilters) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx, filters)
}

// GetSupplier fetches one supplier.
func (s *Service) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.GetSupplier(ctx, id)
}

// ListReasons lists all return reasons.
func (s *Service) ListReasons(ctx context.Context) ([]ReturnReason, error) {
	return s.repo.ListReasons(ctx)
}

// CreateReason validates and inserts a reason, then drops the cached lookup.
func (s *Service) CreateReason(ctx context.Context, reason ReturnReason) (ReturnReason, error) {
	reason.Code = strings.TrimSpace(reason.Code)
	reason.Label = strings.TrimSpace(reason.Label)
	if reason.Code == "" || reason.Label == "" {
		return ReturnReason{}, ErrValidation
	}
	id, err := s.repo.CreateReason(ctx, reason)
	if err != nil {
		return ReturnReason{}, err
	}
	reason.ID = id
	s.invalidateLookup(ctx)
	return reason, nil
}

// SetReasonActive toggles a reason and drops the cached lookup.
func (s *Service) SetReasonActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetReasonActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidateLookup(ctx)
	return nil
}

// Lookup returns the reason and supplier id→label tables, serving from Redis
// when the cached copy is fresh.
func (s *Service) Lookup(ctx context.Context) (LookupMaps, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, lookupCacheKey).Bytes()
		if err == nil {
			var maps LookupMaps
			if err := json.Unmarshal(raw, &maps); err == nil {
				return maps, nil
			}
		} else if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("lookup cache read", slog.Any("error", err))
		}
	}
	v, err, _ := s.rebuild.Do(lookupCacheKey, func() (any, error) {
		return s.buildLookup(ctx)
	})
	if err != nil {
		return LookupMaps{}, err
	}
	return v.(LookupMaps), nil
}

func (s *Service) buildLookup(ctx context.Context) (LookupMaps, error) {
	reasons, err := s.repo.ReasonLabels(ctx)
	if err != nil {
		return LookupMaps{}, err
	}
	suppliers, err := s.repo.SupplierNames(ctx)
	if err != nil {
		return LookupMaps{}, err
	}
	maps := LookupMaps{Reasons: reasons, Suppliers: suppliers}
	if s.cache != nil {
		if raw, err := json.Marshal(maps); err == nil {
			if err := s.cache.Set(ctx, lookupCacheKey, raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("lookup cache write", slog.Any("error", err))
			}
		}
	}
	return maps, nil
}

func (s *Service) invalidateLookup(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, lookupCacheKey).Err(); err != nil && s.logger != nil {
		s.logger.Warn("lookup cache invalidate", slog.Any("error", err))
	}
}
