package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/rxledger/rxledger/internal/jobs"
)

// KeyCleaner prunes stale idempotency keys.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// IdempotencyJanitor runs the periodic key cleanup.
type IdempotencyJanitor struct {
	cleaner KeyCleaner
	metrics *jobmetrics.Metrics
	logger  *slog.Logger
}

// NewIdempotencyJanitor constructs the janitor.
func NewIdempotencyJanitor(cleaner KeyCleaner, metrics *jobmetrics.Metrics, logger *slog.Logger) *IdempotencyJanitor {
	return &IdempotencyJanitor{cleaner: cleaner, metrics: metrics, logger: logger}
}

// Handle processes one TaskTypeIdempotencyCleanup task.
func (j *IdempotencyJanitor) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("idempotency_cleanup")
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	if payload.RetainFor <= 0 {
		payload.RetainFor = 7 * 24 * time.Hour
	}
	if err := j.cleaner.Cleanup(ctx, payload.RetainFor); err != nil {
		return tracker.End(err)
	}
	j.logger.Info("idempotency keys pruned", slog.Duration("retain_for", payload.RetainFor))
	return tracker.End(nil)
}
