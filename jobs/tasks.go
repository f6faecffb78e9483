package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeNoteDispatch forwards a freshly created return note to the
	// supplier gateway.
	TaskTypeNoteDispatch = "returns:note_dispatch"
	// TaskTypeIdempotencyCleanup prunes expired idempotency keys.
	TaskTypeIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// NoteDispatchPayload identifies the note to dispatch.
type NoteDispatchPayload struct {
	NoteID int64 `json:"note_id"`
}

// NewNoteDispatchTask constructs an Asynq task for note dispatch.
func NewNoteDispatchTask(payload NoteDispatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNoteDispatch, data, asynq.MaxRetry(5)), nil
}

// IdempotencyCleanupPayload carries the retention window for key pruning.
type IdempotencyCleanupPayload struct {
	RetainFor time.Duration `json:"retain_for"`
}

// NewIdempotencyCleanupTask constructs the periodic cleanup task.
func NewIdempotencyCleanupTask(payload IdempotencyCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeIdempotencyCleanup, data), nil
}
