package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/weeki-api/internal/domain"
)

// TaskFilter narrows task queries. A nil Status matches every task.
type TaskFilter struct {
	Status *domain.TaskStatus
}

// TaskUpdate carries a partial update of a task's mutable fields. Nil
// pointers (and a nil Result map) leave the corresponding column
// untouched, so the same fields can be written more than once with
// upsert semantics.
type TaskUpdate struct {
	Status         *domain.TaskStatus
	Message        *string
	Result         map[string]any
	AssignedWorker *string
	CompletedAt    *time.Time
	ProcessingTime *float64
}

// Page describes offset/limit pagination over a task query, ordered by
// creation time descending.
type Page struct {
	Offset int
	Limit  int
}

// TaskMirror is the durable mirror of the in-memory task registry. All
// writes from the core are best-effort: callers log and swallow errors
// rather than failing task processing.
type TaskMirror interface {
	// InsertTask persists a snapshot of a newly created task.
	// Re-inserting an existing ID upserts rather than failing.
	InsertTask(ctx context.Context, task *domain.Task) error

	// UpdateTask applies a partial update to the task with the given ID.
	// Updating an unknown ID is a no-op, not an error.
	UpdateTask(ctx context.Context, taskID uuid.UUID, update TaskUpdate) error

	// ListTasks returns task snapshots matching the filter, ordered by
	// creation time descending, bounded by the page.
	ListTasks(ctx context.Context, filter TaskFilter, page Page) ([]*domain.Task, error)

	// CountTasks returns the number of tasks matching the filter,
	// ignoring pagination.
	CountTasks(ctx context.Context, filter TaskFilter) (int64, error)
}

// MetricsStore persists periodic system metrics samples.
type MetricsStore interface {
	// InsertMetrics appends a metrics sample.
	InsertMetrics(ctx context.Context, metrics *domain.SystemMetrics) error

	// LatestMetrics returns the most recent sample, or ErrMetricsNotFound
	// when nothing has been sampled yet.
	LatestMetrics(ctx context.Context) (*domain.SystemMetrics, error)

	// AvgProcessingTime returns the mean processing time in seconds of
	// tasks completed within the given window, or nil when none did.
	AvgProcessingTime(ctx context.Context, window time.Duration) (*float64, error)
}
