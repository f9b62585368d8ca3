package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/weeki-api/internal/domain"
)

// Lifecycle event kinds.
const (
	KindTaskCreated   = "task_created"
	KindTaskCompleted = "task_completed"
	KindTaskFailed    = "task_failed"
)

// TaskLifecycleEvent records a task crossing a lifecycle boundary. It
// carries a snapshot of the task fields handlers typically need, not a
// reference to the live task.
type TaskLifecycleEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Kind is one of the Kind* constants above
	Kind string `json:"kind"`

	// TaskID identifies the task this event is about
	TaskID uuid.UUID `json:"task_id"`

	// Status is the task status at the time of the event
	Status domain.TaskStatus `json:"status"`

	// AssignedWorker is the worker that handled the task, if any
	AssignedWorker string `json:"assigned_worker,omitempty"`

	// Message is the task's outcome note at the time of the event
	Message string `json:"message,omitempty"`

	// OccurredAt is when the event was created
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskLifecycleEvent builds an event of the given kind from a task
// snapshot.
func NewTaskLifecycleEvent(kind string, task *domain.Task) *TaskLifecycleEvent {
	return &TaskLifecycleEvent{
		ID:             uuid.New(),
		Kind:           kind,
		TaskID:         task.ID,
		Status:         task.Status,
		AssignedWorker: task.AssignedWorker,
		Message:        task.Message,
		OccurredAt:     time.Now().UTC(),
	}
}

// TerminalEventKind returns the lifecycle kind matching a terminal task
// status, defaulting to KindTaskFailed for anything not completed.
func TerminalEventKind(status domain.TaskStatus) string {
	if status == domain.TaskStatusCompleted {
		return KindTaskCompleted
	}
	return KindTaskFailed
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskLifecycleEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the orchestrator to publish lifecycle transitions without
// direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskLifecycleEvent) error
}
