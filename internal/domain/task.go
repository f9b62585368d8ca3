package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the processing state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// IsValid reports whether the status is one of the known values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Common validation and transition errors for Task
var (
	ErrEmptyTaskID          = errors.New("task ID cannot be empty")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
	ErrInvalidTransition    = errors.New("invalid task status transition")
	ErrTaskAlreadyTerminal  = errors.New("task is already in a terminal state")
	ErrEmptyResultOnSuccess = errors.New("completed task must carry a result")
)

// Task represents a directive submitted by a caller together with its
// processing state. The context map is caller-supplied and opaque; the
// result map is empty until the task completes successfully.
//
// CompletedAt is set exactly once, when the task reaches a terminal
// state (completed or failed).
type Task struct {
	ID             uuid.UUID      `json:"id"`
	Directive      string         `json:"directive"`
	Context        map[string]any `json:"context"`
	Status         TaskStatus     `json:"status"`
	Result         map[string]any `json:"result"`
	Message        string         `json:"message"`
	AssignedWorker string         `json:"assigned_worker,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
}

// NewTask creates a new pending Task for the given directive and context.
// The directive may be empty; routing has a documented fallback for it.
// A nil context is normalized to an empty map so callers never observe nil.
func NewTask(directive string, taskContext map[string]any) (*Task, error) {
	if taskContext == nil {
		taskContext = map[string]any{}
	}

	task := &Task{
		ID:        uuid.New(),
		Directive: directive,
		Context:   taskContext,
		Status:    TaskStatusPending,
		Result:    map[string]any{},
		CreatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the task's structural invariants.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if !t.Status.IsValid() {
		return ErrInvalidTaskStatus
	}

	return nil
}

// IsTerminal reports whether the task has reached a final state.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// MarkInProgress transitions the task from pending to in_progress.
func (t *Task) MarkInProgress() error {
	if t.Status != TaskStatusPending {
		return ErrInvalidTransition
	}

	t.Status = TaskStatusInProgress
	return nil
}

// MarkCompleted transitions the task to completed, records the result and
// message, and stamps CompletedAt. Only an in-progress task can complete;
// a completed task must carry a non-empty result.
func (t *Task) MarkCompleted(result map[string]any, message string) error {
	if t.IsTerminal() {
		return ErrTaskAlreadyTerminal
	}
	if t.Status != TaskStatusInProgress {
		return ErrInvalidTransition
	}
	if len(result) == 0 {
		return ErrEmptyResultOnSuccess
	}

	now := time.Now().UTC()
	t.Status = TaskStatusCompleted
	t.Result = result
	t.Message = message
	t.CompletedAt = &now
	return nil
}

// MarkFailed transitions the task to failed with a diagnostic message and
// stamps CompletedAt. Failure is reachable from pending (routing failure,
// no worker ever started) as well as from in_progress (worker fault).
func (t *Task) MarkFailed(message string) error {
	if t.IsTerminal() {
		return ErrTaskAlreadyTerminal
	}

	now := time.Now().UTC()
	t.Status = TaskStatusFailed
	t.Message = message
	t.CompletedAt = &now
	return nil
}

// ProcessingTime returns the elapsed time between creation and completion,
// or zero if the task is not terminal yet.
func (t *Task) ProcessingTime() time.Duration {
	if t.CompletedAt == nil {
		return 0
	}
	return t.CompletedAt.Sub(t.CreatedAt)
}

// Clone returns a deep copy of the task. Map fields are copied so the
// clone can be handed out without sharing mutable state.
func (t *Task) Clone() *Task {
	clone := *t

	clone.Context = make(map[string]any, len(t.Context))
	for k, v := range t.Context {
		clone.Context[k] = v
	}

	clone.Result = make(map[string]any, len(t.Result))
	for k, v := range t.Result {
		clone.Result[k] = v
	}

	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		clone.CompletedAt = &completedAt
	}

	return &clone
}
