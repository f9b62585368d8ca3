package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/weeki-api/internal/domain"
)

// Dispatcher routes tasks to workers and delegates processing. It is the
// error boundary of the pipeline: whatever happens during routing or
// delegation, Process returns with the task in a terminal state and
// never lets a fault escape to the caller.
type Dispatcher struct {
	pool   *Pool
	logger *slog.Logger

	// notify publishes intermediate transitions (currently only
	// in_progress) so the registry can observe them mid-flight.
	notify func(ctx context.Context, task *domain.Task)
}

// NewDispatcher creates a dispatcher over the given pool.
func NewDispatcher(pool *Pool, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		pool:   pool,
		logger: logger.With("component", "dispatcher"),
		notify: func(context.Context, *domain.Task) {},
	}
}

// SetTransitionNotifier installs a callback invoked when a task enters
// in_progress after a worker has been resolved. The callback receives
// the task by reference and must not retain it past the call.
func (d *Dispatcher) SetTransitionNotifier(notify func(ctx context.Context, task *domain.Task)) {
	if notify != nil {
		d.notify = notify
	}
}

// Process routes the task and delegates it to the resolved worker. The
// task is passed by exclusive reference: no other component may mutate
// it until Process returns. On return the task is terminal.
//
// Routing failures skip the in_progress notification entirely, so the
// observable transition for an unroutable task is pending straight to
// failed. Panics from routing or delegation are recovered and converted
// into a failed task.
func (d *Dispatcher) Process(ctx context.Context, task *domain.Task) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("recovered panic while processing task",
				"task_id", task.ID,
				"panic", r)
			if !task.IsTerminal() {
				if err := task.MarkFailed(fmt.Sprintf("processing error: %v", r)); err != nil {
					d.logger.Error("failed to mark panicked task as failed",
						"task_id", task.ID,
						"error", err)
				}
			}
		}
	}()

	d.logger.Info("dispatching task", "task_id", task.ID)

	if err := task.MarkInProgress(); err != nil {
		d.failTask(task, fmt.Sprintf("processing error: %s", err))
		return
	}

	workerID, ok := Route(task.Directive)
	if !ok {
		d.failTask(task, "no suitable worker found")
		return
	}

	worker, found := d.pool.ActiveWorker(workerID)
	if !found {
		d.failTask(task, "no suitable worker found")
		return
	}

	task.AssignedWorker = worker.ID()
	d.notify(ctx, task)

	if err := worker.Process(ctx, task); err != nil {
		// The worker could not even record its own failure; make the
		// terminal state explicit here.
		d.failTask(task, fmt.Sprintf("processing error: %s", err))
		return
	}

	d.logger.Info("task dispatched",
		"task_id", task.ID,
		"worker_id", worker.ID(),
		"status", string(task.Status))
}

// failTask transitions the task to failed, logging if even that is
// rejected.
func (d *Dispatcher) failTask(task *domain.Task, message string) {
	if task.IsTerminal() {
		return
	}
	if err := task.MarkFailed(message); err != nil {
		d.logger.Error("failed to mark task as failed",
			"task_id", task.ID,
			"message", message,
			"error", err)
	}
}
