package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/weeki-api/internal/domain"
)

// Worker is a unit of processing capability: a role-tagged entity that
// occupies its caller for a bounded, role-specific interval and then
// marks the task terminal. There is no real execution logic; the result
// identifies the worker and restates the directive.
type Worker struct {
	info    domain.Worker
	latency time.Duration
	logger  *slog.Logger

	// processOverride replaces the simulated body when set. Used by
	// tests to exercise the fault paths.
	processOverride func(ctx context.Context, task *domain.Task) error
}

// newWorker creates a worker for the given entity. The entity must have
// been validated by the pool.
func newWorker(info domain.Worker, latency time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		info:    info,
		latency: latency,
		logger:  logger.With("worker_id", info.ID, "worker_role", string(info.Role)),
	}
}

// ID returns the worker's identifier.
func (w *Worker) ID() string {
	return w.info.ID
}

// Info returns a copy of the worker's entity data.
func (w *Worker) Info() domain.Worker {
	return w.info
}

// Active reports whether the worker is live.
func (w *Worker) Active() bool {
	return w.info.Active
}

// Process executes the task and leaves it in a terminal state. The task
// must already be in_progress; the dispatcher owns that transition.
// Unexpected internal faults are converted into a failed task with a
// diagnostic message rather than returned; the non-nil error return
// only reports faults that also defeated the failure marking itself.
func (w *Worker) Process(ctx context.Context, task *domain.Task) error {
	w.logger.Info("processing task", "task_id", task.ID)

	if w.processOverride != nil {
		if err := w.processOverride(ctx, task); err != nil {
			return w.fail(task, fmt.Sprintf("processing error: %s", err))
		}
		return nil
	}

	// Simulated processing interval. Deliberately not interruptible:
	// callers cannot cancel in-flight work, so shutdown drains instead.
	time.Sleep(w.latency)

	result, message := w.buildResult(task)

	if err := task.MarkCompleted(result, message); err != nil {
		return w.fail(task, fmt.Sprintf("failed to record completion: %s", err))
	}

	w.logger.Info("task completed", "task_id", task.ID)
	return nil
}

// buildResult assembles the role-specific result payload and outcome
// message for a successfully processed task.
func (w *Worker) buildResult(task *domain.Task) (map[string]any, string) {
	switch w.info.Role {
	case domain.WorkerRoleSpecialist:
		return map[string]any{
			"processed_by": w.info.ID,
			"domain":       w.info.Domain,
			"analysis":     fmt.Sprintf("domain-specific analysis for: %s", task.Directive),
			"recommendations": []string{
				"recommendation_1",
				"recommendation_2",
			},
		}, fmt.Sprintf("specialist task completed in domain: %s", w.info.Domain)
	default:
		return map[string]any{
			"processed_by":       w.info.ID,
			"specialty":          w.info.Specialty,
			"original_directive": task.Directive,
		}, fmt.Sprintf("utility task processed by %s worker", w.info.Specialty)
	}
}

// fail marks the task failed with the given diagnostic. Returns an error
// only when even the failure transition is rejected.
func (w *Worker) fail(task *domain.Task, message string) error {
	w.logger.Error("task processing failed", "task_id", task.ID, "message", message)

	if err := task.MarkFailed(message); err != nil {
		return fmt.Errorf("failed to mark task %s as failed: %w", task.ID, err)
	}
	return nil
}
