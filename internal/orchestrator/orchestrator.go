package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/weeki-api/internal/agent"
	"github.com/phrazzld/weeki-api/internal/domain"
	"github.com/phrazzld/weeki-api/internal/events"
	"github.com/phrazzld/weeki-api/internal/store"
)

// Config holds configuration for the orchestrator's processing loop.
type Config struct {
	// WorkerCount determines how many concurrent goroutines drain the queue
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Orchestrator is the facade over the task subsystem. It owns the
// registry, the dispatcher and worker pool, and the durable mirror, and
// exposes the operations the API layer calls.
type Orchestrator struct {
	registry   *Registry
	pool       *agent.Pool
	dispatcher *agent.Dispatcher
	mirror     store.TaskMirror
	emitter    events.EventEmitter
	config     Config
	logger     *slog.Logger

	taskChan chan *domain.Task
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates an Orchestrator. The mirror and emitter may be nil; both
// are best-effort side channels and a nil value disables them.
func New(pool *agent.Pool, dispatcher *agent.Dispatcher, mirror store.TaskMirror, emitter events.EventEmitter, config Config, logger *slog.Logger) *Orchestrator {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}

	o := &Orchestrator{
		registry:   NewRegistry(),
		pool:       pool,
		dispatcher: dispatcher,
		mirror:     mirror,
		emitter:    emitter,
		config:     config,
		logger:     logger.With("component", "orchestrator"),
		taskChan:   make(chan *domain.Task, config.QueueSize),
	}

	// The dispatcher reports the pending -> in_progress transition so the
	// registry reflects it while the worker is still running.
	dispatcher.SetTransitionNotifier(o.recordTransition)

	return o
}

// Start activates the worker pool and launches the queue workers.
func (o *Orchestrator) Start() error {
	if err := o.pool.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize worker pool: %w", err)
	}

	for i := 0; i < o.config.WorkerCount; i++ {
		o.wg.Add(1)
		go o.worker(i)
	}

	o.logger.Info("orchestrator started",
		"queue_workers", o.config.WorkerCount,
		"queue_size", o.config.QueueSize,
		"active_workers", o.pool.ActiveWorkerCount())
	return nil
}

// CreateTask registers a new task for the directive and schedules it for
// asynchronous processing. The returned task is a snapshot taken at
// creation time; processing may already have advanced it.
func (o *Orchestrator) CreateTask(ctx context.Context, directive string, taskContext map[string]any) (*domain.Task, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, fmt.Errorf("orchestrator is shutting down")
	}

	task, err := domain.NewTask(directive, taskContext)
	if err != nil {
		o.mu.Unlock()
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	o.registry.Put(task)
	snapshot := task.Clone()

	// Enqueue while still holding the lock so Shutdown cannot close the
	// channel between the closed check and the send. The queued instance
	// is the exclusive working copy; the registry holds its own clone.
	select {
	case o.taskChan <- task:
	default:
		// Queue full. Process on a dedicated goroutine rather than
		// rejecting the directive.
		o.logger.Warn("task queue full, processing on dedicated goroutine", "task_id", task.ID)
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			o.processTask(task, -1)
		}()
	}
	o.mu.Unlock()

	o.mirrorInsert(ctx, snapshot)
	o.emit(ctx, events.NewTaskLifecycleEvent(events.KindTaskCreated, snapshot))

	o.logger.Info("task accepted", "task_id", snapshot.ID, "directive_length", len(directive))
	return snapshot, nil
}

// GetTaskStatus returns a snapshot of the task with the given ID from
// the authoritative registry. Unknown IDs return store.ErrTaskNotFound.
func (o *Orchestrator) GetTaskStatus(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := o.registry.Get(id)
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns a page of task snapshots from the durable mirror,
// newest first, along with the total number of matching tasks. When the
// mirror is unavailable it degrades to an empty page rather than
// failing the request.
func (o *Orchestrator) ListTasks(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, int64, error) {
	if o.mirror == nil {
		return o.listFromRegistry(filter, page)
	}

	tasks, err := o.mirror.ListTasks(ctx, filter, page)
	if err != nil {
		o.logger.Warn("task listing degraded, mirror unavailable", "error", err)
		return []*domain.Task{}, 0, nil
	}

	total, err := o.mirror.CountTasks(ctx, filter)
	if err != nil {
		o.logger.Warn("task count degraded, mirror unavailable", "error", err)
		return []*domain.Task{}, 0, nil
	}

	return tasks, total, nil
}

// ActiveWorkerCount reports how many workers in the pool are active.
func (o *Orchestrator) ActiveWorkerCount() int {
	return o.pool.ActiveWorkerCount()
}

// PoolState reports the worker pool lifecycle state.
func (o *Orchestrator) PoolState() agent.PoolState {
	return o.pool.State()
}

// Workers returns metadata snapshots for every worker in the pool.
func (o *Orchestrator) Workers() []domain.Worker {
	return o.pool.Workers()
}

// CountsByStatus reports how many registered tasks sit in each status.
func (o *Orchestrator) CountsByStatus() map[domain.TaskStatus]int {
	return o.registry.CountsByStatus()
}

// Shutdown stops accepting new tasks, waits for in-flight processing to
// drain (bounded by ctx), and deactivates the worker pool.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	close(o.taskChan)
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		o.pool.Shutdown()
		return fmt.Errorf("shutdown abandoned with tasks in flight: %w", ctx.Err())
	}

	o.pool.Shutdown()
	o.logger.Info("orchestrator stopped")
	return nil
}

// worker drains the task queue until it is closed and empty.
func (o *Orchestrator) worker(id int) {
	defer o.wg.Done()

	o.logger.Debug("starting queue worker", "worker_id", id)
	for task := range o.taskChan {
		o.processTask(task, id)
	}
	o.logger.Debug("queue worker stopped", "worker_id", id)
}

// processTask runs a single task through the dispatcher and records the
// terminal state in the registry, the mirror, and the event stream.
func (o *Orchestrator) processTask(task *domain.Task, workerID int) {
	ctx := context.Background()
	logger := o.logger.With("task_id", task.ID, "worker_id", workerID)

	logger.Info("processing task")
	o.dispatcher.Process(ctx, task)

	o.registry.Put(task)
	o.mirrorFinalize(ctx, task)
	o.emit(ctx, events.NewTaskLifecycleEvent(events.TerminalEventKind(task.Status), task))

	if task.Status == domain.TaskStatusCompleted {
		logger.Info("task completed", "assigned_worker", task.AssignedWorker,
			"processing_seconds", task.ProcessingTime().Seconds())
	} else {
		logger.Error("task failed", "assigned_worker", task.AssignedWorker, "message", task.Message)
	}
}

// recordTransition mirrors a mid-flight status change into the registry
// and, best-effort, into the durable mirror.
func (o *Orchestrator) recordTransition(ctx context.Context, task *domain.Task) {
	o.registry.Put(task)

	if o.mirror == nil {
		return
	}
	status := task.Status
	update := store.TaskUpdate{Status: &status}
	if task.AssignedWorker != "" {
		worker := task.AssignedWorker
		update.AssignedWorker = &worker
	}
	if err := o.mirror.UpdateTask(ctx, task.ID, update); err != nil {
		o.logger.Warn("failed to mirror task transition", "task_id", task.ID, "error", err)
	}
}

func (o *Orchestrator) mirrorInsert(ctx context.Context, task *domain.Task) {
	if o.mirror == nil {
		return
	}
	if err := o.mirror.InsertTask(ctx, task); err != nil {
		o.logger.Warn("failed to mirror task creation", "task_id", task.ID, "error", err)
	}
}

func (o *Orchestrator) mirrorFinalize(ctx context.Context, task *domain.Task) {
	if o.mirror == nil {
		return
	}

	status := task.Status
	message := task.Message
	update := store.TaskUpdate{
		Status:  &status,
		Message: &message,
		Result:  task.Result,
	}
	if task.AssignedWorker != "" {
		worker := task.AssignedWorker
		update.AssignedWorker = &worker
	}
	if task.CompletedAt != nil {
		completedAt := *task.CompletedAt
		update.CompletedAt = &completedAt
		seconds := task.ProcessingTime().Seconds()
		update.ProcessingTime = &seconds
	}
	if err := o.mirror.UpdateTask(ctx, task.ID, update); err != nil {
		o.logger.Warn("failed to mirror task outcome", "task_id", task.ID, "error", err)
	}
}

func (o *Orchestrator) emit(ctx context.Context, event *events.TaskLifecycleEvent) {
	if o.emitter == nil {
		return
	}
	if err := o.emitter.EmitEvent(ctx, event); err != nil {
		o.logger.Warn("failed to emit lifecycle event", "event_kind", event.Kind, "error", err)
	}
}

// listFromRegistry serves listing directly from the registry when no
// durable mirror is configured.
func (o *Orchestrator) listFromRegistry(filter store.TaskFilter, page store.Page) ([]*domain.Task, int64, error) {
	all := o.registry.List(filter.Status)
	total := int64(len(all))

	offset := page.Offset
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if page.Limit > 0 && offset+page.Limit < end {
		end = offset + page.Limit
	}
	return all[offset:end], total, nil
}

// QueueDepth reports how many accepted tasks are waiting in the queue.
func (o *Orchestrator) QueueDepth() int {
	return len(o.taskChan)
}
