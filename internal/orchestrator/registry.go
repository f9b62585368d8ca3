package orchestrator

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/weeki-api/internal/domain"
)

// Registry is the authoritative in-memory record of every task the
// orchestrator has accepted. Reads return deep copies so callers never
// observe a task mid-mutation.
type Registry struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Put stores a snapshot of the task, replacing any previous entry with
// the same ID.
func (r *Registry) Put(task *domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task.Clone()
}

// Get returns a snapshot of the task with the given ID, or false if the
// registry has never seen it.
func (r *Registry) Get(id uuid.UUID) (*domain.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, false
	}
	return task.Clone(), true
}

// List returns snapshots of all tasks matching the optional status
// filter, newest first.
func (r *Registry) List(status *domain.TaskStatus) []*domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if status != nil && task.Status != *status {
			continue
		}
		out = append(out, task.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of tasks recorded.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// CountsByStatus returns how many tasks currently sit in each status.
func (r *Registry) CountsByStatus() map[domain.TaskStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.TaskStatus]int, 4)
	for _, task := range r.tasks {
		counts[task.Status]++
	}
	return counts
}
