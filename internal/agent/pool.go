package agent

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/weeki-api/internal/domain"
)

// PoolState tracks the worker pool lifecycle.
type PoolState string

// Pool lifecycle states
const (
	PoolStateUninitialized PoolState = "uninitialized"
	PoolStateInitializing  PoolState = "initializing"
	PoolStateReady         PoolState = "ready"
	PoolStateShuttingDown  PoolState = "shutting_down"
	PoolStateStopped       PoolState = "stopped"
)

// Specialist domains and utility specialties of the fixed pool, in
// activation order.
var (
	specialistDomains  = []string{"coding", "design", "research", "writing"}
	utilitySpecialties = []string{"data_processing", "formatting", "communication"}
)

// PoolConfig holds the per-role simulated processing latencies.
// Specialists are slower than utilities to model heavier work.
type PoolConfig struct {
	SpecialistLatency time.Duration
	UtilityLatency    time.Duration
}

// DefaultPoolConfig returns a PoolConfig with the standard latencies.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		SpecialistLatency: 2 * time.Second,
		UtilityLatency:    1 * time.Second,
	}
}

// Pool owns the fixed set of workers: one specialist per domain, one
// utility per specialty, and the dispatcher supervising them. Workers
// exist only between Initialize and Shutdown; there is no dynamic
// registration.
type Pool struct {
	mu      sync.RWMutex
	state   PoolState
	workers map[string]*Worker // arena keyed by worker ID
	order   []string           // activation order, for reverse-order shutdown
	config  PoolConfig
	logger  *slog.Logger
}

// NewPool creates an uninitialized pool. Call Initialize before use.
func NewPool(config PoolConfig, logger *slog.Logger) *Pool {
	return &Pool{
		state:  PoolStateUninitialized,
		config: config,
		logger: logger.With("component", "worker_pool"),
	}
}

// Initialize constructs all fixed workers and marks each active, with
// the dispatcher activated first. Calling Initialize on a running pool
// recreates every worker; callers must guard against double
// initialization themselves.
func (p *Pool) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = PoolStateInitializing
	p.workers = make(map[string]*Worker)
	p.order = nil

	dispatcher := domain.Worker{ID: DispatcherID, Role: domain.WorkerRoleOrchestrator, Active: true}
	if err := p.addWorker(dispatcher, 0); err != nil {
		return err
	}

	for _, domainTag := range specialistDomains {
		worker := domain.Worker{
			ID:     fmt.Sprintf("specialist_%s", domainTag),
			Role:   domain.WorkerRoleSpecialist,
			Domain: domainTag,
			Active: true,
		}
		if err := p.addWorker(worker, p.config.SpecialistLatency); err != nil {
			return err
		}
	}

	for _, specialty := range utilitySpecialties {
		worker := domain.Worker{
			ID:        fmt.Sprintf("utility_%s", specialty),
			Role:      domain.WorkerRoleUtility,
			Specialty: specialty,
			Active:    true,
		}
		if err := p.addWorker(worker, p.config.UtilityLatency); err != nil {
			return err
		}
	}

	p.state = PoolStateReady
	p.logger.Info("worker pool initialized", "worker_count", len(p.workers))
	return nil
}

// addWorker validates and activates a single worker. Caller holds the lock.
func (p *Pool) addWorker(info domain.Worker, latency time.Duration) error {
	if err := info.Validate(); err != nil {
		p.state = PoolStateUninitialized
		return fmt.Errorf("invalid worker %q: %w", info.ID, err)
	}

	p.workers[info.ID] = newWorker(info, latency, p.logger)
	p.order = append(p.order, info.ID)
	p.logger.Info("worker activated", "worker_id", info.ID, "worker_role", string(info.Role))
	return nil
}

// Shutdown deactivates all workers in reverse activation order, so the
// specialists and utilities stop before the dispatcher that supervises
// them. Safe to call on an uninitialized pool.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = PoolStateShuttingDown

	for i := len(p.order) - 1; i >= 0; i-- {
		worker := p.workers[p.order[i]]
		worker.info.Active = false
		p.logger.Info("worker deactivated", "worker_id", worker.info.ID)
	}

	p.state = PoolStateStopped
	p.logger.Info("worker pool shut down")
}

// State returns the current lifecycle state.
func (p *Pool) State() PoolState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// ActiveWorker returns the worker with the given ID if it exists and is
// live. Inactive workers are treated as absent.
func (p *Pool) ActiveWorker(id string) (*Worker, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	worker, ok := p.workers[id]
	if !ok || !worker.info.Active {
		return nil, false
	}
	return worker, true
}

// ActiveWorkerCount returns the number of live workers, the dispatcher
// included. External health checks use this as a coarse liveness signal.
func (p *Pool) ActiveWorkerCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	count := 0
	for _, worker := range p.workers {
		if worker.info.Active {
			count++
		}
	}
	return count
}

// Workers returns a snapshot of all worker entities in activation order.
func (p *Pool) Workers() []domain.Worker {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := make([]domain.Worker, 0, len(p.order))
	for _, id := range p.order {
		snapshot = append(snapshot, p.workers[id].info)
	}
	return snapshot
}
