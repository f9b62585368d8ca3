// Package monitor samples system health on a fixed interval and
// persists the samples through the metrics store.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/weeki-api/internal/domain"
	"github.com/phrazzld/weeki-api/internal/store"
)

// avgWindow bounds the lookback used for the average processing time.
const avgWindow = time.Hour

// StatusSource exposes the live counters the sampler records. The
// orchestrator satisfies it.
type StatusSource interface {
	ActiveWorkerCount() int
	CountsByStatus() map[domain.TaskStatus]int
}

// Sampler periodically captures a SystemMetrics snapshot and appends it
// to the metrics store.
type Sampler struct {
	source   StatusSource
	metrics  store.MetricsStore
	interval time.Duration
	logger   *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewSampler creates a Sampler. The interval must be positive.
func NewSampler(source StatusSource, metrics store.MetricsStore, interval time.Duration, logger *slog.Logger) *Sampler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sampler{
		source:     source,
		metrics:    metrics,
		interval:   interval,
		logger:     logger.With("component", "monitor"),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the sampling loop.
func (s *Sampler) Start() {
	s.wg.Add(1)
	go s.loop()
	s.logger.Info("metrics sampler started", "interval", s.interval)
}

// Stop halts the sampling loop and waits for it to exit.
func (s *Sampler) Stop() {
	s.cancelFunc()
	s.wg.Wait()
	s.logger.Info("metrics sampler stopped")
}

func (s *Sampler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sampleOnce()
		}
	}
}

// sampleOnce records a single snapshot. Storage failures are logged and
// skipped; the next tick tries again.
func (s *Sampler) sampleOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()

	sample := s.Snapshot(ctx)
	if err := s.metrics.InsertMetrics(ctx, sample); err != nil {
		s.logger.Warn("failed to persist metrics sample", "error", err)
		return
	}

	s.logger.Debug("metrics sample recorded",
		"active_workers", sample.ActiveWorkers,
		"pending_tasks", sample.PendingTasks,
		"in_progress_tasks", sample.InProgressTasks,
		"completed_tasks", sample.CompletedTasks,
		"failed_tasks", sample.FailedTasks)
}

// Snapshot builds a SystemMetrics sample from the live counters without
// persisting it.
func (s *Sampler) Snapshot(ctx context.Context) *domain.SystemMetrics {
	counts := s.source.CountsByStatus()

	sample := &domain.SystemMetrics{
		SampledAt:       time.Now().UTC(),
		ActiveWorkers:   s.source.ActiveWorkerCount(),
		PendingTasks:    counts[domain.TaskStatusPending],
		InProgressTasks: counts[domain.TaskStatusInProgress],
		CompletedTasks:  counts[domain.TaskStatusCompleted],
		FailedTasks:     counts[domain.TaskStatusFailed],
	}

	avg, err := s.metrics.AvgProcessingTime(ctx, avgWindow)
	if err != nil {
		s.logger.Warn("failed to compute average processing time", "error", err)
	} else {
		sample.AvgProcessingTime = avg
	}

	return sample
}
