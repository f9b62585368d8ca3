package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/weeki-api/internal/domain"
	"github.com/phrazzld/weeki-api/internal/platform/logger"
	"github.com/phrazzld/weeki-api/internal/store"
)

// MetricsStore implements the store.MetricsStore interface using PostgreSQL.
type MetricsStore struct {
	db store.DBTX
}

// NewMetricsStore creates a new MetricsStore.
func NewMetricsStore(db store.DBTX) *MetricsStore {
	return &MetricsStore{
		db: db,
	}
}

// InsertMetrics appends a metrics sample.
func (s *MetricsStore) InsertMetrics(ctx context.Context, metrics *domain.SystemMetrics) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO system_metrics (sampled_at, active_workers, pending_tasks, in_progress_tasks, completed_tasks, failed_tasks, avg_processing_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var avg any
	if metrics.AvgProcessingTime != nil {
		avg = *metrics.AvgProcessingTime
	}

	_, err := s.db.ExecContext(ctx, query,
		metrics.SampledAt.UTC(),
		metrics.ActiveWorkers,
		metrics.PendingTasks,
		metrics.InProgressTasks,
		metrics.CompletedTasks,
		metrics.FailedTasks,
		avg,
	)
	if err != nil {
		log.Error("failed to insert metrics sample", "error", err)
		return MapError(fmt.Errorf("failed to insert metrics sample: %w", err))
	}

	return nil
}

// LatestMetrics returns the most recent sample, or store.ErrMetricsNotFound
// when nothing has been sampled yet.
func (s *MetricsStore) LatestMetrics(ctx context.Context) (*domain.SystemMetrics, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT sampled_at, active_workers, pending_tasks, in_progress_tasks, completed_tasks, failed_tasks, avg_processing_time
		FROM system_metrics
		ORDER BY sampled_at DESC
		LIMIT 1
	`

	var (
		metrics domain.SystemMetrics
		avg     sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, query).Scan(
		&metrics.SampledAt,
		&metrics.ActiveWorkers,
		&metrics.PendingTasks,
		&metrics.InProgressTasks,
		&metrics.CompletedTasks,
		&metrics.FailedTasks,
		&avg,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMetricsNotFound
		}
		log.Error("failed to query latest metrics", "error", err)
		return nil, MapError(fmt.Errorf("failed to query latest metrics: %w", err))
	}

	if avg.Valid {
		value := avg.Float64
		metrics.AvgProcessingTime = &value
	}

	return &metrics, nil
}

// AvgProcessingTime returns the mean processing time in seconds of tasks
// completed within the window, or nil when none completed.
func (s *MetricsStore) AvgProcessingTime(ctx context.Context, window time.Duration) (*float64, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT AVG(processing_time)
		FROM tasks
		WHERE status = 'completed' AND completed_at >= $1
	`

	var avg sql.NullFloat64
	since := time.Now().UTC().Add(-window)
	if err := s.db.QueryRowContext(ctx, query, since).Scan(&avg); err != nil {
		log.Error("failed to compute average processing time", "error", err)
		return nil, MapError(fmt.Errorf("failed to compute average processing time: %w", err))
	}

	if !avg.Valid {
		return nil, nil
	}
	value := avg.Float64
	return &value, nil
}
