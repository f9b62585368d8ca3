package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/weeki-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newInProgressTask(t *testing.T, directive string) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(directive, nil)
	require.NoError(t, err)
	require.NoError(t, task.MarkInProgress())
	return task
}

func TestWorkerProcess(t *testing.T) {
	t.Parallel()

	t.Run("specialist populates domain result", func(t *testing.T) {
		t.Parallel()

		worker := newWorker(domain.Worker{
			ID:     SpecialistCodingID,
			Role:   domain.WorkerRoleSpecialist,
			Domain: "coding",
			Active: true,
		}, time.Millisecond, testLogger())

		task := newInProgressTask(t, "build a parser")
		require.NoError(t, worker.Process(context.Background(), task))

		assert.Equal(t, domain.TaskStatusCompleted, task.Status)
		assert.Equal(t, SpecialistCodingID, task.Result["processed_by"])
		assert.Equal(t, "coding", task.Result["domain"])
		assert.Contains(t, task.Result["analysis"], "build a parser")
		assert.Contains(t, task.Result, "recommendations")
		assert.Equal(t, "specialist task completed in domain: coding", task.Message)
		require.NotNil(t, task.CompletedAt)
	})

	t.Run("utility populates specialty result", func(t *testing.T) {
		t.Parallel()

		worker := newWorker(domain.Worker{
			ID:        UtilityFormattingID,
			Role:      domain.WorkerRoleUtility,
			Specialty: "formatting",
			Active:    true,
		}, time.Millisecond, testLogger())

		task := newInProgressTask(t, "tidy this up")
		require.NoError(t, worker.Process(context.Background(), task))

		assert.Equal(t, domain.TaskStatusCompleted, task.Status)
		assert.Equal(t, UtilityFormattingID, task.Result["processed_by"])
		assert.Equal(t, "formatting", task.Result["specialty"])
		assert.Equal(t, "tidy this up", task.Result["original_directive"])
		assert.Equal(t, "utility task processed by formatting worker", task.Message)
		require.NotNil(t, task.CompletedAt)
	})

	t.Run("occupies caller for the configured interval", func(t *testing.T) {
		t.Parallel()

		latency := 50 * time.Millisecond
		worker := newWorker(domain.Worker{
			ID:        UtilityDataProcessingID,
			Role:      domain.WorkerRoleUtility,
			Specialty: "data_processing",
			Active:    true,
		}, latency, testLogger())

		task := newInProgressTask(t, "crunch numbers")

		start := time.Now()
		require.NoError(t, worker.Process(context.Background(), task))
		assert.GreaterOrEqual(t, time.Since(start), latency)
	})

	t.Run("internal fault becomes failed task", func(t *testing.T) {
		t.Parallel()

		worker := newWorker(domain.Worker{
			ID:        UtilityDataProcessingID,
			Role:      domain.WorkerRoleUtility,
			Specialty: "data_processing",
			Active:    true,
		}, time.Millisecond, testLogger())
		worker.processOverride = func(context.Context, *domain.Task) error {
			return errors.New("simulated internal fault")
		}

		task := newInProgressTask(t, "crunch numbers")
		require.NoError(t, worker.Process(context.Background(), task))

		assert.Equal(t, domain.TaskStatusFailed, task.Status)
		assert.Contains(t, task.Message, "simulated internal fault")
		require.NotNil(t, task.CompletedAt)
		assert.Empty(t, task.Result)
	})
}
