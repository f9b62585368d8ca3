package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/weeki-api/internal/domain"
	"github.com/phrazzld/weeki-api/internal/platform/logger"
	"github.com/phrazzld/weeki-api/internal/store"
)

// TaskStore implements the store.TaskMirror interface using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// NewTaskStore creates a new TaskStore.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{
		db: db,
	}
}

// InsertTask persists a snapshot of a task. Inserting an ID that already
// exists upserts the mutable columns instead of failing, so retried
// mirror writes stay idempotent.
func (s *TaskStore) InsertTask(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	taskContext, err := json.Marshal(task.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal task context: %w", err)
	}
	result, err := marshalResult(task.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (id, directive, context, status, result, message, assigned_worker, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			result = EXCLUDED.result,
			message = EXCLUDED.message,
			assigned_worker = EXCLUDED.assigned_worker,
			completed_at = EXCLUDED.completed_at
	`

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.Directive,
		taskContext,
		string(task.Status),
		result,
		nullableString(task.Message),
		nullableString(task.AssignedWorker),
		task.CreatedAt.UTC(),
		nullableTime(task.CompletedAt),
	)
	if err != nil {
		log.Error("failed to insert task",
			"task_id", task.ID,
			"error", err)
		return MapError(fmt.Errorf("failed to insert task: %w", err))
	}

	return nil
}

// UpdateTask applies the non-nil fields of the update to the task row.
// Updating an unknown ID is a no-op, matching the best-effort mirror
// contract.
func (s *TaskStore) UpdateTask(ctx context.Context, taskID uuid.UUID, update store.TaskUpdate) error {
	log := logger.FromContext(ctx)

	setClauses := make([]string, 0, 6)
	args := make([]any, 0, 7)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Status != nil {
		setClauses = append(setClauses, "status = "+arg(string(*update.Status)))
	}
	if update.Message != nil {
		setClauses = append(setClauses, "message = "+arg(nullableString(*update.Message)))
	}
	if update.Result != nil {
		result, err := marshalResult(update.Result)
		if err != nil {
			return err
		}
		setClauses = append(setClauses, "result = "+arg(result))
	}
	if update.AssignedWorker != nil {
		setClauses = append(setClauses, "assigned_worker = "+arg(nullableString(*update.AssignedWorker)))
	}
	if update.CompletedAt != nil {
		setClauses = append(setClauses, "completed_at = "+arg(update.CompletedAt.UTC()))
	}
	if update.ProcessingTime != nil {
		setClauses = append(setClauses, "processing_time = "+arg(*update.ProcessingTime))
	}

	if len(setClauses) == 0 {
		return nil
	}

	query := "UPDATE tasks SET " + strings.Join(setClauses, ", ") + " WHERE id = " + arg(taskID)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update task",
			"task_id", taskID,
			"error", err)
		return MapError(fmt.Errorf("failed to update task: %w", err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Warn("no task row to update", "task_id", taskID)
	}

	return nil
}

// ListTasks returns tasks matching the filter, newest first, bounded by
// the page.
func (s *TaskStore) ListTasks(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, directive, context, status, result, message, assigned_worker, created_at, completed_at
		FROM tasks
	`
	args := make([]any, 0, 3)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf("WHERE status = $%d\n", len(args))
	}
	query += "ORDER BY created_at DESC\n"
	if page.Limit > 0 {
		args = append(args, page.Limit)
		query += fmt.Sprintf("LIMIT $%d\n", len(args))
	}
	if page.Offset > 0 {
		args = append(args, page.Offset)
		query += fmt.Sprintf("OFFSET $%d\n", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", "error", err)
		return nil, MapError(fmt.Errorf("failed to query tasks: %w", err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", "error", err)
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", "error", err)
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// CountTasks returns the number of tasks matching the filter.
func (s *TaskStore) CountTasks(ctx context.Context, filter store.TaskFilter) (int64, error) {
	log := logger.FromContext(ctx)

	query := "SELECT COUNT(*) FROM tasks"
	args := make([]any, 0, 1)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += " WHERE status = $1"
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", "error", err)
		return 0, MapError(fmt.Errorf("failed to count tasks: %w", err))
	}

	return total, nil
}

// scanTask reads one task row into a domain.Task.
func scanTask(rows *sql.Rows) (*domain.Task, error) {
	var (
		id             uuid.UUID
		directive      string
		contextRaw     []byte
		status         string
		resultRaw      []byte
		message        sql.NullString
		assignedWorker sql.NullString
		createdAt      time.Time
		completedAt    sql.NullTime
	)

	if err := rows.Scan(&id, &directive, &contextRaw, &status, &resultRaw, &message, &assignedWorker, &createdAt, &completedAt); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:             id,
		Directive:      directive,
		Status:         domain.TaskStatus(status),
		Message:        message.String,
		AssignedWorker: assignedWorker.String,
		CreatedAt:      createdAt,
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	if len(contextRaw) > 0 {
		if err := json.Unmarshal(contextRaw, &task.Context); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task context: %w", err)
		}
	}
	if task.Context == nil {
		task.Context = map[string]any{}
	}
	if len(resultRaw) > 0 {
		if err := json.Unmarshal(resultRaw, &task.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task result: %w", err)
		}
	}

	return task, nil
}

// marshalResult serializes a result map, preserving NULL for absent
// results so the completed-iff-result invariant survives round trips.
func marshalResult(result map[string]any) (any, error) {
	if result == nil {
		return nil, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task result: %w", err)
	}
	return raw, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
