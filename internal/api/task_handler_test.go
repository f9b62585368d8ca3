package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/weeki-api/internal/domain"
	"github.com/phrazzld/weeki-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTaskService implements TaskService with canned behavior.
type stubTaskService struct {
	createFunc func(ctx context.Context, directive string, taskContext map[string]any) (*domain.Task, error)
	getFunc    func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listFunc   func(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, int64, error)
}

func (s *stubTaskService) CreateTask(ctx context.Context, directive string, taskContext map[string]any) (*domain.Task, error) {
	return s.createFunc(ctx, directive, taskContext)
}

func (s *stubTaskService) GetTaskStatus(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getFunc(ctx, id)
}

func (s *stubTaskService) ListTasks(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, int64, error) {
	return s.listFunc(ctx, filter, page)
}

func newTaskRouter(service TaskService) http.Handler {
	r := chi.NewRouter()
	handler := NewTaskHandler(service)
	r.Post("/api/tasks", handler.CreateTask)
	r.Get("/api/tasks", handler.ListTasks)
	r.Get("/api/tasks/{id}", handler.GetTask)
	return r
}

func TestCreateTaskEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("accepts directive and returns 202", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{
			createFunc: func(_ context.Context, directive string, taskContext map[string]any) (*domain.Task, error) {
				assert.Equal(t, "build the report", directive)
				assert.Equal(t, "pdf", taskContext["format"])
				return domain.NewTask(directive, taskContext)
			},
		}

		body := bytes.NewBufferString(`{"directive": "build the report", "context": {"format": "pdf"}}`)
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", body)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "build the report", resp.Directive)
		assert.Equal(t, string(domain.TaskStatusPending), resp.Status)
		assert.NotEqual(t, uuid.Nil, resp.TaskID)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{}
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("accepts empty directive", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{
			createFunc: func(_ context.Context, directive string, taskContext map[string]any) (*domain.Task, error) {
				assert.Empty(t, directive)
				return domain.NewTask(directive, taskContext)
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("maps service failure to 500", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{
			createFunc: func(context.Context, string, map[string]any) (*domain.Task, error) {
				return nil, errors.New("queue wedged")
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewBufferString(`{"directive":"x"}`))
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestGetTaskEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns task snapshot", func(t *testing.T) {
		t.Parallel()

		task, err := domain.NewTask("research the market", nil)
		require.NoError(t, err)
		require.NoError(t, task.MarkInProgress())
		task.AssignedWorker = "specialist_research"

		service := &stubTaskService{
			getFunc: func(_ context.Context, id uuid.UUID) (*domain.Task, error) {
				assert.Equal(t, task.ID, id)
				return task, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+task.ID.String(), nil)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, task.ID, resp.TaskID)
		assert.Equal(t, string(domain.TaskStatusInProgress), resp.Status)
		assert.Equal(t, "specialist_research", resp.AssignedWorker)
	})

	t.Run("unknown task returns 404", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{
			getFunc: func(context.Context, uuid.UUID) (*domain.Task, error) {
				return nil, store.ErrTaskNotFound
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{}
		req := httptest.NewRequest(http.MethodGet, "/api/tasks/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListTasksEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns first page with totals by default", func(t *testing.T) {
		t.Parallel()

		first, err := domain.NewTask("one", nil)
		require.NoError(t, err)
		second, err := domain.NewTask("two", nil)
		require.NoError(t, err)

		service := &stubTaskService{
			listFunc: func(_ context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, int64, error) {
				assert.Nil(t, filter.Status)
				assert.Equal(t, 0, page.Offset)
				assert.Equal(t, defaultPerPage, page.Limit)
				return []*domain.Task{first, second}, 9, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Tasks, 2)
		assert.Equal(t, int64(9), resp.Total)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, defaultPerPage, resp.PerPage)
	})

	t.Run("translates page and per_page into offset and limit", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{
			listFunc: func(_ context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, int64, error) {
				require.NotNil(t, filter.Status)
				assert.Equal(t, domain.TaskStatusCompleted, *filter.Status)
				assert.Equal(t, 20, page.Offset)
				assert.Equal(t, 10, page.Limit)
				return nil, 0, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/tasks?status=completed&page=3&per_page=10", nil)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp TaskListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Page)
		assert.Equal(t, 10, resp.PerPage)
	})

	t.Run("rejects unknown status filter", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{}
		req := httptest.NewRequest(http.MethodGet, "/api/tasks?status=bogus", nil)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects page below one", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{}
		req := httptest.NewRequest(http.MethodGet, "/api/tasks?page=0", nil)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects non-positive per_page", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{}
		req := httptest.NewRequest(http.MethodGet, "/api/tasks?per_page=0", nil)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("caps oversized per_page", func(t *testing.T) {
		t.Parallel()

		service := &stubTaskService{
			listFunc: func(_ context.Context, _ store.TaskFilter, page store.Page) ([]*domain.Task, int64, error) {
				assert.Equal(t, maxPerPage, page.Limit)
				return nil, 0, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/tasks?per_page=99999", nil)
		rec := httptest.NewRecorder()
		newTaskRouter(service).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
