package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/weeki-api/internal/api/shared"
	"github.com/phrazzld/weeki-api/internal/domain"
	"github.com/phrazzld/weeki-api/internal/store"
)

// Listing defaults and bounds.
const (
	defaultPerPage = 50
	maxPerPage     = 500
)

// TaskService exposes the task operations the handlers call. The
// orchestrator satisfies it.
type TaskService interface {
	// CreateTask registers a directive for asynchronous processing and
	// returns the creation-time snapshot.
	CreateTask(ctx context.Context, directive string, taskContext map[string]any) (*domain.Task, error)

	// GetTaskStatus returns the current snapshot of the task, or
	// store.ErrTaskNotFound for unknown IDs.
	GetTaskStatus(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks returns a page of task snapshots and the total match count.
	ListTasks(ctx context.Context, filter store.TaskFilter, page store.Page) ([]*domain.Task, int64, error)
}

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	service   TaskService
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(service TaskService) *TaskHandler {
	return &TaskHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateTask handles POST /api/tasks. The task is accepted for
// asynchronous processing, so the response is 202 with the pending
// snapshot.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	task, err := h.service.CreateTask(r.Context(), req.Directive, req.Context)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to create task", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, NewTaskResponse(task))
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.service.GetTaskStatus(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// ListTasks handles GET /api/tasks with optional status filtering and
// 1-based page/per_page pagination. The page number is translated into
// offset/limit for the store layer.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, pageNum, perPage, ok := h.parseListQuery(w, r)
	if !ok {
		return
	}

	page := store.Page{
		Offset: (pageNum - 1) * perPage,
		Limit:  perPage,
	}

	tasks, total, err := h.service.ListTasks(r.Context(), filter, page)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to list tasks", err)
		return
	}

	resp := TaskListResponse{
		Tasks:   make([]TaskResponse, 0, len(tasks)),
		Total:   total,
		Page:    pageNum,
		PerPage: perPage,
	}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, NewTaskResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// parseListQuery reads the status/page/per_page query parameters. On a
// bad parameter it writes the error response and returns ok=false.
func (h *TaskHandler) parseListQuery(w http.ResponseWriter, r *http.Request) (filter store.TaskFilter, pageNum, perPage int, ok bool) {
	pageNum = 1
	perPage = defaultPerPage

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.IsValid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status filter")
			return filter, pageNum, perPage, false
		}
		filter.Status = &status
	}

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid page")
			return filter, pageNum, perPage, false
		}
		pageNum = n
	}

	if raw := r.URL.Query().Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid per_page")
			return filter, pageNum, perPage, false
		}
		if n > maxPerPage {
			n = maxPerPage
		}
		perPage = n
	}

	return filter, pageNum, perPage, true
}
