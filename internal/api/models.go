package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/weeki-api/internal/domain"
)

// Common request/response structures

// CreateTaskRequest defines the payload for the task submission endpoint.
// An empty directive is accepted; it falls through to the default worker.
type CreateTaskRequest struct {
	Directive string         `json:"directive"`
	Context   map[string]any `json:"context,omitempty"`
}

// TokenRequest defines the payload for the token issuance endpoint.
type TokenRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// TokenResponse defines the successful response for the token endpoint.
type TokenResponse struct {
	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// TaskResponse is the API representation of a task.
type TaskResponse struct {
	TaskID         uuid.UUID      `json:"task_id"`
	Directive      string         `json:"directive"`
	Context        map[string]any `json:"context,omitempty"`
	Status         string         `json:"status"`
	Result         map[string]any `json:"result,omitempty"`
	Message        string         `json:"message,omitempty"`
	AssignedWorker string         `json:"assigned_worker,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	ProcessingTime *float64       `json:"processing_time,omitempty"`
}

// NewTaskResponse converts a task snapshot to its API representation.
func NewTaskResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		TaskID:         task.ID,
		Directive:      task.Directive,
		Context:        task.Context,
		Status:         string(task.Status),
		Result:         task.Result,
		Message:        task.Message,
		AssignedWorker: task.AssignedWorker,
		CreatedAt:      task.CreatedAt,
		CompletedAt:    task.CompletedAt,
	}
	if task.CompletedAt != nil {
		seconds := task.ProcessingTime().Seconds()
		resp.ProcessingTime = &seconds
	}
	return resp
}

// TaskListResponse defines the response for the task listing endpoint.
// Page is 1-based; together with Total and PerPage it lets callers walk
// every page.
type TaskListResponse struct {
	Tasks   []TaskResponse `json:"tasks"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// WorkerResponse is the API representation of a pool worker.
type WorkerResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Domain    string `json:"domain,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	Active    bool   `json:"active"`
}

// NewWorkerResponse converts worker metadata to its API representation.
func NewWorkerResponse(worker domain.Worker) WorkerResponse {
	return WorkerResponse{
		ID:        worker.ID,
		Role:      string(worker.Role),
		Domain:    worker.Domain,
		Specialty: worker.Specialty,
		Active:    worker.Active,
	}
}

// RootResponse defines the response for the service root endpoint.
type RootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// HealthResponse defines the response for the health endpoint.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	ActiveWorkers int    `json:"active_workers"`
}

// MetricsResponse is the API representation of a system metrics sample.
type MetricsResponse struct {
	SampledAt         time.Time `json:"sampled_at"`
	ActiveWorkers     int       `json:"active_workers"`
	PendingTasks      int       `json:"pending_tasks"`
	InProgressTasks   int       `json:"in_progress_tasks"`
	CompletedTasks    int       `json:"completed_tasks"`
	FailedTasks       int       `json:"failed_tasks"`
	AvgProcessingTime *float64  `json:"avg_processing_time,omitempty"`
}

// NewMetricsResponse converts a metrics sample to its API representation.
func NewMetricsResponse(m *domain.SystemMetrics) *MetricsResponse {
	return &MetricsResponse{
		SampledAt:         m.SampledAt,
		ActiveWorkers:     m.ActiveWorkers,
		PendingTasks:      m.PendingTasks,
		InProgressTasks:   m.InProgressTasks,
		CompletedTasks:    m.CompletedTasks,
		FailedTasks:       m.FailedTasks,
		AvgProcessingTime: m.AvgProcessingTime,
	}
}

// StatusResponse defines the response for the detailed status endpoint.
type StatusResponse struct {
	PoolState     string           `json:"pool_state"`
	ActiveWorkers int              `json:"active_workers"`
	QueueDepth    int              `json:"queue_depth"`
	TaskCounts    map[string]int   `json:"task_counts"`
	Workers       []WorkerResponse `json:"workers"`
	LatestMetrics *MetricsResponse `json:"latest_metrics,omitempty"`
}
