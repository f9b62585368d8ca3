package api

import (
	"context"
	"net/http"

	"github.com/phrazzld/weeki-api/internal/agent"
	"github.com/phrazzld/weeki-api/internal/api/shared"
	"github.com/phrazzld/weeki-api/internal/domain"
	"github.com/phrazzld/weeki-api/internal/store"
)

// ServiceName identifies the service in the root endpoint response.
const ServiceName = "weeki-api"

// SystemService exposes the pool and registry counters the system
// endpoints report. The orchestrator satisfies it.
type SystemService interface {
	ActiveWorkerCount() int
	PoolState() agent.PoolState
	Workers() []domain.Worker
	CountsByStatus() map[domain.TaskStatus]int
	QueueDepth() int
}

// SystemHandler handles the root, health, and status endpoints.
type SystemHandler struct {
	service SystemService
	metrics store.MetricsStore
	version string
}

// NewSystemHandler creates a new SystemHandler. The metrics store may be
// nil; the status endpoint then omits the latest sample.
func NewSystemHandler(service SystemService, metrics store.MetricsStore, version string) *SystemHandler {
	return &SystemHandler{
		service: service,
		metrics: metrics,
		version: version,
	}
}

// Root handles GET /.
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, RootResponse{
		Service: ServiceName,
		Version: h.version,
		Status:  "running",
	})
}

// Health handles GET /health. The service is healthy when the worker
// pool is ready; otherwise it reports 503 so load balancers back off.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		ActiveWorkers: h.service.ActiveWorkerCount(),
	}

	status := http.StatusOK
	if h.service.PoolState() != agent.PoolStateReady {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	shared.RespondWithJSON(w, r, status, resp)
}

// Status handles GET /status with a detailed operational snapshot.
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	counts := h.service.CountsByStatus()
	taskCounts := make(map[string]int, len(counts))
	for status, n := range counts {
		taskCounts[string(status)] = n
	}

	workers := h.service.Workers()
	resp := StatusResponse{
		PoolState:     string(h.service.PoolState()),
		ActiveWorkers: h.service.ActiveWorkerCount(),
		QueueDepth:    h.service.QueueDepth(),
		TaskCounts:    taskCounts,
		Workers:       make([]WorkerResponse, 0, len(workers)),
	}
	for _, worker := range workers {
		resp.Workers = append(resp.Workers, NewWorkerResponse(worker))
	}

	resp.LatestMetrics = h.latestMetrics(r.Context())

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// latestMetrics fetches the most recent sample, tolerating an absent or
// failing metrics store.
func (h *SystemHandler) latestMetrics(ctx context.Context) *MetricsResponse {
	if h.metrics == nil {
		return nil
	}

	// Failures are logged by the store layer; the status page simply
	// omits the sample.
	sample, err := h.metrics.LatestMetrics(ctx)
	if err != nil {
		return nil
	}
	return NewMetricsResponse(sample)
}
