package domain

import "time"

// SystemMetrics is a point-in-time sample of system health: active
// workers and task counts by status, plus the average processing time of
// recently completed tasks (nil when no tasks completed in the window).
type SystemMetrics struct {
	SampledAt         time.Time `json:"sampled_at"`
	ActiveWorkers     int       `json:"active_workers"`
	PendingTasks      int       `json:"pending_tasks"`
	InProgressTasks   int       `json:"in_progress_tasks"`
	CompletedTasks    int       `json:"completed_tasks"`
	FailedTasks       int       `json:"failed_tasks"`
	AvgProcessingTime *float64  `json:"avg_processing_time,omitempty"`
}
