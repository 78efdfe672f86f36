package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup pre-populates report caches after an eviction window.
	TaskReportsWarmup = "reports:warmup"
	// TaskReportsRefresh evicts every report cache, then warms it.
	TaskReportsRefresh = "reports:refresh"
	// TaskLowStockScan checks for products at or below their threshold.
	TaskLowStockScan = "stock:low-scan"
)

// ReportsWarmupPayload selects which reports to warm; empty means all.
type ReportsWarmupPayload struct {
	Reports []string `json:"reports,omitempty"`
}

// NewReportsWarmupTask constructs an Asynq task.
func NewReportsWarmupTask(payload ReportsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}

// NewReportsRefreshTask constructs an Asynq task.
func NewReportsRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskReportsRefresh, nil)
}

// NewLowStockScanTask constructs an Asynq task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil)
}
