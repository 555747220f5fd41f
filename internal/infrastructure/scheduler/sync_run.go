package scheduler

import (
	"time"

	"github.com/wms/backend/internal/domain/fulfillment"
)

// SyncRunStatus represents the outcome of one scheduled pass
type SyncRunStatus string

const (
	SyncRunStatusRunning SyncRunStatus = "RUNNING"
	SyncRunStatusSuccess SyncRunStatus = "SUCCESS"
	SyncRunStatusPartial SyncRunStatus = "PARTIAL"
	SyncRunStatusFailed  SyncRunStatus = "FAILED"
)

// SyncTrigger says what started a pass
type SyncTrigger string

const (
	SyncTriggerStartup   SyncTrigger = "startup"
	SyncTriggerScheduled SyncTrigger = "scheduled"
	SyncTriggerManual    SyncTrigger = "manual"
)

// SyncRun is the history record of one pass
type SyncRun struct {
	ID         string        `json:"id"`
	Sequence   int64         `json:"sequence"`
	Trigger    SyncTrigger   `json:"trigger"`
	Status     SyncRunStatus `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	DurationMs int64         `json:"duration_ms"`

	LiveOrders    int    `json:"live_orders"`
	Pruned        int    `json:"pruned"`
	Inserted      int    `json:"inserted"`
	Duplicates    int    `json:"duplicates"`
	Malformed     int    `json:"malformed"`
	Batches       int    `json:"batches"`
	FailedBatches int    `json:"failed_batches"`
	AuthRefreshed bool   `json:"auth_refreshed"`
	Error         string `json:"error,omitempty"`
}

// complete copies the pass report into the run and classifies it
func (r *SyncRun) complete(report fulfillment.PassReport, finishedAt time.Time) {
	r.FinishedAt = finishedAt
	r.DurationMs = finishedAt.Sub(r.StartedAt).Milliseconds()
	r.LiveOrders = report.LiveOrders
	r.Pruned = report.Pruned
	r.Inserted = report.Inserted
	r.Duplicates = report.Duplicates
	r.Malformed = report.Malformed
	r.Batches = report.Batches
	r.FailedBatches = report.FailedBatches
	r.AuthRefreshed = report.AuthRefreshed
	r.Error = report.ErrorMessage()

	switch {
	case report.Aborted:
		r.Status = SyncRunStatusFailed
	case !report.Succeeded():
		r.Status = SyncRunStatusPartial
	default:
		r.Status = SyncRunStatusSuccess
	}
}

// fail records a run that produced no report
func (r *SyncRun) fail(err error, finishedAt time.Time) {
	r.FinishedAt = finishedAt
	r.DurationMs = finishedAt.Sub(r.StartedAt).Milliseconds()
	r.Status = SyncRunStatusFailed
	r.Error = err.Error()
}

// SchedulerStatus is a point-in-time view of the scheduler
type SchedulerStatus struct {
	Running   bool       `json:"running"`
	InFlight  bool       `json:"in_flight"`
	Interval  string     `json:"interval"`
	PassCount int64      `json:"pass_count"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
	LastRun   *SyncRun   `json:"last_run,omitempty"`
}
