package fulfillment

import "time"

// PassReport summarizes one reconciliation pass.
// A pass never fails as a whole towards its caller; Err and Aborted carry the outcome.
type PassReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	LiveOrders    int  `json:"live_orders"`
	Pruned        int  `json:"pruned"`
	NewOrders     int  `json:"new_orders"`
	Batches       int  `json:"batches"`
	FailedBatches int  `json:"failed_batches"`
	Inserted      int  `json:"inserted"`
	Duplicates    int  `json:"duplicates"`
	Malformed     int  `json:"malformed"`
	AuthRefreshed bool `json:"auth_refreshed"`

	// Aborted is set when the listing could not be obtained; no store mutation happened
	Aborted bool  `json:"aborted"`
	Err     error `json:"-"`
}

// Duration returns how long the pass took
func (r PassReport) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the pass completed without aborting or losing a batch
func (r PassReport) Succeeded() bool {
	return !r.Aborted && r.FailedBatches == 0 && r.Err == nil
}

// ErrorMessage returns the error text, or empty when there was none
func (r PassReport) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
