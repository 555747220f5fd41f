package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when stopping or triggering a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrSchedulerAlreadyRunning is returned when starting a running scheduler
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")

	// ErrSchedulerStopping is returned when starting while a stopped loop still has a pass in flight
	ErrSchedulerStopping = errors.New("scheduler is still stopping")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrPassPanicked marks a run whose pass panicked
	ErrPassPanicked = errors.New("sync pass panicked")
)
