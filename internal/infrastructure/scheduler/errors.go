package scheduler

import "errors"

var (
	// ErrSchedulerRunning is returned when Start is called twice
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrJobInProgress is returned when a job is triggered while its previous run is still going
	ErrJobInProgress = errors.New("job already in progress")
)
