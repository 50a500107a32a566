package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunEmpty     RunStatus = "empty"
	RunFailed    RunStatus = "failed"
)

// Run is a persisted record of one pipeline execution.
type Run struct {
	ID           string
	Sequence     int
	Status       RunStatus
	Countries    []string
	Days         int
	TasksTotal   int
	TasksFailed  int
	RowsTotal    int
	RowsFailed   int
	OutputPath   string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Validate checks the fields required before a run is stored.
func (r *Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("run id is required")
	}
	switch r.Status {
	case RunRunning, RunCompleted, RunEmpty, RunFailed:
	default:
		return fmt.Errorf("invalid run status %q", r.Status)
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("run start time is required")
	}
	return nil
}

// Duration returns how long the run took, or zero while it is still running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
