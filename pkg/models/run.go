package models

import "time"

// State of a DAG run or of a single task try.
type State string

const (
	StateRunning    State = "running"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
	StateUpForRetry State = "up_for_retry"
)

// RunRecord describes one execution of a DAG.
type RunRecord struct {
	ID         string
	DAGID      string
	State      State
	StartedAt  time.Time
	FinishedAt time.Time
	Extracted  int
	Written    int
	Error      string
}

// TaskTry describes one attempt of one task inside a run.
type TaskTry struct {
	RunID      string
	TaskID     string
	TryNumber  int
	State      State
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
}

// Duration returns how long the run took, or zero while it is running.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
