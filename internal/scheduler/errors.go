package scheduler

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTaskOutOfOrder is returned when a step runs before the task the DAG
// declares next.
var ErrTaskOutOfOrder = errors.New("task out of order")

// TaskError reports a task that failed on its last allowed attempt.
type TaskError struct {
	DAGID    string
	Task     string
	Attempts int
	Err      error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("dag %s: task %s failed after %d attempt(s): %v", e.DAGID, e.Task, e.Attempts, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
