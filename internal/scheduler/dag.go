// Package scheduler runs the posts pipeline as a DAG of named tasks: it
// owns task ordering, retries, run history, metrics and the cron schedule.
package scheduler

import (
	"time"

	"github.com/BartekS5/posts-etl/internal/etl"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// DefaultArgs apply to every task of a DAG.
type DefaultArgs struct {
	Owner      string
	StartDate  time.Time
	Retries    int
	RetryDelay time.Duration
}

// DAG describes a workflow: its identity, schedule and the linear order of
// its tasks.
type DAG struct {
	ID          string
	Description string
	Schedule    string
	Tasks       []string
	DefaultArgs DefaultArgs
}

// PostsDAG is the daily extract/transform/load workflow for the
// JSONPlaceholder posts feed.
func PostsDAG() DAG {
	return DAG{
		ID:          "etl_jsonplaceholder_pipeline",
		Description: "An ETL DAG for JSONPlaceholder Data",
		Schedule:    "@daily",
		Tasks:       etl.Steps(),
		DefaultArgs: DefaultArgs{
			Owner:      "posts-etl",
			StartDate:  time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
			Retries:    1,
			RetryDelay: 5 * time.Minute,
		},
	}
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func (d DAG) Validate() error {
	if d.ID == "" {
		return errors.New("dag id must not be empty")
	}
	if len(d.Tasks) == 0 {
		return errors.Errorf("dag %s has no tasks", d.ID)
	}
	seen := make(map[string]bool, len(d.Tasks))
	for _, task := range d.Tasks {
		if task == "" || seen[task] {
			return errors.Errorf("dag %s: task ids must be unique and non-empty, got %q", d.ID, task)
		}
		seen[task] = true
	}
	if d.DefaultArgs.Retries < 0 {
		return errors.Errorf("dag %s: retries must not be negative", d.ID)
	}
	if d.DefaultArgs.RetryDelay < 0 {
		return errors.Errorf("dag %s: retry delay must not be negative", d.ID)
	}
	if _, err := cronParser.Parse(d.Schedule); err != nil {
		return errors.Wrapf(err, "dag %s: invalid schedule %q", d.ID, d.Schedule)
	}
	return nil
}

// NextRun returns the first scheduled tick after t, never earlier than the
// start date.
func (d DAG) NextRun(t time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(d.Schedule)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "dag %s: invalid schedule %q", d.ID, d.Schedule)
	}
	if t.Before(d.DefaultArgs.StartDate) {
		t = d.DefaultArgs.StartDate.Add(-time.Second)
	}
	return sched.Next(t), nil
}
