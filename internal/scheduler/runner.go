package scheduler

import (
	"context"
	"time"

	"github.com/BartekS5/posts-etl/internal/etl"
	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/BartekS5/posts-etl/pkg/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Workflow is the unit of work a Runner drives. *etl.Pipeline implements it.
type Workflow interface {
	Run(ctx context.Context, steps etl.StepRunner) (*etl.Result, error)
}

// History persists runs and task tries. *store.History implements it.
type History interface {
	StartRun(ctx context.Context, run *models.RunRecord) error
	FinishRun(ctx context.Context, run *models.RunRecord) error
	RecordTaskTry(ctx context.Context, try *models.TaskTry) error
}

type Option func(*Runner)

func WithHistory(h History) Option {
	return func(r *Runner) { r.history = h }
}

func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// Runner executes one DAG run at a time per Trigger call. Concurrent
// Trigger calls are allowed and are not coordinated with each other.
type Runner struct {
	dag      DAG
	workflow Workflow
	history  History
	metrics  *Metrics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRunner(dag DAG, wf Workflow, opts ...Option) (*Runner, error) {
	if err := dag.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		dag:      dag,
		workflow: wf,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runner) DAG() DAG {
	return r.dag
}

// Trigger starts a run immediately and blocks until it finishes. The
// returned record is populated even when err is not nil.
func (r *Runner) Trigger(ctx context.Context) (*models.RunRecord, error) {
	run := &models.RunRecord{
		ID:        uuid.NewString(),
		DAGID:     r.dag.ID,
		State:     models.StateRunning,
		StartedAt: r.now(),
	}
	logger.Infow("Starting DAG run", "dag", r.dag.ID, "run_id", run.ID, "owner", r.dag.DefaultArgs.Owner)
	r.saveStart(ctx, run)

	tasks := &taskRunner{runner: r, run: run}
	res, err := r.workflow.Run(ctx, tasks)
	if res != nil {
		run.Extracted = res.Extracted
		run.Written = res.Written
	}
	if err == nil && tasks.next != len(r.dag.Tasks) {
		err = errors.Errorf("dag %s: run ended after %d of %d tasks", r.dag.ID, tasks.next, len(r.dag.Tasks))
	}

	run.FinishedAt = r.now()
	if err != nil {
		run.State = models.StateFailed
		run.Error = err.Error()
		logger.Errorw("DAG run failed", "dag", r.dag.ID, "run_id", run.ID, "duration", run.Duration(), "error", err)
	} else {
		run.State = models.StateSuccess
		logger.Infow("DAG run succeeded", "dag", r.dag.ID, "run_id", run.ID, "duration", run.Duration(),
			"extracted", run.Extracted, "written", run.Written)
	}

	r.saveFinish(ctx, run)
	r.metrics.RecordRun(run)
	return run, err
}

func (r *Runner) saveStart(ctx context.Context, run *models.RunRecord) {
	if r.history == nil {
		return
	}
	if err := r.history.StartRun(ctx, run); err != nil {
		logger.Warnf("Could not record start of run %s: %v", run.ID, err)
	}
}

func (r *Runner) saveFinish(ctx context.Context, run *models.RunRecord) {
	if r.history == nil {
		return
	}
	// the outcome is recorded even when the run was cancelled
	if err := r.history.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warnf("Could not record end of run %s: %v", run.ID, err)
	}
}

func (r *Runner) saveTry(ctx context.Context, try *models.TaskTry) {
	r.metrics.RecordTaskTry(try.TaskID, try.State)
	if r.history == nil {
		return
	}
	if err := r.history.RecordTaskTry(context.WithoutCancel(ctx), try); err != nil {
		logger.Warnf("Could not record task %s try %d: %v", try.TaskID, try.TryNumber, err)
	}
}

// taskRunner is the etl.StepRunner handed to the workflow for one run.
type taskRunner struct {
	runner *Runner
	run    *models.RunRecord
	next   int
}

func (t *taskRunner) RunStep(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	r := t.runner
	tasks := r.dag.Tasks

	// 1. The step must be the next task the DAG declares. Nothing runs
	// otherwise, and the task is not marked as attempted.
	if t.next >= len(tasks) || tasks[t.next] != name {
		expected := "<none>"
		if t.next < len(tasks) {
			expected = tasks[t.next]
		}
		return errors.Wrapf(ErrTaskOutOfOrder, "dag %s: got %q, expected %q", r.dag.ID, name, expected)
	}
	t.next++

	// 2. Run the step up to Retries+1 times. Each try is recorded with its
	// own state: up_for_retry while attempts remain, failed on the last one.
	attempts := r.dag.DefaultArgs.Retries + 1
	delay := r.dag.DefaultArgs.RetryDelay
	for attempt := 1; ; attempt++ {
		rec := &models.TaskTry{RunID: t.run.ID, TaskID: name, TryNumber: attempt, StartedAt: r.now()}
		err := fn(ctx)
		rec.FinishedAt = r.now()

		switch {
		case err == nil:
			rec.State = models.StateSuccess
		// a cancelled run gets no further tries
		case attempt < attempts && ctx.Err() == nil:
			rec.State = models.StateUpForRetry
			rec.Error = err.Error()
		default:
			rec.State = models.StateFailed
			rec.Error = err.Error()
		}
		r.saveTry(ctx, rec)

		switch rec.State {
		case models.StateSuccess:
			logger.Infow("Task succeeded", "run_id", t.run.ID, "task", name, "try", attempt,
				"duration", rec.FinishedAt.Sub(rec.StartedAt))
			return nil
		case models.StateFailed:
			return &TaskError{DAGID: r.dag.ID, Task: name, Attempts: attempt, Err: err}
		}

		// 3. Wait before the next try. Shutdown cuts the wait short and
		// ends the task with the context error.
		logger.Warnw("Task failed, will retry", "run_id", t.run.ID, "task", name, "try", attempt,
			"max_tries", attempts, "retry_delay", delay, "error", err)
		r.metrics.RecordRetry(name)
		if werr := r.sleep(ctx, delay); werr != nil {
			return &TaskError{
				DAGID:    r.dag.ID,
				Task:     name,
				Attempts: attempt,
				Err:      errors.Wrapf(werr, "retry aborted after: %v", err),
			}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
