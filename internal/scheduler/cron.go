package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Scheduler triggers a Runner on its DAG's cron schedule.
type Scheduler struct {
	runner *Runner
	loc    *time.Location
	ready  atomic.Bool
	now    func() time.Time
}

func NewScheduler(runner *Runner, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{runner: runner, loc: loc, now: time.Now}
}

// Ready reports whether the cron loop has been started.
func (s *Scheduler) Ready() bool {
	return s.ready.Load()
}

// Run blocks until ctx is done. Runs still in flight when ctx is cancelled
// see the cancellation and are waited for before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	dag := s.runner.DAG()
	c := cron.New(cron.WithLocation(s.loc), cron.WithParser(cronParser))
	if _, err := c.AddFunc(dag.Schedule, func() { s.tick(ctx) }); err != nil {
		return errors.Wrapf(err, "add cron job for dag %s", dag.ID)
	}
	c.Start()
	s.ready.Store(true)

	if next, err := dag.NextRun(s.now().In(s.loc)); err == nil {
		logger.Infow("Scheduler started", "dag", dag.ID, "schedule", dag.Schedule,
			"timezone", s.loc.String(), "next_run", next)
	}

	<-ctx.Done()
	s.ready.Store(false)
	logger.Info("Scheduler shutting down, waiting for running DAG runs")
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	dag := s.runner.DAG()
	now := s.now()
	if now.Before(dag.DefaultArgs.StartDate) {
		logger.Debugf("Skipping tick for dag %s before start date %s", dag.ID, dag.DefaultArgs.StartDate)
		return
	}
	if ctx.Err() != nil {
		return
	}
	if _, err := s.runner.Trigger(ctx); err != nil {
		// already logged and recorded by the runner
		logger.Debugf("Scheduled run of dag %s ended with error: %v", dag.ID, err)
	}
}
