package scheduler

import (
	"github.com/BartekS5/posts-etl/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes DAG run and task try counters.
//
//   - posts_etl_dag_runs_total{dag,state}
//   - posts_etl_task_tries_total{task,state}
//   - posts_etl_task_retries_total{task}
//   - posts_etl_posts_written_total
//   - posts_etl_dag_run_duration_seconds
//   - posts_etl_last_success_timestamp
//
// A nil *Metrics records nothing.
type Metrics struct {
	RunsTotal            *prometheus.CounterVec
	TaskTriesTotal       *prometheus.CounterVec
	TaskRetriesTotal     *prometheus.CounterVec
	PostsWrittenTotal    prometheus.Counter
	RunDurationSeconds   prometheus.Histogram
	LastSuccessTimestamp prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_etl_dag_runs_total",
			Help: "Total number of DAG runs by final state",
		}, []string{"dag", "state"}),

		TaskTriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_etl_task_tries_total",
			Help: "Total number of task attempts by task and outcome",
		}, []string{"task", "state"}),

		TaskRetriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_etl_task_retries_total",
			Help: "Total number of task retries scheduled",
		}, []string{"task"}),

		PostsWrittenTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "posts_etl_posts_written_total",
			Help: "Total number of posts written by the load step",
		}),

		RunDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "posts_etl_dag_run_duration_seconds",
			Help:    "Duration of DAG runs in seconds, including retry waits",
			Buckets: []float64{0.5, 1, 5, 30, 60, 300, 600, 1800},
		}),

		LastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "posts_etl_last_success_timestamp",
			Help: "Unix timestamp of the last successful DAG run",
		}),
	}
}

func (m *Metrics) RecordRun(run *models.RunRecord) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(run.DAGID, string(run.State)).Inc()
	m.RunDurationSeconds.Observe(run.Duration().Seconds())
	if run.State == models.StateSuccess {
		m.PostsWrittenTotal.Add(float64(run.Written))
		m.LastSuccessTimestamp.Set(float64(run.FinishedAt.Unix()))
	}
}

func (m *Metrics) RecordTaskTry(task string, state models.State) {
	if m == nil {
		return
	}
	m.TaskTriesTotal.WithLabelValues(task, string(state)).Inc()
}

func (m *Metrics) RecordRetry(task string) {
	if m == nil {
		return
	}
	m.TaskRetriesTotal.WithLabelValues(task).Inc()
}
