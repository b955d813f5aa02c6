// Package store persists scheduler run history in SQLite.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/BartekS5/posts-etl/pkg/models"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS dag_runs (
	id TEXT PRIMARY KEY,
	dag_id TEXT NOT NULL,
	state TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	extracted INTEGER NOT NULL DEFAULT 0,
	written INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_dag_runs_dag_started ON dag_runs (dag_id, started_at);
CREATE TABLE IF NOT EXISTS task_instances (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES dag_runs (id),
	task_id TEXT NOT NULL,
	try_number INTEGER NOT NULL,
	state TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_task_instances_run ON task_instances (run_id);
`

type History struct {
	db *sql.DB
}

func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// Migrate creates the tables if they do not exist.
func (h *History) Migrate(ctx context.Context) error {
	if _, err := h.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "create history tables")
	}
	return nil
}

func (h *History) StartRun(ctx context.Context, run *models.RunRecord) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO dag_runs (id, dag_id, state, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.DAGID, string(run.State), run.StartedAt.UTC())
	return errors.Wrapf(err, "save run %s", run.ID)
}

func (h *History) FinishRun(ctx context.Context, run *models.RunRecord) error {
	_, err := h.db.ExecContext(ctx,
		`UPDATE dag_runs SET state = ?, finished_at = ?, extracted = ?, written = ?, error = ? WHERE id = ?`,
		string(run.State), run.FinishedAt.UTC(), run.Extracted, run.Written, run.Error, run.ID)
	return errors.Wrapf(err, "update run %s", run.ID)
}

func (h *History) RecordTaskTry(ctx context.Context, try *models.TaskTry) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO task_instances (run_id, task_id, try_number, state, started_at, finished_at, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		try.RunID, try.TaskID, try.TryNumber, string(try.State), try.StartedAt.UTC(), nullTime(try.FinishedAt), try.Error)
	return errors.Wrapf(err, "save task %s try %d", try.TaskID, try.TryNumber)
}

// ListRuns returns the most recent runs of a DAG, newest first.
func (h *History) ListRuns(ctx context.Context, dagID string, limit int) ([]models.RunRecord, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, dag_id, state, started_at, finished_at, extracted, written, error
		 FROM dag_runs WHERE dag_id = ? ORDER BY started_at DESC LIMIT ?`,
		dagID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []models.RunRecord
	for rows.Next() {
		var r models.RunRecord
		var state string
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.DAGID, &state, &r.StartedAt, &finished, &r.Extracted, &r.Written, &r.Error); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		r.State = models.State(state)
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "iterate runs")
}

// ListTaskTries returns every recorded attempt of a run in execution order.
func (h *History) ListTaskTries(ctx context.Context, runID string) ([]models.TaskTry, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, task_id, try_number, state, started_at, finished_at, error
		 FROM task_instances WHERE run_id = ? ORDER BY id`,
		runID)
	if err != nil {
		return nil, errors.Wrap(err, "query task tries")
	}
	defer rows.Close()

	var tries []models.TaskTry
	for rows.Next() {
		var tt models.TaskTry
		var state string
		var finished sql.NullTime
		if err := rows.Scan(&tt.RunID, &tt.TaskID, &tt.TryNumber, &state, &tt.StartedAt, &finished, &tt.Error); err != nil {
			return nil, errors.Wrap(err, "scan task try")
		}
		tt.State = models.State(state)
		if finished.Valid {
			tt.FinishedAt = finished.Time
		}
		tries = append(tries, tt)
	}
	return tries, errors.Wrap(rows.Err(), "iterate task tries")
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
