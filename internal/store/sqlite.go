package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	status       TEXT NOT NULL DEFAULT 'running',
	locations    INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	started_at   DATETIME NOT NULL,
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS run_stages (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	name        TEXT NOT NULL,
	status      TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_run_stages_run_id ON run_stages(run_id);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateRun inserts a new run in the running state.
func (s *SQLiteStore) CreateRun(ctx context.Context) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, ?, ?)`,
		run.ID, string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

// CompleteRun finalizes a run with its status and output size.
func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status RunStatus, locations int, runErr string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, locations = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(status), locations, runErr, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}

// RecordStage appends one stage record to a run.
func (s *SQLiteStore) RecordStage(ctx context.Context, stage Stage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_stages (id, run_id, name, status, detail, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), stage.RunID, stage.Name, stage.Status, stage.Detail, stage.Duration.Milliseconds(),
	)
	return eris.Wrapf(err, "sqlite: insert stage %s", stage.Name)
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, locations, error, started_at, completed_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query runs")
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var status string
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &status, &r.Locations, &r.Error, &r.StartedAt, &completed); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = RunStatus(status)
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// ListStages returns a run's stages in insertion order.
func (s *SQLiteStore) ListStages(ctx context.Context, runID string) ([]Stage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, name, status, detail, duration_ms FROM run_stages WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query stages")
	}
	defer func() { _ = rows.Close() }()

	var stages []Stage
	for rows.Next() {
		var st Stage
		var ms int64
		if err := rows.Scan(&st.RunID, &st.Name, &st.Status, &st.Detail, &ms); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stage")
		}
		st.Duration = time.Duration(ms) * time.Millisecond
		stages = append(stages, st)
	}
	return stages, eris.Wrap(rows.Err(), "sqlite: iterate stages")
}
