// Package history keeps a local ledger of batch runs in SQLite so operators
// can review past runs without warehouse access.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"flakeforge/internal/common"
	"flakeforge/pkg/errors"
)

// Run is one recorded batch execution.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	TotalRows  int64
	Error      string
	Steps      []Step
}

// Step is one recorded layer step within a run.
type Step struct {
	Step     string
	Table    string
	Status   string
	RowsIn   int64
	RowsOut  int64
	Duration time.Duration
	Error    string
}

// Run and step statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	status      TEXT NOT NULL,
	total_rows  INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS run_steps (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	step        TEXT NOT NULL,
	table_name  TEXT NOT NULL,
	status      TEXT NOT NULL,
	rows_in     INTEGER NOT NULL DEFAULT 0,
	rows_out    INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);
`

// Store is the SQLite-backed run ledger.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the ledger location under the app home directory.
func DefaultPath() (string, error) {
	home, err := common.AppHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to open history database").
			WithContext("path", path)
	}

	// The ledger is single-writer; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to initialize history schema").
			WithContext("path", path)
	}

	return &Store{db: db}, nil
}

// Close closes the ledger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun writes a run and its steps in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to begin history transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, status, total_rows, error) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Status, run.TotalRows, run.Error,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to record run").
			WithContext("run_id", run.ID)
	}

	for i, step := range run.Steps {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_steps (run_id, seq, step, table_name, status, rows_in, rows_out, duration_ms, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, step.Step, step.Table, step.Status, step.RowsIn, step.RowsOut, step.Duration.Milliseconds(), step.Error,
		)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to record run step").
				WithContext("run_id", run.ID).
				WithContext("table", step.Table)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first, without step detail.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, total_rows, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.TotalRows, &r.Error); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its step detail. The id may be a unique prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, status, total_rows, error
		 FROM runs WHERE id LIKE ? ORDER BY started_at DESC LIMIT 1`, id+"%").
		Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.TotalRows, &r.Error)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeFileNotFound, "No run found with that id").
			WithContext("run_id", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to load run").
			WithContext("run_id", id)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT step, table_name, status, rows_in, rows_out, duration_ms, error
		 FROM run_steps WHERE run_id = ? ORDER BY seq`, r.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileOperation, "Failed to load run steps").
			WithContext("run_id", r.ID)
	}
	defer rows.Close()

	for rows.Next() {
		var st Step
		var durationMS int64
		if err := rows.Scan(&st.Step, &st.Table, &st.Status, &st.RowsIn, &st.RowsOut, &durationMS, &st.Error); err != nil {
			return nil, err
		}
		st.Duration = time.Duration(durationMS) * time.Millisecond
		r.Steps = append(r.Steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &r, nil
}
