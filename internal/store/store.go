// Package store persists validation runs and their check log in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/awut-validate/internal/logging"
	"github.com/danielpatrickdp/awut-validate/internal/scorecard"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("store: run not found")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	finished_at    TEXT,
	config_path    TEXT,
	passed         INTEGER,
	reason         TEXT,
	scorecard_json TEXT
);

CREATE TABLE IF NOT EXISTS check_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	check_name   TEXT NOT NULL,
	status       TEXT NOT NULL,
	report_json  TEXT,
	reason       TEXT,
	duration_ms  INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_check_log_run ON check_log(run_id);
`

// #endregion schema

// #region store-struct
// Store manages validation runs in SQLite.
type Store struct {
	db *sqlx.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations. Foreign keys and the
// busy timeout are set in the DSN so every pooled connection gets them.
func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying handle for the check log writer.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// #region begin-run
// BeginRun records a new unfinished run and returns it.
func (s *Store) BeginRun(configPath string) (Run, error) {
	run := Run{
		RunID:      uuid.New().String(),
		ConfigPath: configPath,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, created_at, config_path) VALUES (?, ?, ?)`,
		run.RunID, run.CreatedAt.Format(logging.TimeFormat), logging.NullIfEmpty(configPath),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// #endregion begin-run

// #region finish-run
// FinishRun stores the scorecard verdict for runID.
func (s *Store) FinishRun(runID string, sc scorecard.Scorecard) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal scorecard: %w", err)
	}

	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, passed = ?, reason = ?, scorecard_json = ? WHERE run_id = ?`,
		time.Now().UTC().Format(logging.TimeFormat), sc.Passed, sc.Reason, string(data), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// AbortRun closes runID without a verdict. passed stays NULL and reason says
// why the run stopped.
func (s *Store) AbortRun(runID, reason string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, reason = ? WHERE run_id = ? AND finished_at IS NULL`,
		time.Now().UTC().Format(logging.TimeFormat), logging.NullIfEmpty(reason), runID,
	)
	if err != nil {
		return fmt.Errorf("abort run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("abort run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// #endregion finish-run

// #region get-run
const runColumns = `run_id, created_at, finished_at, config_path, passed, reason, scorecard_json`

// GetRun retrieves a run by id.
func (s *Store) GetRun(id string) (Run, error) {
	var row runRow
	err := s.db.Get(&row, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return row.toRun(), nil
}

// LastRun returns the most recently started run.
func (s *Store) LastRun() (Run, error) {
	runs, err := s.ListRuns(1)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, ErrRunNotFound
	}
	return runs[0], nil
}

// #endregion get-run

// #region list
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	var rows []runRow
	err := s.db.Select(&rows, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs := make([]Run, len(rows))
	for i, r := range rows {
		runs[i] = r.toRun()
	}
	return runs, nil
}

// ListChecks returns the check log of runID in insertion order.
func (s *Store) ListChecks(runID string) ([]Check, error) {
	var rows []checkRow
	err := s.db.Select(&rows,
		`SELECT id, run_id, check_name, status, report_json, reason, duration_ms, created_at
		 FROM check_log WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	checks := make([]Check, len(rows))
	for i, r := range rows {
		checks[i] = r.toCheck()
	}
	return checks, nil
}

// #endregion list
