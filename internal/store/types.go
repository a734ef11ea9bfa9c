package store

import (
	"database/sql"
	"time"
)

// #region run-record
// Run is one validation run. Passed is nil until the run is finished.
type Run struct {
	RunID         string
	ConfigPath    string
	CreatedAt     time.Time
	FinishedAt    time.Time
	Passed        *bool
	Reason        string
	ScorecardJSON string
}

// Finished reports whether FinishRun has been recorded.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

type runRow struct {
	RunID         string         `db:"run_id"`
	CreatedAt     string         `db:"created_at"`
	FinishedAt    sql.NullString `db:"finished_at"`
	ConfigPath    sql.NullString `db:"config_path"`
	Passed        sql.NullBool   `db:"passed"`
	Reason        sql.NullString `db:"reason"`
	ScorecardJSON sql.NullString `db:"scorecard_json"`
}

func (r runRow) toRun() Run {
	run := Run{
		RunID:         r.RunID,
		ConfigPath:    r.ConfigPath.String,
		Reason:        r.Reason.String,
		ScorecardJSON: r.ScorecardJSON.String,
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	if r.FinishedAt.Valid {
		run.FinishedAt, _ = time.Parse(time.RFC3339Nano, r.FinishedAt.String)
	}
	if r.Passed.Valid {
		p := r.Passed.Bool
		run.Passed = &p
	}
	return run
}

// #endregion run-record

// #region check-record
// Check is one row of the check log.
type Check struct {
	ID         int64
	RunID      string
	Name       string
	Status     string
	ReportJSON string
	Reason     string
	Duration   time.Duration
	CreatedAt  time.Time
}

type checkRow struct {
	ID         int64          `db:"id"`
	RunID      string         `db:"run_id"`
	Name       string         `db:"check_name"`
	Status     string         `db:"status"`
	ReportJSON sql.NullString `db:"report_json"`
	Reason     sql.NullString `db:"reason"`
	DurationMS int64          `db:"duration_ms"`
	CreatedAt  string         `db:"created_at"`
}

func (r checkRow) toCheck() Check {
	c := Check{
		ID:         r.ID,
		RunID:      r.RunID,
		Name:       r.Name,
		Status:     r.Status,
		ReportJSON: r.ReportJSON.String,
		Reason:     r.Reason.String,
		Duration:   time.Duration(r.DurationMS) * time.Millisecond,
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	return c
}

// #endregion check-record
