// Package logging holds the structured logger helpers and the check log writer.
package logging

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// TimeFormat is the fixed-width timestamp layout shared by every table, so
// created_at columns sort lexically.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// #region check-entry
// CheckEntry is a single row in the check_log table.
type CheckEntry struct {
	RunID      string
	Check      string
	Status     string
	ReportJSON string
	Reason     string
	Duration   time.Duration
	CreatedAt  time.Time
}

// #endregion check-entry

// #region log-check
// LogCheck writes entry to the check_log table.
func LogCheck(db sqlx.Ext, entry CheckEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := sqlx.NamedExec(db,
		`INSERT INTO check_log (run_id, check_name, status, report_json, reason, duration_ms, created_at)
		 VALUES (:run_id, :check_name, :status, :report_json, :reason, :duration_ms, :created_at)`,
		map[string]any{
			"run_id":      entry.RunID,
			"check_name":  entry.Check,
			"status":      entry.Status,
			"report_json": NullIfEmpty(entry.ReportJSON),
			"reason":      NullIfEmpty(entry.Reason),
			"duration_ms": entry.Duration.Milliseconds(),
			"created_at":  entry.CreatedAt.Format(TimeFormat),
		},
	)
	if err != nil {
		return fmt.Errorf("log check: %w", err)
	}
	return nil
}

// #endregion log-check

// NullIfEmpty maps "" to a SQL NULL argument.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
