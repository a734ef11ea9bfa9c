package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/awut-validate/internal/logging"
	"github.com/danielpatrickdp/awut-validate/internal/scorecard"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBeginAndGetRun(t *testing.T) {
	s := tempDB(t)

	run, err := s.BeginRun("config.json")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.RunID == "" {
		t.Fatal("expected non-empty run ID")
	}

	got, err := s.GetRun(run.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.ConfigPath != "config.json" {
		t.Fatalf("expected config.json, got %q", got.ConfigPath)
	}
	if got.Passed != nil || got.Finished() {
		t.Fatal("new run must be unfinished")
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", got.CreatedAt, run.CreatedAt)
	}
}

func TestFinishRun(t *testing.T) {
	s := tempDB(t)
	run, _ := s.BeginRun("")

	sc := scorecard.Scorecard{
		Passed: false,
		Reason: "scorecard failed: CMB low-ℓ Δχ²",
		Rows:   []scorecard.Row{{Domain: "Cosmology", Test: "CMB low-ℓ Δχ²", Result: scorecard.Fail}},
	}
	if err := s.FinishRun(run.RunID, sc); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := s.GetRun(run.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Passed == nil || *got.Passed {
		t.Fatalf("expected passed=false, got %v", got.Passed)
	}
	if !got.Finished() {
		t.Fatal("expected finished_at to be set")
	}
	if got.Reason != sc.Reason {
		t.Fatalf("unexpected reason %q", got.Reason)
	}

	var decoded scorecard.Scorecard
	if err := json.Unmarshal([]byte(got.ScorecardJSON), &decoded); err != nil {
		t.Fatalf("decode scorecard: %v", err)
	}
	if len(decoded.Rows) != 1 || decoded.Rows[0].Result != scorecard.Fail {
		t.Fatalf("unexpected scorecard %+v", decoded)
	}
}

func TestFinishRunUnknown(t *testing.T) {
	s := tempDB(t)
	err := s.FinishRun("missing", scorecard.Scorecard{Passed: true})
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestAbortRun(t *testing.T) {
	s := tempDB(t)
	run, _ := s.BeginRun("")

	if err := s.AbortRun(run.RunID, "aborted: context canceled"); err != nil {
		t.Fatalf("AbortRun: %v", err)
	}
	got, err := s.GetRun(run.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !got.Finished() || got.Passed != nil {
		t.Fatalf("expected finished run without verdict, got %+v", got)
	}
	if got.Reason != "aborted: context canceled" {
		t.Fatalf("unexpected reason %q", got.Reason)
	}

	// A closed run cannot be aborted again.
	if err := s.AbortRun(run.RunID, "again"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if err := s.AbortRun("missing", "x"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestTimestampsShareLayout(t *testing.T) {
	s := tempDB(t)
	run, _ := s.BeginRun("")
	if err := logging.LogCheck(s.DB(), logging.CheckEntry{RunID: run.RunID, Check: "cmb", Status: "OK"}); err != nil {
		t.Fatalf("LogCheck: %v", err)
	}

	var runAt, checkAt string
	if err := s.DB().Get(&runAt, `SELECT created_at FROM runs`); err != nil {
		t.Fatalf("select run: %v", err)
	}
	if err := s.DB().Get(&checkAt, `SELECT created_at FROM check_log`); err != nil {
		t.Fatalf("select check: %v", err)
	}
	for _, v := range []string{runAt, checkAt} {
		if len(v) != len(runAt) {
			t.Fatalf("created_at widths differ: %q vs %q", runAt, checkAt)
		}
		if _, err := time.Parse(logging.TimeFormat, v); err != nil {
			t.Fatalf("created_at %q not in the shared layout: %v", v, err)
		}
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := tempDB(t)
	_, err := s.GetRun("nonexistent-id")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRunsAndLast(t *testing.T) {
	s := tempDB(t)

	if _, err := s.LastRun(); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound on empty db, got %v", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := s.BeginRun("")
		if err != nil {
			t.Fatalf("BeginRun: %v", err)
		}
		ids = append(ids, run.RunID)
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != ids[2] || runs[1].RunID != ids[1] {
		t.Fatal("expected newest first")
	}

	last, err := s.LastRun()
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if last.RunID != ids[2] {
		t.Fatalf("expected %s, got %s", ids[2], last.RunID)
	}
}

func TestListChecks(t *testing.T) {
	s := tempDB(t)
	run, _ := s.BeginRun("")
	other, _ := s.BeginRun("")

	for _, name := range []string{"leptons", "cmb"} {
		err := logging.LogCheck(s.DB(), logging.CheckEntry{
			RunID: run.RunID, Check: name, Status: "OK", Duration: 20 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("LogCheck: %v", err)
		}
	}
	logging.LogCheck(s.DB(), logging.CheckEntry{RunID: other.RunID, Check: "lensing", Status: "SKIPPED", Reason: "no data"})

	checks, err := s.ListChecks(run.RunID)
	if err != nil {
		t.Fatalf("ListChecks: %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(checks))
	}
	if checks[0].Name != "leptons" || checks[1].Name != "cmb" {
		t.Fatal("expected insertion order")
	}
	if checks[0].Duration != 20*time.Millisecond {
		t.Fatalf("unexpected duration %v", checks[0].Duration)
	}

	skipped, _ := s.ListChecks(other.RunID)
	if len(skipped) != 1 || skipped[0].Reason != "no data" {
		t.Fatalf("unexpected checks %+v", skipped)
	}
}

func TestCheckRequiresRun(t *testing.T) {
	s := tempDB(t)
	err := logging.LogCheck(s.DB(), logging.CheckEntry{RunID: "no-such-run", Check: "x", Status: "OK"})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func TestNewStoreInvalidPath(t *testing.T) {
	_, err := NewStore(filepath.Join(string(os.PathSeparator), "nonexistent", "deep", "path", "test.db"))
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestNewStoreCorruptDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "corrupt.db")
	os.WriteFile(dbPath, []byte("not a sqlite database, just some bytes padded out to look like a header"), 0o644)

	if _, err := NewStore(dbPath); err == nil {
		t.Fatal("expected error for corrupted DB file")
	}
}

func TestOperationsOnClosedDB(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.Close()

	if _, err := s.BeginRun(""); err == nil {
		t.Error("BeginRun: expected error on closed DB")
	}
	if _, err := s.ListRuns(5); err == nil {
		t.Error("ListRuns: expected error on closed DB")
	}
	if _, err := s.ListChecks("x"); err == nil {
		t.Error("ListChecks: expected error on closed DB")
	}
	if err := s.FinishRun("x", scorecard.Scorecard{}); err == nil {
		t.Error("FinishRun: expected error on closed DB")
	}
}

func TestDBAccessor(t *testing.T) {
	if tempDB(t).DB() == nil {
		t.Fatal("expected non-nil handle")
	}
}
