package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/awut-validate/internal/config"
	"github.com/danielpatrickdp/awut-validate/internal/report"
	"github.com/danielpatrickdp/awut-validate/internal/scorecard"
	"github.com/danielpatrickdp/awut-validate/internal/store"
)

const workspaceConfig = `
awut_constants:
  K_s: 1
  C_kappa: 1
  C_L: 0.001
  g: 1
  lambda0: 0
  xi0: 1
rotation_curves:
  V0_global: 150
datasets:
  sparc_dir: data/sparc
  hydrogen_csv: data/hydrogen.csv
  planck_lowell_csv: data/planck.csv
  lensing_csv: data/pairs.csv
`

// workspace writes a config plus the hydrogen and lensing datasets. The
// rotation and CMB datasets are left absent.
func workspace(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"awut.yaml":         workspaceConfig,
		"data/hydrogen.csv": "series,n,lambda_nm\nBalmer,3,656.28\n",
		"data/pairs.csv":    "name,v_flat_kms,alpha_arcsec\na,1,1\nb,2,3\nc,3,2\nd,4,4\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	cfg, err := config.Load(filepath.Join(dir, "awut.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func statuses(outcomes []Outcome) map[string]string {
	m := make(map[string]string, len(outcomes))
	for _, o := range outcomes {
		m[o.Check] = o.Status
	}
	return m
}

func TestRun_WritesReportsAndScorecard(t *testing.T) {
	cfg := workspace(t)

	res, err := New(cfg, nil, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected a run id without a store")
	}

	want := map[string]string{
		CheckLeptons:  "OK",
		CheckRotation: StatusSkipped,
		CheckHydrogen: "OK",
		CheckCMB:      StatusSkipped,
		CheckLensing:  "OK",
		CheckBH:       "OK",
	}
	got := statuses(res.Outcomes)
	for name, status := range want {
		if got[name] != status {
			t.Errorf("%s: expected %s, got %s", name, status, got[name])
		}
	}
	for i, name := range Names() {
		if res.Outcomes[i].Check != name {
			t.Fatalf("outcome %d: expected %s, got %s", i, name, res.Outcomes[i].Check)
		}
	}

	for _, path := range []string{cfg.Outputs.LeptonsJSON, cfg.Outputs.HydrogenJSON, cfg.Outputs.LensingJSON, cfg.Outputs.BHJSON, cfg.Outputs.ScorecardCSV} {
		if !report.Exists(path) {
			t.Errorf("expected %s to be written", path)
		}
	}
	if report.Exists(cfg.Outputs.CMBJSON) {
		t.Error("skipped check must not write a report")
	}

	if len(res.Scorecard.Rows) != 7 {
		t.Fatalf("expected 7 scorecard rows, got %d", len(res.Scorecard.Rows))
	}
	if res.Scorecard.Passed {
		t.Fatal("ratios far from the measured targets must fail the scorecard")
	}
	if n := res.Scorecard.Count(scorecard.Skip); n != 2 {
		t.Fatalf("expected 2 SKIP rows, got %d", n)
	}
	if len(res.Errored()) != 0 {
		t.Fatalf("unexpected errored checks: %v", res.Errored())
	}
}

func TestRun_RecordsInStore(t *testing.T) {
	cfg := workspace(t)
	st, err := store.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	res, err := New(cfg, st, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run, err := st.GetRun(res.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !run.Finished() || run.Passed == nil || *run.Passed != res.Scorecard.Passed {
		t.Fatalf("unexpected run record: %+v", run)
	}
	if run.ConfigPath != cfg.Path {
		t.Fatalf("expected config path %s, got %s", cfg.Path, run.ConfigPath)
	}

	checks, err := st.ListChecks(res.RunID)
	if err != nil {
		t.Fatalf("ListChecks: %v", err)
	}
	if len(checks) != len(Names()) {
		t.Fatalf("expected %d check rows, got %d", len(Names()), len(checks))
	}
	for i, c := range checks {
		if c.Name != Names()[i] {
			t.Fatalf("check %d: expected %s, got %s", i, Names()[i], c.Name)
		}
		switch c.Status {
		case StatusSkipped:
			if c.ReportJSON != "" || c.Reason == "" {
				t.Fatalf("skipped check %s should carry a reason only: %+v", c.Name, c)
			}
		default:
			if c.ReportJSON == "" {
				t.Fatalf("check %s has no report json", c.Name)
			}
		}
	}
}

func TestRun_BadDatasetIsErrored(t *testing.T) {
	cfg := workspace(t)
	if err := os.WriteFile(cfg.Datasets.HydrogenCSV, []byte("series,n,lambda_nm\nLyman,two,121.5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := New(cfg, nil, quietLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	errored := res.Errored()
	if len(errored) != 1 || errored[0] != CheckHydrogen {
		t.Fatalf("expected hydrogen to error, got %v", errored)
	}
	if got := statuses(res.Outcomes)[CheckLensing]; got != "OK" {
		t.Fatalf("other checks must still run, lensing=%s", got)
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg := workspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, nil, quietLogger()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_CancelledClosesStoredRun(t *testing.T) {
	cfg := workspace(t)
	st, err := store.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(cfg, st, quietLogger()).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	run, err := st.LastRun()
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if !run.Finished() {
		t.Fatal("cancelled run must be closed")
	}
	if run.Passed != nil {
		t.Fatalf("cancelled run has no verdict, got %v", *run.Passed)
	}
	if !strings.Contains(run.Reason, "aborted") || !strings.Contains(run.Reason, "canceled") {
		t.Fatalf("unexpected reason %q", run.Reason)
	}
}

func TestRunCheck(t *testing.T) {
	cfg := workspace(t)
	r := New(cfg, nil, quietLogger())

	o, err := r.RunCheck(context.Background(), CheckBH)
	if err != nil {
		t.Fatalf("RunCheck: %v", err)
	}
	if o.Status != "OK" || o.Report == nil {
		t.Fatalf("unexpected outcome: %+v", o)
	}
	if !report.Exists(cfg.Outputs.BHJSON) {
		t.Fatal("expected bh report to be written")
	}
	if report.Exists(cfg.Outputs.ScorecardCSV) {
		t.Fatal("a single check must not write the scorecard")
	}

	if _, err := r.RunCheck(context.Background(), "tachyons"); !errors.Is(err, ErrUnknownCheck) {
		t.Fatalf("expected ErrUnknownCheck, got %v", err)
	}
}

func TestRunCheck_MissingV0DoesNotNeedData(t *testing.T) {
	cfg := workspace(t)
	cfg.V0Global = nil

	o, err := New(cfg, nil, quietLogger()).RunCheck(context.Background(), CheckRotation)
	if err != nil {
		t.Fatalf("RunCheck: %v", err)
	}
	if o.Status != "MISSING_V0_GLOBAL" {
		t.Fatalf("expected MISSING_V0_GLOBAL, got %s", o.Status)
	}
}
