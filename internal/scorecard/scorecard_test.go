package scorecard

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/awut-validate/internal/bhentropy"
	"github.com/danielpatrickdp/awut-validate/internal/cmb"
	"github.com/danielpatrickdp/awut-validate/internal/hydrogen"
	"github.com/danielpatrickdp/awut-validate/internal/lensing"
	"github.com/danielpatrickdp/awut-validate/internal/leptons"
	"github.com/danielpatrickdp/awut-validate/internal/report"
	"github.com/danielpatrickdp/awut-validate/internal/rotation"
)

func ptr(v float64) *float64 { return &v }

func passingInputs() Inputs {
	bh := bhentropy.Run()
	return Inputs{
		Leptons: &leptons.Result{
			Status: leptons.StatusOK,
			Ratios: map[string]float64{"mu_over_e": 206.77, "tau_over_e": 3477.0},
		},
		Rotation: &rotation.Report{Status: rotation.StatusOK, Summary: &rotation.Summary{MeanR2: ptr(0.95)}},
		Hydrogen: &hydrogen.Report{Status: hydrogen.StatusOK, Summary: &hydrogen.Summary{MaxRelError: 1e-4}},
		CMB:      &cmb.Report{Status: cmb.StatusOK, DeltaChi2: -7.5},
		Lensing:  &lensing.Report{Status: lensing.StatusOK, PearsonR: ptr(0.8), N: 10},
		BH:       &bh,
	}
}

func rowByTest(t *testing.T, sc Scorecard, test string) Row {
	t.Helper()
	for _, r := range sc.Rows {
		if r.Test == test {
			return r
		}
	}
	t.Fatalf("row %q not found", test)
	return Row{}
}

func TestScorecardAllPass(t *testing.T) {
	h := NewHarness(DefaultThresholds(), nil)

	sc := h.Run(passingInputs())

	if !sc.Passed {
		t.Fatalf("expected pass, got: %s", sc.Reason)
	}
	if len(sc.Rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(sc.Rows))
	}
	if n := sc.Count(Pass); n != 5 {
		t.Fatalf("expected 5 PASS rows, got %d", n)
	}
	// Hydrogen and lensing have no threshold by default.
	if n := sc.Count(Info); n != 2 {
		t.Fatalf("expected 2 INFO rows, got %d", n)
	}
}

func TestScorecardSkipsAbsentReports(t *testing.T) {
	h := NewHarness(DefaultThresholds(), nil)

	sc := h.Run(Inputs{})

	if !sc.Passed {
		t.Fatalf("skips must not fail the scorecard: %s", sc.Reason)
	}
	if n := sc.Count(Skip); n != len(sc.Rows) {
		t.Fatalf("expected all %d rows SKIP, got %d", len(sc.Rows), n)
	}
}

func TestScorecardLeptonFailure(t *testing.T) {
	h := NewHarness(DefaultThresholds(), nil)
	in := passingInputs()
	in.Leptons = &leptons.Result{Status: leptons.StatusFailStationary}

	sc := h.Run(in)

	if sc.Passed {
		t.Fatal("expected fail when the ratio computer failed")
	}
	mu := rowByTest(t, sc, "μ/e mass ratio")
	if mu.Result != Fail || mu.AWUT != none {
		t.Fatalf("unexpected μ/e row: %+v", mu)
	}
	if !strings.Contains(sc.Reason, "2 checks") {
		t.Fatalf("expected both ratio rows in reason, got %q", sc.Reason)
	}
}

func TestScorecardLeptonRelativeError(t *testing.T) {
	th := DefaultThresholds()
	th.LeptonRatioRelErrStrict = 0.01
	h := NewHarness(th, leptons.Targets{"mu_over_e": 200, "tau_over_e": 3000})

	in := passingInputs()
	in.Leptons.Ratios = map[string]float64{"mu_over_e": 201, "tau_over_e": 3100}

	sc := h.Run(in)

	mu := rowByTest(t, sc, "μ/e mass ratio")
	if mu.Result != Pass || mu.Error != "5.000e-03" {
		t.Fatalf("unexpected μ/e row: %+v", mu)
	}
	tau := rowByTest(t, sc, "τ/e mass ratio")
	if tau.Result != Fail || tau.AWUT != "3100.00" {
		t.Fatalf("unexpected τ/e row: %+v", tau)
	}
}

func TestScorecardThresholdEdges(t *testing.T) {
	h := NewHarness(DefaultThresholds(), nil)
	in := passingInputs()
	in.Rotation.Summary.MeanR2 = ptr(0.90)
	in.CMB.DeltaChi2 = -6.0

	sc := h.Run(in)

	if r := rowByTest(t, sc, "SPARC mean R²"); r.Result != Pass {
		t.Fatalf("mean R² at threshold should pass: %+v", r)
	}
	if r := rowByTest(t, sc, "CMB low-ℓ Δχ²"); r.Result != Pass {
		t.Fatalf("Δχ² at threshold should pass: %+v", r)
	}
}

func TestScorecardRotationWithoutV0Fails(t *testing.T) {
	h := NewHarness(DefaultThresholds(), nil)
	in := passingInputs()
	in.Rotation = &rotation.Report{Status: rotation.StatusMissingV0}

	sc := h.Run(in)

	if r := rowByTest(t, sc, "SPARC mean R²"); r.Result != Fail {
		t.Fatalf("expected FAIL, got %+v", r)
	}
}

func TestScorecardOptionalThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.HydrogenMaxRelError = ptr(1e-5)
	th.LensingRMin = ptr(0.5)
	h := NewHarness(th, nil)

	in := passingInputs()
	in.Lensing.PearsonR = nil

	sc := h.Run(in)

	if r := rowByTest(t, sc, "Hydrogen max rel. error"); r.Result != Fail {
		t.Fatalf("1e-4 > 1e-5 should fail: %+v", r)
	}
	if r := rowByTest(t, sc, "Lensing Pearson r"); r.Result != Fail {
		t.Fatalf("undefined correlation should fail once graded: %+v", r)
	}
}

func TestScorecardBHOutsideTolerance(t *testing.T) {
	th := DefaultThresholds()
	th.BHCoefficientTarget = 0.3
	h := NewHarness(th, nil)

	sc := h.Run(passingInputs())

	r := rowByTest(t, sc, "BH entropy coeff c")
	if r.Result != Fail || r.Error != "0.0500" {
		t.Fatalf("unexpected BH row: %+v", r)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "scorecard.csv")
	sc := NewHarness(DefaultThresholds(), nil).Run(passingInputs())

	if err := WriteCSV(path, sc); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if strings.Join(records[0], ",") != "Domain,Test,AWUT,Target,Error,Result" {
		t.Fatalf("unexpected header %v", records[0])
	}
	if len(records) != len(sc.Rows)+1 {
		t.Fatalf("expected %d records, got %d", len(sc.Rows)+1, len(records))
	}
	if records[1][5] != "PASS" {
		t.Fatalf("expected PASS in first row, got %v", records[1])
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	files := Files{
		Leptons:  filepath.Join(dir, "leptons.json"),
		CMB:      filepath.Join(dir, "cmb.json"),
		Rotation: filepath.Join(dir, "absent.json"),
	}
	if err := report.Write(files.Leptons, leptons.Result{Status: leptons.StatusNoStationary}); err != nil {
		t.Fatal(err)
	}
	if err := report.Write(files.CMB, cmb.Report{Status: cmb.StatusOK, DeltaChi2: -8}); err != nil {
		t.Fatal(err)
	}

	in, err := Load(files)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if in.Leptons == nil || !in.Leptons.Status.Failed() {
		t.Fatalf("expected legacy failure status, got %+v", in.Leptons)
	}
	if in.CMB == nil || in.CMB.DeltaChi2 != -8 {
		t.Fatalf("unexpected cmb %+v", in.CMB)
	}
	if in.Rotation != nil || in.BH != nil {
		t.Fatal("absent reports must stay nil")
	}
}

func TestLoadCorruptReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bh.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(Files{BH: path}); err == nil {
		t.Fatal("expected parse error")
	}
}
