// Package scorecard turns check reports into a PASS/FAIL table.
package scorecard

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/awut-validate/internal/bhentropy"
	"github.com/danielpatrickdp/awut-validate/internal/cmb"
	"github.com/danielpatrickdp/awut-validate/internal/hydrogen"
	"github.com/danielpatrickdp/awut-validate/internal/lensing"
	"github.com/danielpatrickdp/awut-validate/internal/leptons"
	"github.com/danielpatrickdp/awut-validate/internal/rotation"
)

const none = "—"

// #region harness
// Harness scores reports against fixed thresholds and reference targets.
type Harness struct {
	thresholds Thresholds
	targets    leptons.Targets
}

// NewHarness creates a harness. Nil targets fall back to leptons.DefaultTargets.
func NewHarness(thresholds Thresholds, targets leptons.Targets) *Harness {
	if targets == nil {
		targets = leptons.DefaultTargets()
	}
	return &Harness{thresholds: thresholds, targets: targets}
}

// Run builds every row. Rows are always emitted in the same order.
func (h *Harness) Run(in Inputs) Scorecard {
	var rows []Row
	rows = append(rows, h.leptonRows(in.Leptons)...)
	rows = append(rows,
		h.rotationRow(in.Rotation),
		h.cmbRow(in.CMB),
		h.bhRow(in.BH),
		h.hydrogenRow(in.Hydrogen),
		h.lensingRow(in.Lensing),
	)

	var failures []string
	for _, r := range rows {
		if r.Result == Fail {
			failures = append(failures, r.Test)
		}
	}

	reason := "all checks passed"
	switch {
	case len(failures) == 1:
		reason = fmt.Sprintf("scorecard failed: %s", failures[0])
	case len(failures) > 1:
		reason = fmt.Sprintf("scorecard failed: %d checks: %s", len(failures), failures[0])
	}

	return Scorecard{Passed: len(failures) == 0, Rows: rows, Reason: reason}
}

// #endregion harness

// #region rows
func (h *Harness) leptonRows(res *leptons.Result) []Row {
	tests := []struct {
		key, name, format string
	}{
		{"mu_over_e", "μ/e mass ratio", "%.6f"},
		{"tau_over_e", "τ/e mass ratio", "%.2f"},
	}

	rows := make([]Row, 0, len(tests))
	for _, tc := range tests {
		ref, hasRef := h.targets[tc.key]
		row := Row{Domain: "Particle", Test: tc.name, AWUT: none, Target: none, Error: none}
		if hasRef {
			row.Target = fmt.Sprintf("%.7g", ref)
		}

		v, ok := 0.0, false
		if res != nil && res.Status == leptons.StatusOK {
			v, ok = res.Ratios[tc.key]
		}
		switch {
		case res == nil:
			row.Result = Skip
		case !ok || !hasRef || ref == 0:
			if ok {
				row.AWUT = fmt.Sprintf(tc.format, v)
			}
			row.Result = Fail
		default:
			rel := math.Abs(v-ref) / math.Abs(ref)
			row.AWUT = fmt.Sprintf(tc.format, v)
			row.Error = fmt.Sprintf("%.3e", rel)
			row.Result = verdict(rel <= h.thresholds.LeptonRatioRelErrStrict)
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *Harness) rotationRow(rep *rotation.Report) Row {
	row := Row{
		Domain: "Cosmology",
		Test:   "SPARC mean R²",
		AWUT:   none,
		Target: fmt.Sprintf("≥%.2f", h.thresholds.SparcR2MeanPass),
		Error:  none,
	}
	switch {
	case rep == nil:
		row.Result = Skip
	case rep.Summary == nil || rep.Summary.MeanR2 == nil:
		row.Result = Fail
	default:
		mean := *rep.Summary.MeanR2
		row.AWUT = fmt.Sprintf("%.3f", mean)
		row.Result = verdict(mean >= h.thresholds.SparcR2MeanPass)
	}
	return row
}

func (h *Harness) cmbRow(rep *cmb.Report) Row {
	row := Row{
		Domain: "Cosmology",
		Test:   "CMB low-ℓ Δχ²",
		AWUT:   none,
		Target: fmt.Sprintf("≤ %.1f", h.thresholds.CMBDeltaChi2Pass),
		Error:  none,
	}
	if rep == nil {
		row.Result = Skip
		return row
	}
	d := rep.DeltaChi2
	row.AWUT = fmt.Sprintf("%.2f", d)
	row.Result = verdict(d <= h.thresholds.CMBDeltaChi2Pass)
	return row
}

func (h *Harness) bhRow(rep *bhentropy.Report) Row {
	t := h.thresholds
	row := Row{
		Domain: "GR",
		Test:   "BH entropy coeff c",
		AWUT:   none,
		Target: fmt.Sprintf("%.2f±%.2f", t.BHCoefficientTarget, t.BHCoefficientTol),
		Error:  none,
	}
	if rep == nil {
		row.Result = Skip
		return row
	}
	c := rep.Coefficient
	row.AWUT = fmt.Sprintf("%.4f", c)
	row.Error = fmt.Sprintf("%.4f", math.Abs(c-t.BHCoefficientTarget))
	row.Result = verdict(rep.Within(t.BHCoefficientTarget, t.BHCoefficientTol))
	return row
}

func (h *Harness) hydrogenRow(rep *hydrogen.Report) Row {
	row := Row{Domain: "Atomic", Test: "Hydrogen max rel. error", AWUT: none, Target: none, Error: none}
	limit := h.thresholds.HydrogenMaxRelError
	if limit != nil {
		row.Target = fmt.Sprintf("≤%.1e", *limit)
	}
	switch {
	case rep == nil:
		row.Result = Skip
	case rep.Summary == nil:
		row.Result = optional(limit != nil, false)
	default:
		m := rep.Summary.MaxRelError
		row.AWUT = fmt.Sprintf("%.3e", m)
		row.Result = optional(limit != nil, limit != nil && m <= *limit)
	}
	return row
}

func (h *Harness) lensingRow(rep *lensing.Report) Row {
	row := Row{Domain: "Lensing", Test: "Lensing Pearson r", AWUT: none, Target: none, Error: none}
	limit := h.thresholds.LensingRMin
	if limit != nil {
		row.Target = fmt.Sprintf("≥%.2f", *limit)
	}
	switch {
	case rep == nil:
		row.Result = Skip
	case rep.PearsonR == nil:
		row.Result = optional(limit != nil, false)
	default:
		r := *rep.PearsonR
		row.AWUT = fmt.Sprintf("%.3f", r)
		row.Result = optional(limit != nil, limit != nil && r >= *limit)
	}
	return row
}

// #endregion rows

// #region helpers
func verdict(ok bool) Result {
	if ok {
		return Pass
	}
	return Fail
}

// optional grades a row only when its threshold is configured.
func optional(configured, ok bool) Result {
	if !configured {
		return Info
	}
	return verdict(ok)
}

// #endregion helpers
