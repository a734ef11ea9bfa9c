package scorecard

import (
	"github.com/danielpatrickdp/awut-validate/internal/bhentropy"
	"github.com/danielpatrickdp/awut-validate/internal/cmb"
	"github.com/danielpatrickdp/awut-validate/internal/hydrogen"
	"github.com/danielpatrickdp/awut-validate/internal/lensing"
	"github.com/danielpatrickdp/awut-validate/internal/leptons"
	"github.com/danielpatrickdp/awut-validate/internal/rotation"
)

// #region result-values
// Result is the verdict of one scorecard row.
type Result string

const (
	Pass Result = "PASS"
	Fail Result = "FAIL"
	Skip Result = "SKIP" // report absent
	Info Result = "INFO" // no threshold configured
)

// #endregion result-values

// #region thresholds
// Thresholds holds the pass criteria. A nil optional threshold turns its row
// into an informational one.
type Thresholds struct {
	LeptonRatioRelErrStrict float64  `json:"lepton_ratio_relerr_strict"`
	SparcR2MeanPass         float64  `json:"sparc_r2_mean_pass"`
	CMBDeltaChi2Pass        float64  `json:"cmb_dchi2_pass"`
	BHCoefficientTarget     float64  `json:"bh_c_target"`
	BHCoefficientTol        float64  `json:"bh_c_tol"`
	HydrogenMaxRelError     *float64 `json:"hydrogen_max_rel_error,omitempty"`
	LensingRMin             *float64 `json:"lensing_r_min,omitempty"`
}

// DefaultThresholds returns the published validation targets.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LeptonRatioRelErrStrict: 1e-3,
		SparcR2MeanPass:         0.90,
		CMBDeltaChi2Pass:        -6.0,
		BHCoefficientTarget:     0.25,
		BHCoefficientTol:        0.02,
	}
}

// #endregion thresholds

// #region inputs
// Inputs are the parsed check reports. A nil report produces SKIP rows.
type Inputs struct {
	Leptons  *leptons.Result
	Rotation *rotation.Report
	Hydrogen *hydrogen.Report
	CMB      *cmb.Report
	Lensing  *lensing.Report
	BH       *bhentropy.Report
}

// #endregion inputs

// #region row
// Row is one line of the scorecard.
type Row struct {
	Domain string `json:"domain"`
	Test   string `json:"test"`
	AWUT   string `json:"awut"`
	Target string `json:"target"`
	Error  string `json:"error"`
	Result Result `json:"result"`
}

// #endregion row

// #region scorecard
// Scorecard is the aggregated outcome. Passed is false when any row failed.
type Scorecard struct {
	Passed bool   `json:"passed"`
	Rows   []Row  `json:"rows"`
	Reason string `json:"reason"`
}

// Count returns how many rows carry result r.
func (s Scorecard) Count(r Result) int {
	n := 0
	for _, row := range s.Rows {
		if row.Result == r {
			n++
		}
	}
	return n
}

// #endregion scorecard
