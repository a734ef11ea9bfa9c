package leptons

import "sort"

// #region status
// Status is the overall outcome of a ratio computation.
type Status string

const (
	StatusOK               Status = "OK"
	StatusMissingConstants Status = "MISSING_CONSTANTS"
	StatusFailStationary   Status = "FAIL_STATIONARY"
	// StatusNoStationary is accepted from older reports; Compute never emits it.
	StatusNoStationary Status = "NO_STATIONARY"
)

// Failed reports whether at least one mode's solve failed.
func (s Status) Failed() bool {
	return s == StatusFailStationary || s == StatusNoStationary
}

// #endregion status

// #region constants
// Constant keys, in the order missing keys are reported.
const (
	KeyKs      = "K_s"
	KeyCk      = "C_kappa"
	KeyCL      = "C_L"
	KeyG       = "g"
	KeyLambda0 = "lambda0"
	KeyXi0     = "xi0"
)

// ConstantKeys lists every required constant.
var ConstantKeys = []string{KeyKs, KeyCk, KeyCL, KeyG, KeyLambda0, KeyXi0}

// Constants maps constant keys to values. An absent key is missing; a present
// zero is a real zero.
type Constants map[string]float64

// Missing returns the absent keys in ConstantKeys order.
func (c Constants) Missing() []string {
	var missing []string
	for _, k := range ConstantKeys {
		if _, ok := c[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// #endregion constants

// #region modes
// Mode pairs a label with the integer multiplier applied to xi0.
type Mode struct {
	Name       string
	Multiplier int
}

// Modes are fixed; "e" is the base every ratio divides by.
var Modes = []Mode{
	{Name: "e", Multiplier: 1},
	{Name: "mu", Multiplier: 2},
	{Name: "tau", Multiplier: 3},
}

// BaseMode is the ratio denominator.
const BaseMode = "e"

// RatioKey names the ratio of mode to the base mode, e.g. "mu_over_e".
func RatioKey(mode string) string {
	return mode + "_over_" + BaseMode
}

// #endregion modes

// #region targets
// Targets maps ratio keys to reference values used for reporting only.
type Targets map[string]float64

// DefaultTargets returns the measured muon and tau to electron mass ratios.
func DefaultTargets() Targets {
	return Targets{
		"mu_over_e":  206.7682830,
		"tau_over_e": 3477.15,
	}
}

// Keys returns the target keys sorted.
func (t Targets) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion targets

// #region result
// Comparison pairs a computed ratio with its reference value.
type Comparison struct {
	Value     float64  `json:"value"`
	Reference float64  `json:"reference"`
	AbsError  float64  `json:"abs_error"`
	RelError  *float64 `json:"rel_error"`
}

// ModeSolve records solver diagnostics for one mode.
type ModeSolve struct {
	Xi         float64 `json:"xi"`
	Iterations int     `json:"iterations"`
	Expansions int     `json:"expansions"`
	Converged  bool    `json:"converged"`
	Scanned    bool    `json:"scanned"`
	Error      string  `json:"error,omitempty"`
}

// Result is the ratio computer's report. Rstar and E hold nil for a mode whose
// stationary point was not found; Ratios is only set when Status is OK.
type Result struct {
	Status      Status                `json:"status"`
	Missing     []string              `json:"missing,omitempty"`
	Rstar       map[string]*float64   `json:"Rstar,omitempty"`
	E           map[string]*float64   `json:"E,omitempty"`
	Ratios      map[string]float64    `json:"ratios,omitempty"`
	Comparisons map[string]Comparison `json:"comparisons,omitempty"`
	Solver      map[string]ModeSolve  `json:"solver,omitempty"`
}

// #endregion result
