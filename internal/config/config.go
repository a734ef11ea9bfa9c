// Package config loads the validation config file with viper. Every value a
// check needs is resolved here and passed down explicitly.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/danielpatrickdp/awut-validate/internal/cmb"
	"github.com/danielpatrickdp/awut-validate/internal/energy"
	"github.com/danielpatrickdp/awut-validate/internal/hydrogen"
	"github.com/danielpatrickdp/awut-validate/internal/leptons"
	"github.com/danielpatrickdp/awut-validate/internal/scorecard"
)

// EnvPrefix prefixes environment overrides, e.g. AWUT_CMB_LC_LOWELL.
const EnvPrefix = "AWUT"

// ErrInvalid marks a present value that cannot be used.
var ErrInvalid = errors.New("config: invalid value")

// #region types
// Datasets names the input data locations.
type Datasets struct {
	SparcDir        string
	HydrogenCSV     string
	PlanckLowellCSV string
	LensingCSV      string
}

// Outputs names where each report is written.
type Outputs struct {
	LeptonsJSON  string
	SparcJSON    string
	HydrogenJSON string
	CMBJSON      string
	LensingJSON  string
	BHJSON       string
	ScorecardCSV string
}

// Config is the resolved configuration. Relative paths are resolved against
// the config file's directory. An empty StorePath disables run persistence.
type Config struct {
	Path       string
	Constants  leptons.Constants
	Targets    leptons.Targets
	Solver     energy.SolverOptions
	V0Global   *float64
	Rydberg    float64
	Lc         float64
	Datasets   Datasets
	Outputs    Outputs
	Thresholds scorecard.Thresholds
	StorePath  string
}

// #endregion types

// #region defaults
func setDefaults(v *viper.Viper) {
	for k, val := range leptons.DefaultTargets() {
		v.SetDefault("lepton_targets."+k, val)
	}

	so := energy.DefaultSolverOptions()
	v.SetDefault("solver.r_min", so.RMin)
	v.SetDefault("solver.r_max", so.RMax)
	v.SetDefault("solver.tol", so.Tol)
	v.SetDefault("solver.max_iterations", so.MaxIterations)
	v.SetDefault("solver.max_expansions", so.MaxExpansions)
	v.SetDefault("solver.scan_points", so.ScanPoints)

	v.SetDefault("atomic.R_infinity_per_m", hydrogen.DefaultRydberg)
	v.SetDefault("cmb.Lc_lowell", cmb.DefaultLc)

	v.SetDefault("datasets.sparc_dir", "data/sparc")
	v.SetDefault("datasets.hydrogen_csv", "data/atomic/hydrogen_lines_ref.csv")
	v.SetDefault("datasets.planck_lowell_csv", "data/cmb/planck_lowell_tt.csv")
	v.SetDefault("datasets.lensing_csv", "data/lensing/pairs.csv")

	v.SetDefault("outputs.leptons_json", "results/leptons.json")
	v.SetDefault("outputs.sparc_json", "results/rotcurves_summary.json")
	v.SetDefault("outputs.hydrogen_json", "results/hydrogen_lines.json")
	v.SetDefault("outputs.cmb_json", "results/cmb_lowell.json")
	v.SetDefault("outputs.lensing_json", "results/lensing.json")
	v.SetDefault("outputs.bh_json", "results/bh_entropy.json")
	v.SetDefault("outputs.scorecard_csv", "results/scorecard.csv")

	th := scorecard.DefaultThresholds()
	v.SetDefault("thresholds.lepton_ratio_relerr_strict", th.LeptonRatioRelErrStrict)
	v.SetDefault("thresholds.sparc_r2_mean_pass", th.SparcR2MeanPass)
	v.SetDefault("thresholds.cmb_dchi2_pass", th.CMBDeltaChi2Pass)
	v.SetDefault("thresholds.bh_c_target", th.BHCoefficientTarget)
	v.SetDefault("thresholds.bh_c_tol", th.BHCoefficientTol)
}

// #endregion defaults

// #region loader
// New returns a viper instance with defaults and AWUT_ env overrides bound.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path. An empty path yields defaults plus env.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return FromViper(v, path)
}

// FromViper resolves a Config from v. path locates relative file names.
func FromViper(v *viper.Viper, path string) (*Config, error) {
	base := "."
	if path != "" {
		base = filepath.Dir(path)
	}
	resolve := func(key string) string {
		p := v.GetString(key)
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	c := &Config{Path: path}
	var err error

	if c.Constants, err = constants(v); err != nil {
		return nil, err
	}
	if c.Targets, err = targets(v); err != nil {
		return nil, err
	}
	if c.Solver, err = solver(v); err != nil {
		return nil, err
	}
	if c.V0Global, err = optionalFloat(v, "rotation_curves.V0_global"); err != nil {
		return nil, err
	}
	if c.Rydberg, err = float(v, "atomic.R_infinity_per_m"); err != nil {
		return nil, err
	}
	if c.Lc, err = float(v, "cmb.Lc_lowell"); err != nil {
		return nil, err
	}
	if c.Thresholds, err = thresholds(v); err != nil {
		return nil, err
	}

	c.Datasets = Datasets{
		SparcDir:        resolve("datasets.sparc_dir"),
		HydrogenCSV:     resolve("datasets.hydrogen_csv"),
		PlanckLowellCSV: resolve("datasets.planck_lowell_csv"),
		LensingCSV:      resolve("datasets.lensing_csv"),
	}
	c.Outputs = Outputs{
		LeptonsJSON:  resolve("outputs.leptons_json"),
		SparcJSON:    resolve("outputs.sparc_json"),
		HydrogenJSON: resolve("outputs.hydrogen_json"),
		CMBJSON:      resolve("outputs.cmb_json"),
		LensingJSON:  resolve("outputs.lensing_json"),
		BHJSON:       resolve("outputs.bh_json"),
		ScorecardCSV: resolve("outputs.scorecard_csv"),
	}
	c.StorePath = resolve("store.path")
	return c, nil
}

// #endregion loader

// #region sections
// constants keeps absent and null keys out of the map so they count as missing.
func constants(v *viper.Viper) (leptons.Constants, error) {
	c := leptons.Constants{}
	for _, k := range leptons.ConstantKeys {
		f, err := optionalFloat(v, "awut_constants."+k)
		if err != nil {
			return nil, err
		}
		if f != nil {
			c[k] = *f
		}
	}
	return c, nil
}

// targets merges file keys over the defaults; a null target is dropped.
func targets(v *viper.Viper) (leptons.Targets, error) {
	const prefix = "lepton_targets."
	t := leptons.Targets{}
	for _, key := range v.AllKeys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		f, err := optionalFloat(v, key)
		if err != nil {
			return nil, err
		}
		if f != nil {
			t[strings.TrimPrefix(key, prefix)] = *f
		}
	}
	return t, nil
}

func solver(v *viper.Viper) (energy.SolverOptions, error) {
	var so energy.SolverOptions
	var err error
	if so.RMin, err = float(v, "solver.r_min"); err != nil {
		return so, err
	}
	if so.RMax, err = float(v, "solver.r_max"); err != nil {
		return so, err
	}
	if so.Tol, err = float(v, "solver.tol"); err != nil {
		return so, err
	}
	if so.MaxIterations, err = integer(v, "solver.max_iterations"); err != nil {
		return so, err
	}
	if so.MaxExpansions, err = integer(v, "solver.max_expansions"); err != nil {
		return so, err
	}
	if so.ScanPoints, err = integer(v, "solver.scan_points"); err != nil {
		return so, err
	}
	return so, nil
}

func thresholds(v *viper.Viper) (scorecard.Thresholds, error) {
	var t scorecard.Thresholds
	var err error
	if t.LeptonRatioRelErrStrict, err = float(v, "thresholds.lepton_ratio_relerr_strict"); err != nil {
		return t, err
	}
	if t.SparcR2MeanPass, err = float(v, "thresholds.sparc_r2_mean_pass"); err != nil {
		return t, err
	}
	if t.CMBDeltaChi2Pass, err = float(v, "thresholds.cmb_dchi2_pass"); err != nil {
		return t, err
	}
	if t.BHCoefficientTarget, err = float(v, "thresholds.bh_c_target"); err != nil {
		return t, err
	}
	if t.BHCoefficientTol, err = float(v, "thresholds.bh_c_tol"); err != nil {
		return t, err
	}
	if t.HydrogenMaxRelError, err = optionalFloat(v, "thresholds.hydrogen_max_rel_error"); err != nil {
		return t, err
	}
	if t.LensingRMin, err = optionalFloat(v, "thresholds.lensing_r_min"); err != nil {
		return t, err
	}
	return t, nil
}

// #endregion sections

// #region coercion
func float(v *viper.Viper, key string) (float64, error) {
	f, err := cast.ToFloat64E(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return f, nil
}

func integer(v *viper.Viper, key string) (int, error) {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return n, nil
}

// optionalFloat returns nil for an absent or null key.
func optionalFloat(v *viper.Viper, key string) (*float64, error) {
	if !v.IsSet(key) || v.Get(key) == nil {
		return nil, nil
	}
	f, err := float(v, key)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// #endregion coercion
