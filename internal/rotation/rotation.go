// Package rotation fits galaxy rotation curves with the baryonic speed plus a
// single global AWUT halo term and scores each galaxy with R² and RMSE.
package rotation

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// #region types
// Status values written to the report.
const (
	StatusOK             = "OK"
	StatusMissingV0      = "MISSING_V0_GLOBAL"
	StatusNoData         = "NO_DATA"
	rotmodGlob           = "*_rotmod.*"
	characteristicFactor = 0.3
)

// ErrNoFiles is returned by Files when the directory holds no rotmod tables.
var ErrNoFiles = errors.New("rotation: no *_rotmod.* files found")

// Table is one galaxy's rotmod data. Missing component speeds are zero;
// missing observed speeds and errors are NaN.
type Table struct {
	R      []float64
	Vobs   []float64
	Verr   []float64
	Vgas   []float64
	Vdisk  []float64
	Vbulge []float64
}

// Len returns the number of radial points.
func (t Table) Len() int { return len(t.R) }

// Galaxy is one entry of the report. Failed galaxies carry only Name and Error.
type Galaxy struct {
	Name    string   `json:"name"`
	NPoints int      `json:"n_points,omitempty"`
	R2      *float64 `json:"R2,omitempty"`
	RMSE    *float64 `json:"RMSE_kms,omitempty"`
	Note    string   `json:"note,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Summary aggregates galaxies with a finite R².
type Summary struct {
	MeanR2    *float64 `json:"mean_R2"`
	NGalaxies int      `json:"n_galaxies"`
	NScored   int      `json:"n_scored"`
	NFailed   int      `json:"n_failed"`
}

// Report is the rotation-curve check output.
type Report struct {
	Status   string   `json:"status"`
	V0Global *float64 `json:"V0_global,omitempty"`
	Galaxies []Galaxy `json:"galaxies"`
	Summary  *Summary `json:"summary,omitempty"`
}

// #endregion types

// #region run
// Run scores every rotmod file in dir. A nil v0 yields StatusMissingV0 without
// reading any data; a per-galaxy failure is recorded on that galaxy only.
func Run(dir string, v0 *float64) (Report, error) {
	if v0 == nil {
		return Report{Status: StatusMissingV0, Galaxies: []Galaxy{}}, nil
	}

	files, err := Files(dir)
	if errors.Is(err, ErrNoFiles) {
		return Report{Status: StatusNoData, V0Global: v0, Galaxies: []Galaxy{}}, nil
	}
	if err != nil {
		return Report{}, err
	}

	rep := Report{Status: StatusOK, V0Global: v0, Galaxies: make([]Galaxy, 0, len(files))}
	for _, path := range files {
		rep.Galaxies = append(rep.Galaxies, scoreFile(path, *v0))
	}
	rep.Summary = summarize(rep.Galaxies)
	return rep, nil
}

// Files returns the sorted rotmod files in dir.
func Files(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("rotation data dir: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(dir, rotmodGlob))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	sort.Strings(files)
	return files, nil
}

// GalaxyName strips the directory and everything from "_rotmod" on.
func GalaxyName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "_rotmod"); i >= 0 {
		return base[:i]
	}
	return base
}

func scoreFile(path string, v0 float64) Galaxy {
	g := Galaxy{Name: GalaxyName(path)}
	tab, err := ReadFile(path)
	if err != nil {
		g.Error = err.Error()
		return g
	}
	g.NPoints = tab.Len()
	g.R2, g.RMSE = Score(tab.Vobs, Predict(tab, v0))
	switch {
	case g.R2 == nil:
		g.Note = "fewer than two observed points"
	case math.IsInf(*g.R2, 0):
		// JSON has no infinities; the galaxy is reported unscored.
		g.R2 = nil
		g.Note = "observed speeds have zero variance"
	}
	return g
}

func summarize(galaxies []Galaxy) *Summary {
	s := &Summary{NGalaxies: len(galaxies)}
	var sum float64
	for _, g := range galaxies {
		if g.Error != "" {
			s.NFailed++
			continue
		}
		if g.R2 == nil || math.IsNaN(*g.R2) {
			continue
		}
		sum += *g.R2
		s.NScored++
	}
	if s.NScored > 0 {
		mean := sum / float64(s.NScored)
		s.MeanR2 = &mean
	}
	return s
}

// #endregion run

// #region model
// Predict returns the model speed at every radius:
// sqrt(max(0, Vgas² + Vdisk² + Vbul² + V0²·(1 − exp(−R/Rchar)))), with
// Rchar = 0.3·max(R), or 1 when max(R) ≤ 0.
func Predict(t Table, v0 float64) []float64 {
	rchar := 1.0
	if n := t.Len(); n > 0 {
		rmax := t.R[0]
		for _, r := range t.R[1:] {
			rmax = math.Max(rmax, r)
		}
		if rmax > 0 {
			rchar = characteristicFactor * rmax
		}
	}

	out := make([]float64, t.Len())
	for i, r := range t.R {
		baryon := t.Vgas[i]*t.Vgas[i] + t.Vdisk[i]*t.Vdisk[i] + t.Vbulge[i]*t.Vbulge[i]
		halo := v0 * v0 * (1 - math.Exp(-r/rchar))
		out[i] = math.Sqrt(math.Max(0, baryon+halo))
	}
	return out
}

// Score returns R² and RMSE of pred against obs over points with a non-NaN
// observation. Both are nil with fewer than two usable points; R² is −Inf when
// the observations have zero variance.
func Score(obs, pred []float64) (r2, rmse *float64) {
	var xs, ys []float64
	for i := range obs {
		if i >= len(pred) || math.IsNaN(obs[i]) || math.IsNaN(pred[i]) {
			continue
		}
		xs = append(xs, obs[i])
		ys = append(ys, pred[i])
	}
	if len(xs) < 2 {
		return nil, nil
	}

	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var ssTot, ssRes float64
	for i, x := range xs {
		ssTot += (x - mean) * (x - mean)
		ssRes += (x - ys[i]) * (x - ys[i])
	}

	rr := math.Inf(-1)
	if ssTot > 0 {
		rr = 1 - ssRes/ssTot
	}
	e := math.Sqrt(ssRes / float64(len(xs)))
	return &rr, &e
}

// #endregion model
