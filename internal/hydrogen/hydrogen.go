// Package hydrogen compares reference hydrogen emission lines with the
// Rydberg formula.
package hydrogen

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/danielpatrickdp/awut-validate/internal/dataset"
)

// DefaultRydberg is the Rydberg constant R∞ in m⁻¹.
const DefaultRydberg = 10973731.568160

const StatusOK = "OK"

// Line is one reference row.
type Line struct {
	Series   string
	N        int
	LambdaNM float64
}

// LineResult is a reference line with its predicted wavelength.
type LineResult struct {
	Series   string   `json:"series"`
	N        int      `json:"n"`
	RefNM    float64  `json:"lambda_nm_ref"`
	AWUTNM   *float64 `json:"lambda_nm_awut"`
	RelError *float64 `json:"rel_error"`
	Error    string   `json:"error,omitempty"`
}

// Summary aggregates lines with a finite relative error.
type Summary struct {
	MeanRelError float64 `json:"mean_rel_error"`
	MaxRelError  float64 `json:"max_rel_error"`
	NLines       int     `json:"n_lines"`
}

// Report is the hydrogen check output.
type Report struct {
	Status  string       `json:"status"`
	Rydberg float64      `json:"R_infinity_per_m"`
	Lines   []LineResult `json:"lines"`
	Summary *Summary     `json:"summary,omitempty"`
}

// ErrSeriesLimit marks an upper level at or below the series' lower level.
var ErrSeriesLimit = errors.New("hydrogen: upper level at or below series limit")

// LowerLevel returns the lower principal quantum number of a series:
// 1 for Lyman, 2 for Balmer, 3 otherwise.
func LowerLevel(series string) int {
	switch strings.ToLower(series) {
	case "lyman":
		return 1
	case "balmer":
		return 2
	default:
		return 3
	}
}

// Wavelength returns the predicted vacuum wavelength in nm for the n → lower
// transition of series.
func Wavelength(series string, n int, rydberg float64) (float64, error) {
	lo := float64(LowerLevel(series))
	nf := float64(n)
	inv := rydberg * (1/(lo*lo) - 1/(nf*nf))
	if inv <= 0 {
		return 0, fmt.Errorf("%w: %s n=%d", ErrSeriesLimit, series, n)
	}
	return 1e9 / inv, nil
}

// Run loads the reference CSV at path and scores every line.
func Run(path string, rydberg float64) (Report, error) {
	lines, err := ReadFile(path)
	if err != nil {
		return Report{}, err
	}
	return Compare(lines, rydberg), nil
}

// Compare predicts every line. Lines the formula cannot reach keep an error and
// are left out of the summary.
func Compare(lines []Line, rydberg float64) Report {
	rep := Report{Status: StatusOK, Rydberg: rydberg, Lines: make([]LineResult, 0, len(lines))}

	var sum, maxRel float64
	var n int
	for _, l := range lines {
		lr := LineResult{Series: l.Series, N: l.N, RefNM: l.LambdaNM}
		pred, err := Wavelength(l.Series, l.N, rydberg)
		if err != nil {
			lr.Error = err.Error()
			rep.Lines = append(rep.Lines, lr)
			continue
		}
		lr.AWUTNM = &pred
		rel := math.Abs(pred-l.LambdaNM) / l.LambdaNM
		if !math.IsNaN(rel) && !math.IsInf(rel, 0) {
			lr.RelError = &rel
			sum += rel
			maxRel = math.Max(maxRel, rel)
			n++
		}
		rep.Lines = append(rep.Lines, lr)
	}

	if n > 0 {
		rep.Summary = &Summary{MeanRelError: sum / float64(n), MaxRelError: maxRel, NLines: n}
	}
	return rep
}

// #region csv
// ReadFile reads a series,n,lambda_nm CSV.
func ReadFile(path string) ([]Line, error) {
	t, err := dataset.Open(path, "series", "n", "lambda_nm")
	if err != nil {
		return nil, err
	}
	return lines(t)
}

// Parse reads reference lines from r.
func Parse(r io.Reader) ([]Line, error) {
	t, err := dataset.Read(r, "hydrogen lines", "series", "n", "lambda_nm")
	if err != nil {
		return nil, err
	}
	return lines(t)
}

func lines(t *dataset.Table) ([]Line, error) {
	out := make([]Line, 0, t.Len())
	for i := range t.Rows {
		n, err := t.Int(i, "n")
		if err != nil {
			return nil, err
		}
		lam, err := t.Float(i, "lambda_nm")
		if err != nil {
			return nil, err
		}
		out = append(out, Line{Series: t.String(i, "series"), N: n, LambdaNM: lam})
	}
	return out, nil
}

// #endregion csv
