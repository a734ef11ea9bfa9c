// Package lensing correlates flat rotation speeds with Einstein radii.
package lensing

import (
	"io"
	"math"

	"github.com/danielpatrickdp/awut-validate/internal/dataset"
)

const StatusOK = "OK"

// Pair is one lens system.
type Pair struct {
	Name        string
	VFlatKMS    float64
	AlphaArcsec float64
}

// Report is the lensing check output. PearsonR is null when undefined.
type Report struct {
	Status   string   `json:"status"`
	PearsonR *float64 `json:"pearson_r"`
	N        int      `json:"n"`
}

// Pearson returns the population correlation of x and y, or false with fewer
// than two points or a zero variance.
func Pearson(x, y []float64) (float64, bool) {
	n := len(x)
	if n < 2 || len(y) != n {
		return 0, false
	}
	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxx, syy, sxy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}
	return sxy / math.Sqrt(sxx*syy), true
}

// Evaluate correlates v_flat with alpha across pairs.
func Evaluate(pairs []Pair) Report {
	v := make([]float64, len(pairs))
	a := make([]float64, len(pairs))
	for i, p := range pairs {
		v[i], a[i] = p.VFlatKMS, p.AlphaArcsec
	}
	rep := Report{Status: StatusOK, N: len(pairs)}
	if r, ok := Pearson(v, a); ok {
		rep.PearsonR = &r
	}
	return rep
}

// Run loads a name,v_flat_kms,alpha_arcsec CSV and evaluates it.
func Run(path string) (Report, error) {
	t, err := dataset.Open(path, columns...)
	if err != nil {
		return Report{}, err
	}
	ps, err := pairs(t)
	if err != nil {
		return Report{}, err
	}
	return Evaluate(ps), nil
}

// Parse reads lens pairs from r.
func Parse(r io.Reader) ([]Pair, error) {
	t, err := dataset.Read(r, "lensing pairs", columns...)
	if err != nil {
		return nil, err
	}
	return pairs(t)
}

var columns = []string{"name", "v_flat_kms", "alpha_arcsec"}

func pairs(t *dataset.Table) ([]Pair, error) {
	out := make([]Pair, 0, t.Len())
	for i := range t.Rows {
		v, err := t.Float(i, "v_flat_kms")
		if err != nil {
			return nil, err
		}
		a, err := t.Float(i, "alpha_arcsec")
		if err != nil {
			return nil, err
		}
		out = append(out, Pair{Name: t.String(i, "name"), VFlatKMS: v, AlphaArcsec: a})
	}
	return out, nil
}
