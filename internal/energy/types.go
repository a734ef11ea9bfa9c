package energy

import (
	"errors"
	"fmt"
)

// #region errors
var (
	// ErrNotFound indicates no sign change of the derivative could be bracketed.
	ErrNotFound = errors.New("energy: no stationary point bracketed")

	// ErrUnstable indicates the derivative was NaN at a bracket endpoint.
	// It wraps ErrNotFound so callers can treat both outcomes the same way.
	ErrUnstable = fmt.Errorf("%w: derivative is NaN at bracket endpoint", ErrNotFound)

	// ErrBadInterval indicates RMin/RMax do not describe a positive interval.
	ErrBadInterval = errors.New("energy: search interval must satisfy 0 < RMin < RMax")
)

// #endregion errors

// #region params
// Params holds the six scalar constants of one evaluation. Xi is the
// mode-specific scale (multiplier × xi0), not xi0 itself.
type Params struct {
	Ks      float64
	Ck      float64
	CL      float64
	G       float64
	Lambda0 float64
	Xi      float64
}

// SingularRadius returns the radius where 2R − λ0 vanishes.
func (p Params) SingularRadius() float64 {
	return p.Lambda0 / 2
}

// #endregion params

// #region solver-options
// SolverOptions configures FindStationary.
//
//   - RMin, RMax     initial search interval.
//   - Tol            |E'(m)| below this accepts the midpoint m.
//   - MaxIterations  bisection budget; exhausting it returns the last midpoint.
//   - MaxExpansions  bracket expansions before giving up on the endpoints.
//   - ScanPoints     log-spaced samples for the interior scan; 0 disables it.
type SolverOptions struct {
	RMin          float64
	RMax          float64
	Tol           float64
	MaxIterations int
	MaxExpansions int
	ScanPoints    int
}

// DefaultSolverOptions returns the interval [1e-6, 1e6], tol 1e-12,
// 200 iterations, 20 expansions and a 256-point interior scan.
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		RMin:          1e-6,
		RMax:          1e6,
		Tol:           1e-12,
		MaxIterations: 200,
		MaxExpansions: 20,
		ScanPoints:    256,
	}
}

// #endregion solver-options

// #region stationary
// Stationary describes a located root of E'.
type Stationary struct {
	R          float64
	Iterations int  // bisection steps taken
	Expansions int  // bracket expansions performed
	Converged  bool // false when the iteration cap returned a best-effort midpoint
	Scanned    bool // true when the bracket came from the interior scan
}

// #endregion stationary
