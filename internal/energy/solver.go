package energy

import (
	"fmt"
	"math"
)

// minRadius floors the lower bracket bound during expansion so it never
// reaches or crosses zero.
const minRadius = 1e-18

// #region find-stationary
// FindStationary locates R* with E'(R*) ≈ 0 for the given constants.
//
// Algorithm:
//  1. Evaluate E' at RMin and RMax; NaN at either end returns ErrUnstable.
//  2. While both ends share a sign (fa·fb > 0) and fewer than MaxExpansions
//     expansions happened: a = max(1e-18, a/2), b = 1.5·b, re-evaluate.
//  3. If the ends still share a sign, scan ScanPoints log-spaced radii over
//     [a, b] for the first adjacent pair with fa·fb ≤ 0 that does not straddle
//     the singular radius. No such pair returns ErrNotFound.
//  4. Bisect up to MaxIterations times. |E'(m)| < Tol returns m; otherwise the
//     half whose endpoint shares the sign of E'(m) is dropped, with
//     fa·fm ≤ 0 keeping the lower half. An exhausted budget returns the final
//     midpoint with Converged=false, unless the bracket still holds the
//     singular radius: bisection then closed on the pole, which is ErrNotFound.
func FindStationary(p Params, opts SolverOptions) (Stationary, error) {
	if !(opts.RMin > 0) || !(opts.RMax > opts.RMin) {
		return Stationary{}, fmt.Errorf("find stationary [%g, %g]: %w", opts.RMin, opts.RMax, ErrBadInterval)
	}

	a, b := opts.RMin, opts.RMax
	fa, fb := Derivative(a, p), Derivative(b, p)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return Stationary{}, ErrUnstable
	}

	expansions := 0
	for fa*fb > 0 && expansions < opts.MaxExpansions {
		a = math.Max(minRadius, a*0.5)
		b = b * 1.5
		fa, fb = Derivative(a, p), Derivative(b, p)
		expansions++
		if math.IsNaN(fa) || math.IsNaN(fb) {
			return Stationary{}, ErrUnstable
		}
	}

	scanned := false
	if fa*fb > 0 {
		var ok bool
		a, fa, b, _, ok = scanBracket(p, a, b, opts.ScanPoints)
		if !ok {
			return Stationary{Expansions: expansions}, ErrNotFound
		}
		scanned = true
	}

	st := Stationary{Expansions: expansions, Scanned: scanned}
	for st.Iterations < opts.MaxIterations {
		m := 0.5 * (a + b)
		fm := Derivative(m, p)
		st.Iterations++
		if math.Abs(fm) < opts.Tol {
			st.R = m
			st.Converged = true
			return st, nil
		}
		if fa*fm <= 0 {
			b = m
		} else {
			a, fa = m, fm
		}
	}

	if singular := p.SingularRadius(); a <= singular && singular <= b {
		return Stationary{Expansions: expansions, Scanned: scanned, Iterations: st.Iterations},
			fmt.Errorf("%w: bracket closed on singular radius %g", ErrNotFound, singular)
	}
	st.R = 0.5 * (a + b)
	return st, nil
}

// #endregion find-stationary

// #region scan
// scanBracket samples E' on n log-spaced radii over [lo, hi], lowest first, and
// returns the first adjacent pair whose values do not share a sign. Pairs with
// a NaN sample or that straddle the singular radius are skipped: a sign flip
// across the pole is not a root.
func scanBracket(p Params, lo, hi float64, n int) (a, fa, b, fb float64, ok bool) {
	if n < 2 {
		return 0, 0, 0, 0, false
	}
	singular := p.SingularRadius()
	logLo, logHi := math.Log(lo), math.Log(hi)

	prev, fprev := lo, Derivative(lo, p)
	for i := 1; i < n; i++ {
		x := hi
		if i < n-1 {
			x = math.Exp(logLo + (logHi-logLo)*float64(i)/float64(n-1))
		}
		fx := Derivative(x, p)
		if !math.IsNaN(fx) && !math.IsNaN(fprev) && fprev*fx <= 0 && !(prev < singular && singular < x) {
			return prev, fprev, x, fx, true
		}
		prev, fprev = x, fx
	}
	return 0, 0, 0, 0, false
}

// #endregion scan
