// Package leptons computes AWUT lepton mass-ratio predictions: one stationary
// point of the energy functional per mode, the energy there, and each mode's
// energy relative to the electron mode.
package leptons

import (
	"math"

	"github.com/danielpatrickdp/awut-validate/internal/energy"
)

// #region compute
// Compute runs the ratio computation for constants c. Every failure path yields
// a Result; nothing here panics or returns an error.
//
// A missing constant stops before any solve with StatusMissingConstants. A mode
// whose solve fails does not stop the other modes: their stationary points are
// still reported, the status becomes StatusFailStationary and no ratios are set.
// Targets only add comparisons; they never affect the solve.
func Compute(c Constants, targets Targets, opts energy.SolverOptions) Result {
	if missing := c.Missing(); len(missing) > 0 {
		return Result{Status: StatusMissingConstants, Missing: missing}
	}

	res := Result{
		Status: StatusOK,
		Rstar:  make(map[string]*float64, len(Modes)),
		E:      make(map[string]*float64, len(Modes)),
		Solver: make(map[string]ModeSolve, len(Modes)),
	}

	energies := make(map[string]float64, len(Modes))
	for _, m := range Modes {
		p := c.params(m)
		solve := ModeSolve{Xi: p.Xi}

		st, err := energy.FindStationary(p, opts)
		solve.Iterations = st.Iterations
		solve.Expansions = st.Expansions
		solve.Converged = st.Converged
		solve.Scanned = st.Scanned

		res.Rstar[m.Name] = nil
		res.E[m.Name] = nil
		switch {
		case err != nil:
			solve.Error = err.Error()
			res.Status = StatusFailStationary
		case !isFinite(st.R):
			solve.Error = "stationary radius is not finite"
			res.Status = StatusFailStationary
		default:
			r := st.R
			res.Rstar[m.Name] = &r
			e := energy.Energy(r, p)
			if isFinite(e) {
				energies[m.Name] = e
				res.E[m.Name] = &e
			} else {
				solve.Error = "energy is not finite at stationary radius"
				res.Status = StatusFailStationary
			}
		}
		res.Solver[m.Name] = solve
	}

	if res.Status != StatusOK {
		return res
	}

	res.Ratios = ratios(energies)
	res.Comparisons = compare(res.Ratios, targets)
	return res
}

// #endregion compute

// #region helpers
// params builds the evaluator constants for mode m.
func (c Constants) params(m Mode) energy.Params {
	return energy.Params{
		Ks:      c[KeyKs],
		Ck:      c[KeyCk],
		CL:      c[KeyCL],
		G:       c[KeyG],
		Lambda0: c[KeyLambda0],
		Xi:      float64(m.Multiplier) * c[KeyXi0],
	}
}

// ratios divides every non-base energy by the base energy. Non-finite
// quotients are left out.
func ratios(energies map[string]float64) map[string]float64 {
	base := energies[BaseMode]
	out := make(map[string]float64, len(Modes)-1)
	for _, m := range Modes {
		if m.Name == BaseMode {
			continue
		}
		q := energies[m.Name] / base
		if isFinite(q) {
			out[RatioKey(m.Name)] = q
		}
	}
	return out
}

func compare(ratios map[string]float64, targets Targets) map[string]Comparison {
	if len(targets) == 0 {
		return nil
	}
	out := make(map[string]Comparison)
	for _, key := range targets.Keys() {
		v, ok := ratios[key]
		if !ok {
			continue
		}
		ref := targets[key]
		cmp := Comparison{Value: v, Reference: ref, AbsError: math.Abs(v - ref)}
		if ref != 0 {
			rel := cmp.AbsError / math.Abs(ref)
			cmp.RelError = &rel
		}
		out[key] = cmp
	}
	return out
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// #endregion helpers
