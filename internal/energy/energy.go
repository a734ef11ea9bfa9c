package energy

import "math"

// Energy evaluates E(R). It returns +Inf at the singular radius.
func Energy(r float64, p Params) float64 {
	denom := 2*r - p.Lambda0
	if denom == 0 {
		return math.Inf(1)
	}
	return p.Ks*p.Ck/r + p.CL*r + p.G*p.Xi*p.Xi/(denom*denom)
}

// Derivative evaluates dE/dR. It returns +Inf at the singular radius.
func Derivative(r float64, p Params) float64 {
	denom := 2*r - p.Lambda0
	if denom == 0 {
		return math.Inf(1)
	}
	return -p.Ks*p.Ck/(r*r) + p.CL + 4*p.G*p.Xi*p.Xi/(denom*denom*denom)
}
