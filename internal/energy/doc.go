// Package energy evaluates the AWUT radial energy functional and locates its
// stationary points.
//
// The functional for a mode with scale xi is
//
//	E(R)  = Ks·Ck/R + CL·R + g·xi²/(2R − λ0)²
//	E'(R) = −Ks·Ck/R² + CL + 4·g·xi²/(2R − λ0)³
//
// Both return +Inf at the singular radius R = λ0/2 instead of dividing by zero.
//
// FindStationary brackets a root of E' by expanding [RMin, RMax] (lower bound
// halved, upper bound grown by 50%, at most MaxExpansions times), falls back to a
// log-spaced interior scan when the endpoints never change sign, and then
// bisects. Every function here is pure: the result depends only on its inputs.
package energy
