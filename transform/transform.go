// Package transform implements the Clarke, Park and inverse-Park
// reference-frame conversions used by the FOC pipeline and the
// sensorless back-EMF observer.
package transform

import (
	"github.com/embeddedgo/motorctl"
	"github.com/embeddedgo/motorctl/mathutil"
)

const sqrt3 = 1.7320508

// finite reports whether v is neither NaN nor Inf. Go transforms take
// values, not output pointers, so the spec's "fails on null outputs" edge
// case (written for a C ABI) is reinterpreted as rejecting non-finite
// inputs — never silently propagate garbage downstream (see DESIGN.md).
func finite(v float32) bool {
	return v == v && v*0 == 0
}

// ClarkeTwoPhase projects two measured phase currents onto the
// stationary αβ frame, inferring the third from ia+ib+ic=0.
func ClarkeTwoPhase(ia, ib float32) (alpha, beta float32, err error) {
	if !finite(ia) || !finite(ib) {
		return 0, 0, motorctl.ErrInvalidArgs
	}
	alpha = ia
	beta = (ia + 2*ib) / sqrt3
	return alpha, beta, nil
}

// ClarkeThreePhase projects all three measured phase currents onto αβ,
// used when the third phase current is actually sampled rather than
// inferred.
func ClarkeThreePhase(ia, ib, ic float32) (alpha, beta float32, err error) {
	if !finite(ia) || !finite(ib) || !finite(ic) {
		return 0, 0, motorctl.ErrInvalidArgs
	}
	alpha = ia
	beta = (ib - ic) / sqrt3
	return alpha, beta, nil
}

// Park rotates the stationary αβ frame into the rotor-synchronous dq
// frame at electrical angle theta.
func Park(alpha, beta, theta float32) (d, q float32, err error) {
	if !finite(alpha) || !finite(beta) || !finite(theta) {
		return 0, 0, motorctl.ErrInvalidArgs
	}
	sin, cos := mathutil.FastSinCos(theta)
	d = alpha*cos + beta*sin
	q = -alpha*sin + beta*cos
	return d, q, nil
}

// InversePark rotates the dq frame back into the stationary αβ frame at
// electrical angle theta. InversePark(Park(a,b,t),t) recovers (a,b)
// within 1e-5 for any theta (spec.md §8 property 7).
func InversePark(d, q, theta float32) (alpha, beta float32, err error) {
	if !finite(d) || !finite(q) || !finite(theta) {
		return 0, 0, motorctl.ErrInvalidArgs
	}
	sin, cos := mathutil.FastSinCos(theta)
	alpha = d*cos - q*sin
	beta = d*sin + q*cos
	return alpha, beta, nil
}
