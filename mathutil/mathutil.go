// Package mathutil provides the small set of numeric primitives shared by
// every control loop in motorctl: angle normalization, clamping, combined
// sine/cosine, and a bounded-iteration square root. Everything here is
// pure and allocation-free so it is safe to call from a real-time tick.
package mathutil

import (
	"github.com/orsinium-labs/tinymath"
	"golang.org/x/exp/constraints"
)

// TwoPi is 2π, used throughout for angle wrapping.
const TwoPi = 2 * tinymath.Pi

// Clamp returns lo if x <= lo, hi if x >= hi, otherwise x.
func Clamp(x, lo, hi float32) float32 {
	if x <= lo {
		return lo
	}
	if x >= hi {
		return hi
	}
	return x
}

// ClampOrdered is the generic form of Clamp, used for integer PWM duty
// values and other ordered types the float32 control loops don't touch.
func ClampOrdered[T constraints.Ordered](x, lo, hi T) T {
	if x <= lo {
		return lo
	}
	if x >= hi {
		return hi
	}
	return x
}

// Abs returns the absolute value of x.
func Abs(x float32) float32 {
	return tinymath.Abs(x)
}

// Min returns the smaller of a and b.
func Min(a, b float32) float32 {
	return tinymath.Min(a, b)
}

// Max returns the larger of a and b.
func Max(a, b float32) float32 {
	return tinymath.Max(a, b)
}

// NormalizeAngle reduces theta to [0, 2π).
func NormalizeAngle(theta float32) float32 {
	theta = tinymath.Mod(theta, TwoPi)
	if theta < 0 {
		theta += TwoPi
	}
	return theta
}

// MechToElec converts a mechanical angle to an electrical angle given the
// motor's pole-pair count, normalized to [0, 2π).
func MechToElec(thetaMech float32, polePairs uint8) float32 {
	return NormalizeAngle(thetaMech * float32(polePairs))
}

// FastSinCos returns sin(theta) and cos(theta) in one call, since
// transform.Park/InversePark consume the two together. It evaluates them
// with two separate tinymath calls.
func FastSinCos(theta float32) (sin, cos float32) {
	return tinymath.Sin(theta), tinymath.Cos(theta)
}

// sqrtEpsilon is the convergence tolerance required by spec: Newton-Raphson
// iterates until successive estimates differ by no more than this.
const sqrtEpsilon = 1e-5

// Sqrt computes the square root of a non-negative x by Newton-Raphson,
// converging to within sqrtEpsilon of the true value. x < 0 returns 0.
func Sqrt(x float32) float32 {
	if x <= 0 {
		return 0
	}
	guess := x
	if guess < 1 {
		guess = 1
	}
	for i := 0; i < 32; i++ {
		next := 0.5 * (guess + x/guess)
		if Abs(next-guess) <= sqrtEpsilon {
			return next
		}
		guess = next
	}
	return guess
}
