package transform

import (
	"errors"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/embeddedgo/motorctl"
)

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// TestClarkeParkRoundTrip covers spec.md §8 scenario S6: with theta =
// 1.2345 rad, ia = 3.0 A, ib = -1.5 A, Clarke yields (alpha,beta); Park at
// theta yields (d,q); inverse-Park at theta reproduces (alpha,beta)
// within 1e-5.
func TestClarkeParkRoundTrip(t *testing.T) {
	c := qt.New(t)
	theta := float32(1.2345)
	ia, ib := float32(3.0), float32(-1.5)

	alpha, beta, err := ClarkeTwoPhase(ia, ib)
	c.Assert(err, qt.IsNil)

	d, q, err := Park(alpha, beta, theta)
	c.Assert(err, qt.IsNil)

	alpha2, beta2, err := InversePark(d, q, theta)
	c.Assert(err, qt.IsNil)

	c.Assert(abs32(alpha2-alpha) < 1e-5, qt.Equals, true, qt.Commentf("alpha %v vs %v", alpha2, alpha))
	c.Assert(abs32(beta2-beta) < 1e-5, qt.Equals, true, qt.Commentf("beta %v vs %v", beta2, beta))
}

func TestClarkeThreePhaseBalanced(t *testing.T) {
	c := qt.New(t)
	// A balanced three-phase set sums to zero; Clarke-3 should agree with
	// Clarke-2 on the inferred third phase.
	ia, ib := float32(2.0), float32(-1.0)
	ic := -(ia + ib)

	alpha2, beta2, err := ClarkeTwoPhase(ia, ib)
	c.Assert(err, qt.IsNil)
	alpha3, beta3, err := ClarkeThreePhase(ia, ib, ic)
	c.Assert(err, qt.IsNil)

	c.Assert(abs32(alpha3-alpha2) < 1e-4, qt.Equals, true)
	c.Assert(abs32(beta3-beta2) < 1e-4, qt.Equals, true)
}

func TestRejectsNonFiniteInputs(t *testing.T) {
	c := qt.New(t)
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	_, _, err := ClarkeTwoPhase(nan, 0)
	c.Assert(errors.Is(err, motorctl.ErrInvalidArgs), qt.Equals, true)

	_, _, err = Park(0, inf, 0)
	c.Assert(errors.Is(err, motorctl.ErrInvalidArgs), qt.Equals, true)

	_, _, err = InversePark(0, 0, nan)
	c.Assert(errors.Is(err, motorctl.ErrInvalidArgs), qt.Equals, true)
}
