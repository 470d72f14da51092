package pll

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestResetClearsState(t *testing.T) {
	c := qt.New(t)
	ctl := New(&Config{Kp: 1, Ki: 1, MaxOmega: 100})
	ctl.Update(1, 0.01)
	ctl.Reset()
	c.Assert(ctl.Theta(), qt.Equals, float32(0))
	c.Assert(ctl.Omega(), qt.Equals, float32(0))
	c.Assert(ctl.IsConverged(), qt.Equals, false)
	c.Assert(ctl.PeakError(), qt.Equals, float32(0))
}

func TestConvergesOnZeroError(t *testing.T) {
	c := qt.New(t)
	ctl := New(&Config{Kp: 1, Ki: 1, MaxOmega: 100})
	ctl.Reset()
	var theta, omega float32
	for i := 0; i < 5; i++ {
		theta, omega = ctl.Update(0, 0.001)
	}
	c.Assert(theta, qt.Equals, float32(0))
	c.Assert(omega, qt.Equals, float32(0))
	c.Assert(ctl.IsConverged(), qt.Equals, true)
}

func TestOmegaSaturatesToMax(t *testing.T) {
	c := qt.New(t)
	ctl := New(&Config{Kp: 1000, Ki: 0, MaxOmega: 10})
	ctl.Reset()
	_, omega := ctl.Update(100, 0.001)
	c.Assert(omega, qt.Equals, float32(10))
}

func TestPeakErrorTracksMaximum(t *testing.T) {
	c := qt.New(t)
	ctl := New(&Config{Kp: 0.1, Ki: 0, MaxOmega: 1000})
	ctl.Reset()
	ctl.Update(0.2, 0.001)
	ctl.Update(0.05, 0.001)
	ctl.Update(0.5, 0.001)
	c.Assert(ctl.PeakError(), qt.Equals, float32(0.5))
}

func TestIntegralClampedToBounds(t *testing.T) {
	c := qt.New(t)
	ctl := New(&Config{Kp: 0, Ki: 1000, MaxOmega: 1e9})
	ctl.Reset()
	for i := 0; i < 1000; i++ {
		ctl.Update(100, 1.0)
	}
	c.Assert(ctl.integral <= integralClamp, qt.Equals, true)
}

func TestFilterSmoothsEstimate(t *testing.T) {
	c := qt.New(t)
	ctl := New(&Config{Kp: 1, Ki: 0, MaxOmega: 100, FilterEnabled: true, FilterAlpha: 0.5})
	ctl.Reset()
	theta1, _ := ctl.Update(1, 0.01)
	c.Assert(theta1 != 0, qt.Equals, true)
}
