package svpwm

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/embeddedgo/motorctl/mathutil"
)

func TestGenerateEachSectorInRange(t *testing.T) {
	c := qt.New(t)
	for sector := 0; sector < 6; sector++ {
		theta := (float32(sector) + 0.5) * (mathutil.TwoPi / 6)
		duty, err := Generate(theta, 1.0)
		c.Assert(err, qt.IsNil)
		c.Assert(duty.A >= 0 && duty.A <= 1, qt.Equals, true, qt.Commentf("A=%v sector %d", duty.A, sector))
		c.Assert(duty.B >= 0 && duty.B <= 1, qt.Equals, true, qt.Commentf("B=%v sector %d", duty.B, sector))
		c.Assert(duty.C >= 0 && duty.C <= 1, qt.Equals, true, qt.Commentf("C=%v sector %d", duty.C, sector))
	}
}

func TestGenerateClampsModulationIndex(t *testing.T) {
	c := qt.New(t)
	duty, err := Generate(0, 2.0)
	c.Assert(err, qt.IsNil)
	c.Assert(duty.A >= 0 && duty.A <= 1, qt.Equals, true)

	duty, err = Generate(0, -1.0)
	c.Assert(err, qt.IsNil)
	c.Assert(duty.A >= 0 && duty.A <= 1, qt.Equals, true)
}

func TestGenerateNormalizesAngle(t *testing.T) {
	c := qt.New(t)
	d1, err := Generate(0.3, 0.5)
	c.Assert(err, qt.IsNil)
	d2, err := Generate(0.3+mathutil.TwoPi, 0.5)
	c.Assert(err, qt.IsNil)
	// 0.3+2π is not exactly representable in float32, so the normalized
	// angles differ by a few ulps; compare within 1e-4.
	c.Assert(mathutil.Abs(d1.A-d2.A) < 1e-4 && mathutil.Abs(d1.B-d2.B) < 1e-4 && mathutil.Abs(d1.C-d2.C) < 1e-4, qt.Equals, true, qt.Commentf("%v vs %v", d1, d2))
}
