package sixstepsensored

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/embeddedgo/motorctl"
	"github.com/embeddedgo/motorctl/simhal"
)

func testConfig() *motorctl.MotorConfig {
	return &motorctl.MotorConfig{
		Type:   motorctl.TypeBLDC,
		Method: motorctl.MethodSixStep,
		Mode:   motorctl.ModeVoltage,
		Electrical: motorctl.ElectricalParams{
			PolePairs: 2,
		},
		Limits: motorctl.SafetyLimits{
			MaxCurrent:      20,
			MaxVoltage:      24,
			MaxVelocity:     2000,
			MinStartupSpeed: 10,
		},
		Regulators: motorctl.RegulatorConfig{
			Current:  motorctl.PIDGains{Kp: 0.1, Ki: 10, OutputMin: 0, OutputMax: 1, DerivativeAlpha: 1},
			Velocity: motorctl.PIDGains{Kp: 0.01, Ki: 1, OutputMin: 0, OutputMax: 1, DerivativeAlpha: 1},
		},
		Hardware: motorctl.HardwareConfig{
			PWM: motorctl.PWMConfig{Resolution: 10},
			ADC: motorctl.ADCConfig{Resolution: 12},
		},
		Startup: motorctl.DefaultStartupConfig(),
	}
}

// TestStepFromHallForward covers spec.md §8 scenario S5: Hall 0b011 -> 0,
// 0b100 -> 3; 0b111 is illegal.
func TestStepFromHallForward(t *testing.T) {
	c := qt.New(t)
	cases := []struct {
		hall uint8
		want int
	}{
		{0b011, 0},
		{0b001, 1},
		{0b101, 2},
		{0b100, 3},
		{0b110, 4},
		{0b010, 5},
	}
	for _, tc := range cases {
		step, ok := stepFromHall(tc.hall, motorctl.Forward)
		c.Assert(ok, qt.Equals, true)
		c.Assert(step, qt.Equals, tc.want)
	}

	_, ok := stepFromHall(0b111, motorctl.Forward)
	c.Assert(ok, qt.Equals, false)
	_, ok = stepFromHall(0b000, motorctl.Forward)
	c.Assert(ok, qt.Equals, false)
}

func TestStepFromHallReverse(t *testing.T) {
	c := qt.New(t)
	cases := []struct {
		hall uint8
		want int
	}{
		{0b011, 5},
		{0b001, 0},
		{0b101, 1},
		{0b100, 2},
		{0b110, 3},
		{0b010, 4},
	}
	for _, tc := range cases {
		step, ok := stepFromHall(tc.hall, motorctl.Reverse)
		c.Assert(ok, qt.Equals, true)
		c.Assert(step, qt.Equals, tc.want)
	}
}

func TestInitLatchesInitialHallStep(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig()
	hal := simhal.New(cfg.Hardware.PWM.Resolution)
	hal.Hall = 0b100 // -> step 3

	d := New()
	c.Assert(d.Init(cfg, hal), qt.IsNil)
	c.Assert(d.Mode(), qt.Equals, motorctl.ModeRunning)
	c.Assert(d.step, qt.Equals, 3)
}

func TestInitWithIllegalHallCodeFails(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig()
	hal := simhal.New(cfg.Hardware.PWM.Resolution)
	hal.Hall = 0b111

	d := New()
	err := d.Init(cfg, hal)
	c.Assert(errors.Is(err, motorctl.ErrHal), qt.Equals, true)
	c.Assert(d.Mode(), qt.Equals, motorctl.ModeError)
}

func TestCommutateAdvancesOnHallChange(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig()
	hal := simhal.New(cfg.Hardware.PWM.Resolution)
	hal.Hall = 0b011 // step 0

	d := New()
	c.Assert(d.Init(cfg, hal), qt.IsNil)
	c.Assert(d.step, qt.Equals, 0)

	hal.AdvanceUS(1000)
	hal.Hall = 0b001 // step 1
	c.Assert(d.Commutate(), qt.IsNil)
	c.Assert(d.step, qt.Equals, 1)
	c.Assert(d.commutationPeriodUS, qt.Equals, uint32(1000))
}

func TestCommutateIllegalHallLatchesError(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig()
	hal := simhal.New(cfg.Hardware.PWM.Resolution)
	hal.Hall = 0b011

	d := New()
	c.Assert(d.Init(cfg, hal), qt.IsNil)

	hal.Hall = 0b000
	err := d.Commutate()
	c.Assert(errors.Is(err, motorctl.ErrHal), qt.Equals, true)
	c.Assert(d.Mode(), qt.Equals, motorctl.ModeError)
}

func TestUpdateStateOvervoltage(t *testing.T) {
	c := qt.New(t)
	cfg := testConfig()
	hal := simhal.New(cfg.Hardware.PWM.Resolution)
	hal.Hall = 0b011
	d := New()
	c.Assert(d.Init(cfg, hal), qt.IsNil)

	hal.Voltages = [3]float32{30, 12, 12}
	hal.Currents = [3]float32{5, 5, 5}
	err := d.UpdateState()
	c.Assert(errors.Is(err, motorctl.ErrOvervoltage), qt.Equals, true)
}
