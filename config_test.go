package motorctl

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
)

func validConfig() *MotorConfig {
	return &MotorConfig{
		Electrical: ElectricalParams{PolePairs: 2},
		Limits: SafetyLimits{
			MaxCurrent:  20,
			MaxVoltage:  24,
			MaxVelocity: 2000,
		},
		Hardware: HardwareConfig{
			PWM: PWMConfig{Resolution: 10},
			ADC: ADCConfig{Resolution: 12},
		},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	c := qt.New(t)
	c.Assert(validConfig().Validate(), qt.IsNil)
}

func TestValidateRejectsZeroPolePairs(t *testing.T) {
	c := qt.New(t)
	cfg := validConfig()
	cfg.Electrical.PolePairs = 0
	c.Assert(errors.Is(cfg.Validate(), ErrInvalidArgs), qt.Equals, true)
}

func TestValidateRequiresElectricalParamsForFOC(t *testing.T) {
	c := qt.New(t)
	cfg := validConfig()
	cfg.Method = MethodFOC
	c.Assert(errors.Is(cfg.Validate(), ErrInvalidArgs), qt.Equals, true)

	cfg.Electrical.PhaseResistance = 1
	cfg.Electrical.PhaseInductance = 0.001
	c.Assert(cfg.Validate(), qt.IsNil)
}

func TestValidateRejectsOutOfRangeLimits(t *testing.T) {
	c := qt.New(t)
	cfg := validConfig()
	cfg.Limits.MaxCurrent = 0
	c.Assert(errors.Is(cfg.Validate(), ErrInvalidArgs), qt.Equals, true)
}

func TestValidateRejectsBadPWMResolution(t *testing.T) {
	c := qt.New(t)
	cfg := validConfig()
	cfg.Hardware.PWM.Resolution = 20
	c.Assert(errors.Is(cfg.Validate(), ErrInvalidArgs), qt.Equals, true)
}

func TestDefaultStartupConfigMatchesSpecDefaults(t *testing.T) {
	c := qt.New(t)
	sc := DefaultStartupConfig()
	c.Assert(sc.AlignTimeMS, qt.Equals, uint32(500))
	c.Assert(sc.OpenLoopSteps, qt.Equals, 12)
	c.Assert(sc.PeriodMinUS, qt.Equals, uint32(5000))
	c.Assert(sc.PeriodMaxUS, qt.Equals, uint32(50000))
	c.Assert(sc.StallCeilingMS, qt.Equals, uint32(500))
}

func TestDefaultFOCCurrentGainsMatchesSpecDefaults(t *testing.T) {
	c := qt.New(t)
	g := DefaultFOCCurrentGains()
	c.Assert(g.Kp, qt.Equals, float32(2.0))
	c.Assert(g.Ki, qt.Equals, float32(500.0))
	c.Assert(g.Kd, qt.Equals, float32(0.0))
	c.Assert(g.OutputMin, qt.Equals, float32(-24))
	c.Assert(g.OutputMax, qt.Equals, float32(24))
	c.Assert(g.DerivativeAlpha, qt.Equals, float32(0.1))
}
