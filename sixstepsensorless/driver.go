// Package sixstepsensorless implements the six-step trapezoidal BLDC
// commutator that infers rotor position from back-EMF zero crossings,
// including the open-loop startup sequence required before the
// zero-crossing detector has a signal to lock onto.
package sixstepsensorless

import (
	"github.com/embeddedgo/motorctl"
	"github.com/embeddedgo/motorctl/pid"
)

// minCommutationPeriodUS rejects noise and high-frequency glitches on the
// back-EMF comparator, per spec.md §4.G.
const minCommutationPeriodUS = 10

// Driver is the sensorless six-step commutator's private state (spec.md
// §3 Driver state).
type Driver struct {
	cfg *motorctl.MotorConfig
	hal motorctl.HAL

	mode      motorctl.MotorMode
	step      int
	direction motorctl.Direction
	pwmDuty   float32

	lastZCUS             uint32
	lastCommutationUS    uint32
	lastUpdateUS         uint32
	estSpeedRPM          float32
	commutationPeriodUS  uint32

	rawBackEMF      [3]float32
	filteredBackEMF [3]float32
	emaAlpha        float32
	zcExpected      motorctl.ZeroCrossingState
	zcThreshold     float32
	zcHysteresis    float32

	currentPID  *pid.Controller
	velocityPID *pid.Controller

	state      motorctl.MotorState
	setpoints  motorctl.Setpoints
}

// New constructs a Driver. Call Init before ticking it.
func New() *Driver {
	return &Driver{mode: motorctl.ModeIdle}
}

// Init runs the startup sequence (spec.md §4.G) and, on success, leaves
// the driver in ModeRunning; on failure it leaves it in ModeError and
// returns the failing error.
func (d *Driver) Init(cfg *motorctl.MotorConfig, hal motorctl.HAL) error {
	if cfg == nil || hal == nil {
		return motorctl.ErrInvalidArgs
	}
	d.cfg = cfg
	d.hal = hal
	d.direction = motorctl.Forward
	d.zcThreshold = cfg.ZeroCrossingThreshold
	d.zcHysteresis = cfg.ZeroCrossingHysteresis
	d.emaAlpha = cfg.BackEMFFilterAlpha
	if d.emaAlpha <= 0 {
		d.emaAlpha = 1
	}

	d.currentPID = pid.New(&pid.Config{
		Kp: cfg.Regulators.Current.Kp, Ki: cfg.Regulators.Current.Ki, Kd: cfg.Regulators.Current.Kd,
		OutputMin: 0, OutputMax: 1, DerivativeAlpha: cfg.Regulators.Current.DerivativeAlpha,
	})
	d.velocityPID = pid.New(&pid.Config{
		Kp: cfg.Regulators.Velocity.Kp, Ki: cfg.Regulators.Velocity.Ki, Kd: cfg.Regulators.Velocity.Kd,
		OutputMin: 0, OutputMax: 1, DerivativeAlpha: cfg.Regulators.Velocity.DerivativeAlpha,
	})
	d.currentPID.Reset()
	d.velocityPID.Reset()

	d.mode = motorctl.ModeStopped
	d.state.IsInitialized = true

	if err := d.runStartup(); err != nil {
		d.mode = motorctl.ModeError
		return err
	}

	d.lastUpdateUS = d.hal.Micros()
	d.mode = motorctl.ModeRunning
	return nil
}

// runStartup performs the align -> open-loop acceleration -> transition
// sequence described in spec.md §4.G.
func (d *Driver) runStartup() error {
	sc := d.cfg.Startup

	d.mode = motorctl.ModeAligning
	d.step = 0
	d.pwmDuty = sc.AlignDuty
	motorctl.DriveStep(d.hal, d.step)
	d.applyDuty()
	d.hal.DelayMS(sc.AlignTimeMS)

	d.mode = motorctl.ModeOpenLoop
	baseDuty := sc.AlignDuty

	var elapsedMS uint32
	var lastPeriodUS uint32
	k := float32(1.0)
	for i := 0; i < sc.OpenLoopSteps; i++ {
		duty := baseDuty + float32(i)*stepDutyIncrement
		duty = clampDuty(duty)
		d.pwmDuty = duty

		periodUS := sc.PeriodMaxUS
		scaled := float32(sc.PeriodMaxUS) * k
		if scaled < float32(sc.PeriodMinUS) {
			periodUS = sc.PeriodMinUS
		} else {
			periodUS = uint32(scaled)
		}
		k *= 0.8

		d.step = motorctl.NextStep(d.step, d.direction)
		motorctl.DriveStep(d.hal, d.step)
		d.applyDuty()
		d.hal.DelayUS(periodUS)

		elapsedMS += periodUS / 1000
		lastPeriodUS = periodUS

		d.estSpeedRPM = periodToRPM(periodUS)
		if elapsedMS > sc.StallCeilingMS && d.estSpeedRPM < d.cfg.Limits.MinStartupSpeed {
			return motorctl.ErrInitError
		}
	}

	d.mode = motorctl.ModeTransition
	now := d.hal.Micros()
	d.lastZCUS = now
	d.lastCommutationUS = now
	d.commutationPeriodUS = lastPeriodUS
	d.filteredBackEMF = [3]float32{}
	d.rawBackEMF = [3]float32{}
	d.zcExpected = motorctl.ZCRising

	return nil
}

// stepDutyIncrement is the per-step duty ramp applied during open-loop
// acceleration.
const stepDutyIncrement = 0.02

func clampDuty(d float32) float32 {
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

// periodToRPM converts a commutation period in microseconds to mechanical
// RPM, per spec.md §4.G: speed = (1/6)*(1e6/period)*60.
func periodToRPM(periodUS uint32) float32 {
	if periodUS == 0 {
		return 0
	}
	return (1.0 / 6.0) * (1e6 / float32(periodUS)) * 60
}

// applyDuty is a no-op placeholder hook kept for symmetry with UpdatePWM;
// the startup sequence drives GPIO directly and PWM is emitted by the
// façade's next UpdatePWM call once Running.
func (d *Driver) applyDuty() {}

// Deinit forces zero duty and float on all phases and moves to Stopped.
// Idempotent.
func (d *Driver) Deinit() error {
	if d.hal != nil {
		motorctl.FloatAll(d.hal)
		d.hal.SetDutyABC(0, 0, 0)
	}
	d.pwmDuty = 0
	d.mode = motorctl.ModeStopped
	return nil
}

// Mode returns the driver's current MotorMode.
func (d *Driver) Mode() motorctl.MotorMode { return d.mode }

// State returns a copy of the driver's MotorState.
func (d *Driver) State() motorctl.MotorState { return d.state }
