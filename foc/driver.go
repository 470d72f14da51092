// Package foc implements the field-oriented control pipeline for PMSM
// motors: Clarke/Park transforms feeding dual d/q current regulators and
// an SVPWM output stage, with position/speed sourced from an encoder when
// present or a sensorless back-EMF+PLL observer otherwise (spec.md §4.I,
// expanded per SPEC_FULL.md to cover both cases).
package foc

import (
	"github.com/embeddedgo/motorctl"
	"github.com/embeddedgo/motorctl/mathutil"
	"github.com/embeddedgo/motorctl/observer"
	"github.com/embeddedgo/motorctl/pid"
	"github.com/embeddedgo/motorctl/svpwm"
)

// Driver is the FOC pipeline's private state (spec.md §3: "FOC holds
// electrical angle, id, iq, vd, vq, per-axis current PIDs, and
// field-weakening config/state").
type Driver struct {
	cfg *motorctl.MotorConfig
	hal motorctl.HAL

	mode motorctl.MotorMode

	thetaE         float32
	id, iq         float32
	vd, vq         float32
	idRef, iqRef   float32

	dPID        *pid.Controller
	qPID        *pid.Controller
	velocityPID *pid.Controller

	// obs is non-nil exactly when hal.Encoder() is nil: sensorless FOC
	// sources its electrical angle from the observer instead of an
	// encoder (SPEC_FULL.md §4.I).
	obs *observer.Observer

	pendingDuty svpwm.DutyABC

	lastUpdateUS uint32

	state     motorctl.MotorState
	setpoints motorctl.Setpoints
}

// New constructs a Driver. Call Init before ticking it.
func New() *Driver {
	return &Driver{mode: motorctl.ModeIdle}
}

// Init rejects a nil cfg or hal (it does not call cfg.Validate; NewMotor
// does), builds the d/q current PIDs (and the outer velocity
// PID), and wires in a sensorless observer when hal reports no encoder.
func (d *Driver) Init(cfg *motorctl.MotorConfig, hal motorctl.HAL) error {
	if cfg == nil || hal == nil {
		return motorctl.ErrInvalidArgs
	}
	d.cfg = cfg
	d.hal = hal

	d.dPID = pid.New(&pid.Config{
		Kp: cfg.Regulators.CurrentD.Kp, Ki: cfg.Regulators.CurrentD.Ki, Kd: cfg.Regulators.CurrentD.Kd,
		OutputMin: cfg.Regulators.CurrentD.OutputMin, OutputMax: cfg.Regulators.CurrentD.OutputMax,
		DerivativeAlpha: cfg.Regulators.CurrentD.DerivativeAlpha,
	})
	d.qPID = pid.New(&pid.Config{
		Kp: cfg.Regulators.CurrentQ.Kp, Ki: cfg.Regulators.CurrentQ.Ki, Kd: cfg.Regulators.CurrentQ.Kd,
		OutputMin: cfg.Regulators.CurrentQ.OutputMin, OutputMax: cfg.Regulators.CurrentQ.OutputMax,
		DerivativeAlpha: cfg.Regulators.CurrentQ.DerivativeAlpha,
	})
	d.velocityPID = pid.New(&pid.Config{
		Kp: cfg.Regulators.Velocity.Kp, Ki: cfg.Regulators.Velocity.Ki, Kd: cfg.Regulators.Velocity.Kd,
		OutputMin: -cfg.Limits.MaxCurrent, OutputMax: cfg.Limits.MaxCurrent,
		DerivativeAlpha: cfg.Regulators.Velocity.DerivativeAlpha,
	})
	d.dPID.Reset()
	d.qPID.Reset()
	d.velocityPID.Reset()

	if hal.Encoder() == nil {
		d.obs = observer.New(&observer.Config{
			PhaseResistance: cfg.Electrical.PhaseResistance,
			PLL:             cfg.Observer,
		})
		d.obs.Init()
	}

	d.mode = motorctl.ModeRunning
	d.state.IsInitialized = true
	now := hal.Micros()
	d.lastUpdateUS = now
	return nil
}

// Deinit forces zero duty and float on all phases and moves to Stopped.
// Idempotent.
func (d *Driver) Deinit() error {
	if d.hal != nil {
		motorctl.FloatAll(d.hal)
		d.hal.SetDutyABC(0, 0, 0)
	}
	d.mode = motorctl.ModeStopped
	return nil
}

// Mode returns the driver's current MotorMode.
func (d *Driver) Mode() motorctl.MotorMode { return d.mode }

// State returns a copy of the driver's MotorState.
func (d *Driver) State() motorctl.MotorState { return d.state }

// fault latches Error mode, floats every phase and zeroes duty, then
// returns err (spec.md §7).
func (d *Driver) fault(err error) error {
	d.mode = motorctl.ModeError
	motorctl.FloatAll(d.hal)
	d.hal.SetDutyABC(0, 0, 0)
	return err
}

// electricalAngle returns the current electrical angle and mechanical
// velocity, sourced from the encoder when present or the sensorless
// observer otherwise (SPEC_FULL.md §4.I).
func (d *Driver) electricalAngle(vAlpha, vBeta, iAlpha, iBeta, dt float32) (thetaE, omegaMech float32, err error) {
	if enc := d.hal.Encoder(); enc != nil {
		thetaMech := enc.Position()
		return mathutil.MechToElec(thetaMech, d.cfg.Electrical.PolePairs), enc.Velocity(), nil
	}
	thetaE, omegaE, err := d.obs.Update(vAlpha, vBeta, iAlpha, iBeta, dt)
	if err != nil {
		return 0, 0, err
	}
	if d.cfg.Electrical.PolePairs == 0 {
		return thetaE, omegaE, nil
	}
	return thetaE, omegaE / float32(d.cfg.Electrical.PolePairs), nil
}
