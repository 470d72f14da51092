package foc

import (
	"github.com/embeddedgo/motorctl"
	"github.com/embeddedgo/motorctl/mathutil"
	"github.com/embeddedgo/motorctl/svpwm"
	"github.com/embeddedgo/motorctl/transform"
)

// UpdateState runs the full per-tick FOC pipeline (spec.md §4.I, steps
// 1-6): sample, compute electrical angle, Clarke, Park, select dq
// references by control mode, and run the inner current regulators. The
// resulting v_d/v_q are consumed by UpdatePWM.
func (d *Driver) UpdateState() error {
	if d.mode == motorctl.ModeStopped || d.mode == motorctl.ModeError {
		return nil
	}

	d.hal.StartConversion()
	voltages := d.hal.PhaseVoltages()
	currents := d.hal.PhaseCurrents()
	d.state.DCBusVoltage = d.hal.DCVoltage()
	d.state.Temperature = d.hal.Temperature()
	d.state.PhaseVoltages = voltages
	d.state.PhaseCurrents = currents

	now := d.hal.Micros()
	dt := float32(motorctl.ElapsedMicros(now, d.lastUpdateUS)) / 1e6
	d.lastUpdateUS = now
	d.state.LastUpdateUS = now

	for i := 0; i < 3; i++ {
		if voltages[i] > d.cfg.Limits.MaxVoltage || voltages[i] < -d.cfg.Limits.MaxVoltage {
			return d.fault(motorctl.ErrOvervoltage)
		}
		if currents[i] > d.cfg.Limits.MaxCurrent || currents[i] < -d.cfg.Limits.MaxCurrent {
			return d.fault(motorctl.ErrOvercurrent)
		}
	}

	alpha, beta, err := transform.ClarkeTwoPhase(currents[0], currents[1])
	if err != nil {
		return d.fault(err)
	}
	vAlpha, vBeta, err := transform.ClarkeThreePhase(voltages[0], voltages[1], voltages[2])
	if err != nil {
		return d.fault(err)
	}

	thetaE, omegaMech, err := d.electricalAngle(vAlpha, vBeta, alpha, beta, dt)
	if err != nil {
		return d.fault(err)
	}
	d.thetaE = thetaE
	d.state.MechVelocity = omegaMech

	id, iq, err := transform.Park(alpha, beta, thetaE)
	if err != nil {
		return d.fault(err)
	}
	d.id, d.iq = id, iq

	d.selectReferences(omegaMech)

	// Current loop is skipped in ModeVoltage: selectReferences already
	// drove vd/vq straight from the setpoint (spec.md §4.I step 5), and
	// running the PIDs here would immediately overwrite them.
	if d.cfg.Mode != motorctl.ModeVoltage {
		d.vd = d.dPID.Update(d.idRef, d.id, dt)
		d.vq = d.qPID.Update(d.iqRef, d.iq, dt)
	}
	return nil
}

// selectReferences sets idRef/iqRef (or vd/vq directly in voltage mode)
// per the configured control mode, per spec.md §4.I step 5.
func (d *Driver) selectReferences(omegaMech float32) {
	switch d.cfg.Mode {
	case motorctl.ModeCurrent:
		d.idRef = 0
		d.iqRef = d.setpoints.Current
	case motorctl.ModeTorque:
		d.idRef = 0
		if d.cfg.Electrical.TorqueConstant != 0 {
			d.iqRef = d.setpoints.Torque / d.cfg.Electrical.TorqueConstant
		}
	case motorctl.ModeVelocity:
		d.idRef = 0
		d.iqRef = d.velocityPID.Update(d.setpoints.Velocity, omegaMech, 0)
	case motorctl.ModeVoltage:
		// Direct voltage mode bypasses the current loop; vd/vq are driven
		// straight from the setpoint (spec.md §4.I step 5).
		d.vd = d.setpoints.Voltage
		d.vq = 0
	}

	if d.cfg.FieldWeakening.Enabled && d.idRef < d.cfg.FieldWeakening.IDRefMax {
		d.idRef = d.cfg.FieldWeakening.IDRefMax
	}
}

// Commutate performs the inverse-Park and SVPWM stages (spec.md §4.I
// steps 7-8), leaving the synthesized duty cycle in the driver's state
// for UpdatePWM to apply.
func (d *Driver) Commutate() error {
	if d.mode != motorctl.ModeRunning {
		return nil
	}

	// Inverse Park is carried per spec.md §4.I step 7 even though SVPWM
	// below consumes (thetaE, m) directly rather than (alpha, beta).
	if _, _, err := transform.InversePark(d.vd, d.vq, d.thetaE); err != nil {
		return d.fault(err)
	}

	// Modulation index is the voltage magnitude normalized by the DC bus,
	// not the safety-limit MaxVoltage (spec.md §4.I step 8, resolved
	// ambiguity recorded in DESIGN.md); svpwm.Generate clamps it to
	// [0, 1] per spec.md §4.D.
	m := mathutil.Sqrt(d.vd*d.vd + d.vq*d.vq)
	if d.state.DCBusVoltage != 0 {
		m /= d.state.DCBusVoltage
	}

	duty, err := svpwm.Generate(d.thetaE, m)
	if err != nil {
		return d.fault(err)
	}
	d.pendingDuty = duty
	return nil
}

// UpdatePWM applies the SVPWM duty cycle computed by Commutate, or floats
// every phase at zero duty when latched in Error (spec.md §7).
func (d *Driver) UpdatePWM() error {
	if d.mode == motorctl.ModeError {
		motorctl.FloatAll(d.hal)
		d.hal.SetDutyABC(0, 0, 0)
		return nil
	}
	d.hal.SetDutyABC(d.pendingDuty.A, d.pendingDuty.B, d.pendingDuty.C)
	return nil
}

// SetVoltage stores setpoint.
func (d *Driver) SetVoltage(v float32) error {
	d.setpoints.Voltage = v
	return nil
}

// SetCurrent stores setpoint.
func (d *Driver) SetCurrent(a float32) error {
	d.setpoints.Current = a
	return nil
}

// SetVelocity stores setpoint.
func (d *Driver) SetVelocity(radPerSec float32) error {
	d.setpoints.Velocity = radPerSec
	return nil
}

// SetPosition stores setpoint; position control is out of scope for this
// current-loop-driven FOC pipeline (spec.md §1 Non-goals), kept for API
// symmetry with the Driver interface.
func (d *Driver) SetPosition(rad float32) error {
	d.setpoints.Position = rad
	return nil
}

// SetTorque stores setpoint.
func (d *Driver) SetTorque(nm float32) error {
	d.setpoints.Torque = nm
	return nil
}
