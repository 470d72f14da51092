package sixstepsensorless

import "github.com/embeddedgo/motorctl"

// UpdateState samples the HAL, safety-checks every phase, updates the
// back-EMF filters, and recomputes the commanded duty from the PID
// selected by the configured control mode (spec.md §4.G).
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

	floatPhase := motorctl.FloatingPhase(d.step)
	raw := voltages[floatPhase]
	d.rawBackEMF[floatPhase] = raw
	d.filteredBackEMF[floatPhase] = d.emaAlpha*raw + (1-d.emaAlpha)*d.filteredBackEMF[floatPhase]

	d.pwmDuty = clampDuty(d.computeDuty(currents, dt))
	return nil
}

// computeDuty evaluates the PID selected by the configured control mode.
func (d *Driver) computeDuty(currents [3]float32, dt float32) float32 {
	switch d.cfg.Mode {
	case motorctl.ModeCurrent, motorctl.ModeTorque:
		conducting := motorctl.HighPhase(d.step)
		return d.currentPID.Update(d.setpoints.Current, currents[conducting], dt)
	case motorctl.ModeVelocity:
		return d.velocityPID.Update(d.setpoints.Velocity, d.estSpeedRPM, dt)
	case motorctl.ModeVoltage:
		if d.cfg.Limits.MaxVoltage == 0 {
			return 0
		}
		return d.setpoints.Voltage / d.cfg.Limits.MaxVoltage
	default:
		return d.pwmDuty
	}
}

// fault latches Error mode, floats every phase and zeroes duty, then
// returns err (spec.md §7).
func (d *Driver) fault(err error) error {
	d.mode = motorctl.ModeError
	motorctl.FloatAll(d.hal)
	d.hal.SetDutyABC(0, 0, 0)
	d.pwmDuty = 0
	return err
}

// Commutate samples the filtered back-EMF on the floating phase and,
// once a zero crossing is detected past the noise-rejection gate,
// advances step and updates the speed estimate (spec.md §4.G).
func (d *Driver) Commutate() error {
	if d.mode != motorctl.ModeRunning {
		return nil
	}

	now := d.hal.Micros()
	if motorctl.ElapsedMicros(now, d.lastZCUS) < minCommutationPeriodUS {
		return nil
	}

	floatPhase := motorctl.FloatingPhase(d.step)
	filtered := d.filteredBackEMF[floatPhase]
	th := d.zcThreshold + d.zcHysteresis

	var crossed bool
	switch d.zcExpected {
	case motorctl.ZCRising:
		crossed = filtered > th
	case motorctl.ZCFalling:
		crossed = filtered < -th
	}
	if !crossed {
		return nil
	}

	d.commutationPeriodUS = motorctl.ElapsedMicros(now, d.lastZCUS)
	d.estSpeedRPM = periodToRPM(d.commutationPeriodUS)
	d.step = motorctl.NextStep(d.step, d.direction)
	d.lastZCUS = now
	d.lastCommutationUS = now
	d.zcExpected = d.zcExpected.Toggle()
	return nil
}

// UpdatePWM applies the driver's current step/duty to the HAL, or floats
// every phase at zero duty when latched in Error (spec.md §7).
func (d *Driver) UpdatePWM() error {
	if d.mode == motorctl.ModeError {
		motorctl.FloatAll(d.hal)
		d.hal.SetDutyABC(0, 0, 0)
		return nil
	}

	motorctl.DriveStep(d.hal, d.step)
	maxDuty := uint16((1 << d.cfg.Hardware.PWM.Resolution) - 1)
	dutyRaw := uint16(clampDuty(d.pwmDuty) * float32(maxDuty))
	high := motorctl.HighPhase(d.step)
	d.hal.SetDuty(high, dutyRaw)
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

// SetPosition is not meaningful for an open-loop six-step commutator;
// stored for API symmetry but otherwise unused.
func (d *Driver) SetPosition(rad float32) error {
	d.setpoints.Position = rad
	return nil
}

// SetTorque stores setpoint.
func (d *Driver) SetTorque(nm float32) error {
	d.setpoints.Torque = nm
	return nil
}
