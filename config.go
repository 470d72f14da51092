package motorctl

import "github.com/embeddedgo/motorctl/pll"

// MotorType names the physical machine being driven.
type MotorType uint8

const (
	TypeBLDC MotorType = iota
	TypePMSM
	TypeStepper
)

// ControlMethod selects which driver variant the façade constructs.
type ControlMethod uint8

const (
	MethodSixStep ControlMethod = iota
	MethodFOC
	MethodSensorless
	MethodVF
	MethodDTC
)

// ControlMode selects which Setpoints field is authoritative.
type ControlMode uint8

const (
	ModeVoltage ControlMode = iota
	ModeCurrent
	ModeVelocity
	ModePosition
	ModeTorque
)

// PIDGains is the tuning for one pid.Controller instance, held here so
// MotorConfig can describe every regulator without importing the pid
// package's Config type; each driver copies these fields into a
// pid.Config at Init.
type PIDGains struct {
	Kp, Ki, Kd     float32
	OutputMin      float32
	OutputMax      float32
	DerivativeAlpha float32 // EMA coefficient for the filtered derivative; 1 disables filtering
}

// ElectricalParams are the motor's physical constants.
type ElectricalParams struct {
	PolePairs       uint8
	PhaseResistance float32 // ohms
	PhaseInductance float32 // henries
	TorqueConstant  float32 // Kt, N*m/A
	MagnetFlux      float32 // Wb, permanent-magnet flux linkage
}

// SafetyLimits are enforced every tick before any actuation (spec.md §3).
type SafetyLimits struct {
	MaxCurrent      float32
	MaxVoltage      float32
	MaxVelocity     float32
	MinStartupSpeed float32
}

// RegulatorConfig holds every PID tuning a driver might use. Only the
// fields relevant to the selected ControlMethod/ControlMode are consulted.
type RegulatorConfig struct {
	Current  PIDGains
	Voltage  PIDGains
	Velocity PIDGains
	CurrentD PIDGains // FOC d-axis
	CurrentQ PIDGains // FOC q-axis
}

// PWMConfig configures the HAL's PWM peripheral.
type PWMConfig struct {
	FrequencyHz   uint32
	DeadTimeNS    uint32
	Resolution    uint8 // bits, 8..16
	Complementary bool
}

// ADCConfig configures the HAL's ADC peripheral.
type ADCConfig struct {
	SampleRateHz   uint32
	Resolution     uint8 // bits, 8..16
	VRef           float32
	CurrentGain    float32
	VoltageGain    float32
}

// HardwareConfig is consumed by the HAL at Init, not interpreted by the
// control core beyond validation.
type HardwareConfig struct {
	PWM PWMConfig
	ADC ADCConfig
}

// FieldWeakeningConfig configures FOC's field-weakening reference. Tuning
// strategy beyond accepting this configured reference is out of scope
// (spec.md §1 Non-goals).
type FieldWeakeningConfig struct {
	Enabled  bool
	IDRefMax float32 // most negative allowed i_d reference
}

// StartupConfig tunes the six-step sensorless open-loop startup sequence
// (spec.md §4.G).
type StartupConfig struct {
	AlignTimeMS      uint32  // default 500
	AlignDuty        float32 // default 0.2
	OpenLoopSteps    int     // default 12
	PeriodMinUS      uint32  // fastest allowed period, default 5000 (see spec.md §9 naming note)
	PeriodMaxUS      uint32  // slowest starting period, default 50000
	StallCeilingMS   uint32  // default 500
}

// DefaultStartupConfig returns the spec's literal defaults.
func DefaultStartupConfig() StartupConfig {
	return StartupConfig{
		AlignTimeMS:    500,
		AlignDuty:      0.2,
		OpenLoopSteps:  12,
		PeriodMinUS:    5000,
		PeriodMaxUS:    50000,
		StallCeilingMS: 500,
	}
}

// DefaultFOCCurrentGains returns the spec's literal d/q current-PID
// defaults (spec.md §4.I: "Kp=2.0, Ki=500.0, Kd=0.0, output ±24 V,
// derivative α=0.1"), identical for both axes.
func DefaultFOCCurrentGains() PIDGains {
	return PIDGains{
		Kp: 2.0, Ki: 500.0, Kd: 0.0,
		OutputMin: -24, OutputMax: 24,
		DerivativeAlpha: 0.1,
	}
}

// MotorConfig is immutable for the lifetime of a Motor.
type MotorConfig struct {
	Type            MotorType
	Method          ControlMethod
	Mode            ControlMode
	Electrical      ElectricalParams
	Limits          SafetyLimits
	Regulators      RegulatorConfig
	Hardware        HardwareConfig
	Startup         StartupConfig
	FieldWeakening  FieldWeakeningConfig

	// ZeroCrossing tunes the sensorless commutator's back-EMF detector.
	ZeroCrossingThreshold float32
	ZeroCrossingHysteresis float32
	BackEMFFilterAlpha    float32

	// Observer tunes the PLL inside the sensorless FOC back-EMF observer,
	// wired in when the HAL reports no encoder (spec.md §9 driver-kind
	// dispatch note, supplemented per SPEC_FULL.md §4.I).
	Observer pll.Config
}

// Validate checks every field Init depends on before any HAL call is
// made, returning ErrInvalidArgs on the first violation. Grounded on
// original_source/core/inc/motor.h and the itohio/EasyRobot
// validateConfig pattern (other_examples/49854307).
func (c *MotorConfig) Validate() error {
	if c.Electrical.PolePairs < 1 {
		return ErrInvalidArgs
	}
	if c.Method == MethodFOC {
		if c.Electrical.PhaseResistance <= 0 || c.Electrical.PhaseInductance <= 0 {
			return ErrInvalidArgs
		}
	}
	if c.Limits.MaxCurrent <= 0 || c.Limits.MaxVoltage <= 0 || c.Limits.MaxVelocity <= 0 {
		return ErrInvalidArgs
	}
	if c.Limits.MinStartupSpeed < 0 {
		return ErrInvalidArgs
	}
	if c.Hardware.PWM.Resolution < 8 || c.Hardware.PWM.Resolution > 16 {
		return ErrInvalidArgs
	}
	if c.Hardware.ADC.Resolution < 8 || c.Hardware.ADC.Resolution > 16 {
		return ErrInvalidArgs
	}
	return nil
}
