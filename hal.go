package motorctl

// This file declares the hardware-abstraction-layer contract consumed by
// every driver in this module. The HAL itself (PWM/ADC/GPIO/encoder/Hall/
// timebase silicon drivers) is explicitly out of scope (spec.md §1); only
// the interfaces are owned here, mirroring how tinygo.org/x/drivers'
// sharpmem.Device depends on drivers.SPI and a Pin interface rather than
// any concrete bus implementation.

// PWM drives the six inverter half-bridges.
type PWM interface {
	// SetDuty sets phase's duty cycle as a raw integer 0..(2^resolution-1).
	SetDuty(phase Phase, dutyRaw uint16)
	// SetDutyABC sets all three phases at once as floats in [0,1], the
	// entrypoint FOC's SVPWM output uses.
	SetDutyABC(a, b, c float32)
	// Resolution reports the configured PWM bit resolution, used to scale
	// a float32 duty in [0,1] to the raw integer SetDuty expects.
	Resolution() uint8
}

// GPIO switches the half-bridges between driven-high, driven-low and
// floating, and reports the 3-bit Hall code.
type GPIO interface {
	SetPhaseHigh(phase Phase)
	SetPhaseLow(phase Phase)
	SetPhaseFloat(phase Phase)
	// HallState returns the packed 3-bit Hall code: HallA<<2 | HallB<<1 | HallC.
	HallState() uint8
}

// ADC provides the per-tick electrical snapshot. StartConversion blocks
// until fresh samples are ready, matching the spec's "blocking ADC
// conversion" requirement (spec.md §4.G/H update_state).
type ADC interface {
	StartConversion()
	PhaseVoltages() [3]float32
	PhaseCurrents() [3]float32
	DCVoltage() float32
	Temperature() float32
}

// Encoder is the optional mechanical position/velocity sensor used by
// sensored FOC. A HAL with no encoder attached returns nil from
// HAL.Encoder(), and drivers fall back to the sensorless observer.
type Encoder interface {
	Position() float32 // mechanical angle, radians
	Velocity() float32 // mechanical velocity, rad/s
}

// Clock is the monotonic microsecond timebase. DelayUS/DelayMS block the
// caller, matching the spec's suspension-point model (spec.md §5): the
// only blocking calls in the core are the startup sequence's alignment
// and open-loop step delays.
type Clock interface {
	Micros() uint32
	DelayUS(us uint32)
	DelayMS(ms uint32)
}

// HAL bundles every hardware capability a driver may need. Encoder may be
// nil; the FOC driver then wires in its sensorless observer at Init, and
// the six-step drivers never consult it.
type HAL interface {
	PWM
	GPIO
	ADC
	Clock
	Encoder() Encoder
}

// ElapsedMicros computes now-last with unsigned wrap-around subtraction,
// per spec.md §5's ordering guarantee: "if the timebase overflows, the
// implementation must compute dt via unsigned wrap-around subtraction."
func ElapsedMicros(now, last uint32) uint32 {
	return now - last
}
