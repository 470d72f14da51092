// Package simhal is a plant-side HAL simulation for tests and examples.
// It does not model motor electromagnetics (that is explicitly out of
// scope, spec.md §1); instead it lets a test directly set the electrical
// state a real ADC would have reported and records what the driver
// commands, in the style of sharpmem_test.go's mockBus/mockPin pair.
// Grounded on original_source/hal/src/hal_sim.c's HAL shim shape.
package simhal

import "github.com/embeddedgo/motorctl"

// HAL is an in-memory motorctl.HAL implementation driven entirely by
// field assignment: tests set Voltages/Currents/DCVoltage_/Temperature_/Hall
// before a tick and read back Duty/DutyABC/PhaseState after it. A fault
// condition (overvoltage, overcurrent) is triggered the same way, by
// setting an out-of-range Voltages/Currents entry directly, rather than
// through a separate fault-kind enum — there is exactly one way to drive
// each condition, so no dead or duplicate arm can exist.
type HAL struct {
	// Plant-side state a test sets before calling a driver's UpdateState.
	Voltages    [3]float32
	Currents    [3]float32
	DCVoltage_  float32
	Temperature_ float32
	Hall        uint8
	Enc         *Encoder // nil means sensorless

	// Observed state a test reads after a tick.
	Duty       [3]uint16
	DutyABC    [3]float32
	PhaseState [3]PinState

	resolution uint8
	nowUS      uint32

	conversions int
}

// PinState is the half-bridge state simhal.HAL records per phase.
type PinState uint8

const (
	PinFloat PinState = iota
	PinHigh
	PinLow
)

// Encoder is a settable mock motorctl.Encoder.
type Encoder struct {
	Pos float32
	Vel float32
}

func (e *Encoder) Position() float32 { return e.Pos }
func (e *Encoder) Velocity() float32 { return e.Vel }

// New constructs a HAL with the given PWM resolution in bits.
func New(resolution uint8) *HAL {
	return &HAL{resolution: resolution}
}

// SetDuty records the raw duty commanded for phase.
func (h *HAL) SetDuty(phase motorctl.Phase, dutyRaw uint16) {
	h.Duty[phase] = dutyRaw
}

// SetDutyABC records the float duty triple commanded for all phases (the
// FOC/SVPWM entrypoint).
func (h *HAL) SetDutyABC(a, b, c float32) {
	h.DutyABC = [3]float32{a, b, c}
}

// Resolution reports the configured PWM bit resolution.
func (h *HAL) Resolution() uint8 { return h.resolution }

// SetPhaseHigh records phase as driven high.
func (h *HAL) SetPhaseHigh(phase motorctl.Phase) { h.PhaseState[phase] = PinHigh }

// SetPhaseLow records phase as driven low.
func (h *HAL) SetPhaseLow(phase motorctl.Phase) { h.PhaseState[phase] = PinLow }

// SetPhaseFloat records phase as floating.
func (h *HAL) SetPhaseFloat(phase motorctl.Phase) { h.PhaseState[phase] = PinFloat }

// HallState returns the test-set Hall code.
func (h *HAL) HallState() uint8 { return h.Hall }

// StartConversion counts conversions; simhal has no plant model to step,
// since plant simulation is out of scope (spec.md §1) — the test sets
// Voltages/Currents directly before each tick.
func (h *HAL) StartConversion() { h.conversions++ }

// Conversions reports how many StartConversion calls have been made.
func (h *HAL) Conversions() int { return h.conversions }

func (h *HAL) PhaseVoltages() [3]float32 { return h.Voltages }
func (h *HAL) PhaseCurrents() [3]float32 { return h.Currents }
func (h *HAL) DCVoltage() float32        { return h.DCVoltage_ }
func (h *HAL) Temperature() float32      { return h.Temperature_ }

// Encoder returns the configured mock encoder, or nil for the sensorless
// path.
func (h *HAL) Encoder() motorctl.Encoder {
	if h.Enc == nil {
		return nil
	}
	return h.Enc
}

// Micros returns the manually-advanced virtual clock, per SPEC_FULL.md
// §5: a deterministic counter rather than a wall-clock read, so tests
// never depend on real elapsed time.
func (h *HAL) Micros() uint32 { return h.nowUS }

// AdvanceUS moves the virtual clock forward by us microseconds.
func (h *HAL) AdvanceUS(us uint32) { h.nowUS += us }

// DelayUS advances the virtual clock by us instead of blocking, since the
// test harness must stay deterministic (SPEC_FULL.md §5).
func (h *HAL) DelayUS(us uint32) { h.AdvanceUS(us) }

// DelayMS advances the virtual clock by ms milliseconds.
func (h *HAL) DelayMS(ms uint32) { h.AdvanceUS(ms * 1000) }
