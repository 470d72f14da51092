// Package sixstepsensored implements the six-step trapezoidal BLDC
// commutator that reads rotor position directly from Hall-effect sensors,
// the sensored twin of sixstepsensorless (spec.md §4.H).
package sixstepsensored

import (
	"github.com/embeddedgo/motorctl"
	"github.com/embeddedgo/motorctl/pid"
)

// hallForward maps the packed 3-bit Hall code HallA<<2|HallB<<1|HallC to
// its commutation step in the forward direction, per spec.md §4.H. Codes
// not present in this map (0b000, 0b111) are illegal.
var hallForward = map[uint8]int{
	0b011: 0,
	0b001: 1,
	0b101: 2,
	0b100: 3,
	0b110: 4,
	0b010: 5,
}

// stepFromHall translates a Hall code to a commutation step for the given
// direction, or reports ok=false for an illegal code (spec.md §4.H:
// "000, 111 are illegal and cause transition to Error with HalError").
// Reverse direction is a cyclic shift of the forward map by -1.
func stepFromHall(hall uint8, dir motorctl.Direction) (step int, ok bool) {
	step, ok = hallForward[hall]
	if !ok {
		return 0, false
	}
	if dir == motorctl.Reverse {
		step = (step + 5) % 6
	}
	return step, true
}

// Driver is the sensored six-step commutator's private state (spec.md §3:
// "Sensored variants additionally hold last Hall-state byte").
type Driver struct {
	cfg *motorctl.MotorConfig
	hal motorctl.HAL

	mode      motorctl.MotorMode
	step      int
	direction motorctl.Direction
	pwmDuty   float32

	lastHall            uint8
	lastCommutationUS   uint32
	lastUpdateUS        uint32
	estSpeedRPM         float32
	commutationPeriodUS uint32

	currentPID  *pid.Controller
	velocityPID *pid.Controller

	state     motorctl.MotorState
	setpoints motorctl.Setpoints
}

// New constructs a Driver. Call Init before ticking it.
func New() *Driver {
	return &Driver{mode: motorctl.ModeIdle}
}

// Init aligns the rotor, latches the initial Hall-derived step, and
// leaves the driver Running (or Error on an illegal initial Hall code),
// per spec.md §4.H's startup sequence.
func (d *Driver) Init(cfg *motorctl.MotorConfig, hal motorctl.HAL) error {
	if cfg == nil || hal == nil {
		return motorctl.ErrInvalidArgs
	}
	d.cfg = cfg
	d.hal = hal
	d.direction = motorctl.Forward

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

	d.mode = motorctl.ModeRunning
	return nil
}

// runStartup aligns at step 0 for the configured alignment time, then
// reads and latches the initial Hall-derived step (spec.md §4.H).
func (d *Driver) runStartup() error {
	sc := d.cfg.Startup

	d.mode = motorctl.ModeAligning
	d.step = 0
	d.pwmDuty = sc.AlignDuty
	motorctl.DriveStep(d.hal, d.step)
	d.hal.DelayMS(sc.AlignTimeMS)

	hall := d.hal.HallState()
	step, ok := stepFromHall(hall, d.direction)
	if !ok {
		return motorctl.ErrHal
	}
	d.lastHall = hall
	d.step = step

	now := d.hal.Micros()
	d.lastCommutationUS = now
	d.lastUpdateUS = now

	return nil
}

func clampDuty(d float32) float32 {
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}

// periodToRPM converts a Hall-edge-to-edge period in microseconds to
// mechanical RPM: speed = 60*(1e6/(period*6)), per spec.md §4.H.
func periodToRPM(periodUS uint32) float32 {
	if periodUS == 0 {
		return 0
	}
	return 60 * (1e6 / (float32(periodUS) * 6))
}

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
