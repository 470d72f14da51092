package motorctl

// Driver is the capability set every control-method implementation
// provides: six-step sensorless, six-step sensored, and FOC. Spec.md §9
// asks for "a tagged sum over driver kinds or a single dyn-dispatched
// capability trait"; an interface is exactly that trait, and it keeps
// each driver's private state owned exclusively by that driver (no
// aliasing across drivers, no global singleton per variant).
type Driver interface {
	Init(cfg *MotorConfig, hal HAL) error
	Deinit() error

	UpdateState() error
	Commutate() error
	UpdatePWM() error

	SetVoltage(v float32) error
	SetCurrent(a float32) error
	SetVelocity(radPerSec float32) error
	SetPosition(rad float32) error
	SetTorque(nm float32) error

	Mode() MotorMode
	State() MotorState
}

// Motor is the façade: it owns exactly one Driver and drives the
// three-phase per-tick sequence (spec.md §4.J). The façade holds no
// hardware itself — both the HAL and the driver are supplied at
// construction and owned for the lifetime of the caller's control loop.
type Motor struct {
	cfg    *MotorConfig
	driver Driver
}

// NewMotor validates cfg and initializes the caller-supplied driver
// against hal. It does not pick or construct a driver from cfg.Method; the
// caller passes the variant in. The driver is the only writer of its own
// private state; Motor never reaches into it.
func NewMotor(cfg *MotorConfig, hal HAL, driver Driver) (*Motor, error) {
	if cfg == nil || hal == nil || driver == nil {
		return nil, ErrInvalidArgs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := driver.Init(cfg, hal); err != nil {
		return nil, err
	}
	return &Motor{cfg: cfg, driver: driver}, nil
}

// Run performs one control tick: sample & validate state, compute the
// commutation decision, emit PWM, in that order. The first non-OK error
// aborts the tick and is returned immediately (spec.md §4.J).
func (m *Motor) Run() error {
	if err := m.driver.UpdateState(); err != nil {
		return err
	}
	if err := m.driver.Commutate(); err != nil {
		return err
	}
	return m.driver.UpdatePWM()
}

// Deinit forces all phases off and stops the driver. Idempotent.
func (m *Motor) Deinit() error {
	return m.driver.Deinit()
}

// Mode reports the driver's current MotorMode.
func (m *Motor) Mode() MotorMode {
	return m.driver.Mode()
}

// State returns a copy of the driver's MotorState.
func (m *Motor) State() MotorState {
	return m.driver.State()
}

// SetVoltage clamps v to the configured maximum and forwards it to the
// driver. It does not change the control mode, which stays cfg.Mode.
func (m *Motor) SetVoltage(v float32) error {
	if v > m.cfg.Limits.MaxVoltage {
		v = m.cfg.Limits.MaxVoltage
	} else if v < -m.cfg.Limits.MaxVoltage {
		v = -m.cfg.Limits.MaxVoltage
	}
	return m.driver.SetVoltage(v)
}

// SetCurrent clamps a to the configured maximum and forwards it.
func (m *Motor) SetCurrent(a float32) error {
	if a > m.cfg.Limits.MaxCurrent {
		a = m.cfg.Limits.MaxCurrent
	} else if a < -m.cfg.Limits.MaxCurrent {
		a = -m.cfg.Limits.MaxCurrent
	}
	return m.driver.SetCurrent(a)
}

// SetVelocity clamps radPerSec to the configured maximum and forwards it.
func (m *Motor) SetVelocity(radPerSec float32) error {
	if radPerSec > m.cfg.Limits.MaxVelocity {
		radPerSec = m.cfg.Limits.MaxVelocity
	} else if radPerSec < -m.cfg.Limits.MaxVelocity {
		radPerSec = -m.cfg.Limits.MaxVelocity
	}
	return m.driver.SetVelocity(radPerSec)
}

// SetPosition passes rad through unmodified: position has no configured
// maximum in the spec's data model.
func (m *Motor) SetPosition(rad float32) error {
	return m.driver.SetPosition(rad)
}

// SetTorque passes nm through unmodified, same reasoning as SetPosition.
func (m *Motor) SetTorque(nm float32) error {
	return m.driver.SetTorque(nm)
}
