// Package pid implements the discrete PI(D) regulator shared by every
// control loop in motorctl: trapezoidal integral, EMA-filtered
// derivative, and back-calculation anti-windup.
package pid

import "github.com/embeddedgo/motorctl/mathutil"

// Config is a PID tuning. Kd and DerivativeAlpha are optional — leaving
// Kd at 0 disables the derivative term, and DerivativeAlpha=1 disables
// derivative filtering.
type Config struct {
	Kp, Ki, Kd      float32
	OutputMin       float32
	OutputMax       float32
	DerivativeAlpha float32
}

// Controller is one PID instance. It holds a pointer to its Config rather
// than copying it, matching the spec's "configuration reference" driver
// state requirement (spec.md §3) — tunings can be adjusted live without
// reconstructing the controller.
type Controller struct {
	cfg *Config

	integral      float32
	prevError     float32
	prevDeriv     float32
	isInitialized bool
}

// New creates a Controller bound to cfg. cfg must outlive the Controller.
func New(cfg *Config) *Controller {
	return &Controller{cfg: cfg}
}

// Reset clears the integral and error history and marks the controller
// initialized; Update returns 0 until Reset has been called at least once.
func (c *Controller) Reset() {
	c.integral = 0
	c.prevError = 0
	c.prevDeriv = 0
	c.isInitialized = true
}

// Update computes one PID output for the given setpoint/measurement pair
// and elapsed time dt (seconds). An uninitialized controller silently
// returns 0, per spec.md §4.B.
func (c *Controller) Update(setpoint, measurement, dt float32) float32 {
	if !c.isInitialized {
		return 0
	}

	e := setpoint - measurement

	// Trapezoidal integral.
	c.integral += 0.5 * dt * (e + c.prevError)

	// Derivative only when dt>0 and we have a previous error to diff
	// against; then EMA-filter the raw derivative.
	var deriv float32
	if dt > 0 && c.prevError != 0 {
		raw := (e - c.prevError) / dt
		alpha := c.cfg.DerivativeAlpha
		deriv = alpha*raw + (1-alpha)*c.prevDeriv
	}
	c.prevDeriv = deriv
	c.prevError = e

	u := c.cfg.Kp*e + c.cfg.Ki*c.integral + c.cfg.Kd*deriv

	// Back-calculation anti-windup.
	if u > c.cfg.OutputMax {
		if c.cfg.Ki != 0 {
			c.integral -= (u - c.cfg.OutputMax) / c.cfg.Ki
		}
		u = c.cfg.OutputMax
	} else if u < c.cfg.OutputMin {
		if c.cfg.Ki != 0 {
			c.integral -= (u - c.cfg.OutputMin) / c.cfg.Ki
		}
		u = c.cfg.OutputMin
	}

	return mathutil.Clamp(u, c.cfg.OutputMin, c.cfg.OutputMax)
}

// Integral returns the current integral accumulator, mainly for tests.
func (c *Controller) Integral() float32 {
	return c.integral
}

// IsInitialized reports whether Reset has been called.
func (c *Controller) IsInitialized() bool {
	return c.isInitialized
}
