// Package pll implements the discrete phase-locked loop used both
// standalone and as the core of the sensorless back-EMF position
// observer: a PI loop that locks a local phase/frequency estimate onto an
// external phase-error signal.
package pll

import "github.com/embeddedgo/motorctl/mathutil"

// convergedThreshold is the |error| below which the loop is considered
// locked (spec.md §4.E).
const convergedThreshold = 0.05

const integralClamp = 50

// Config tunes a Controller.
type Config struct {
	Kp, Ki    float32
	MaxOmega  float32
	FilterEnabled bool
	FilterAlpha  float32 // EMA coefficient applied to theta and omega
}

// Controller holds one PLL instance's running state.
type Controller struct {
	cfg *Config

	integral    float32
	theta       float32
	omega       float32
	peakError   float32
	isConverged bool
}

// New creates a Controller bound to cfg.
func New(cfg *Config) *Controller {
	return &Controller{cfg: cfg}
}

// Reset clears integrator, angle and speed estimates.
func (c *Controller) Reset() {
	c.integral = 0
	c.theta = 0
	c.omega = 0
	c.peakError = 0
	c.isConverged = false
}

// Update ingests one phase-error sample and elapsed time dt (seconds),
// returning the updated (theta, omega) estimate (spec.md §4.E).
func (c *Controller) Update(phaseError, dt float32) (theta, omega float32) {
	e := mathutil.Clamp(phaseError, -mathutil.TwoPi, mathutil.TwoPi)

	c.integral = mathutil.Clamp(c.integral+c.cfg.Ki*e*dt, -integralClamp, integralClamp)
	omegaRaw := c.cfg.Kp*e + c.integral
	newOmega := mathutil.Clamp(omegaRaw, -c.cfg.MaxOmega, c.cfg.MaxOmega)

	newTheta := mathutil.NormalizeAngle(c.theta + newOmega*dt)

	if c.cfg.FilterEnabled {
		a := c.cfg.FilterAlpha
		newTheta = mathutil.NormalizeAngle(a*newTheta + (1-a)*c.theta)
		newOmega = a*newOmega + (1-a)*c.omega
	}

	c.theta = newTheta
	c.omega = newOmega

	absErr := mathutil.Abs(e)
	if absErr > c.peakError {
		c.peakError = absErr
	}
	c.isConverged = absErr < convergedThreshold

	return c.theta, c.omega
}

// Theta returns the current angle estimate without advancing the loop.
func (c *Controller) Theta() float32 { return c.theta }

// Omega returns the current speed estimate without advancing the loop.
func (c *Controller) Omega() float32 { return c.omega }

// IsConverged reports whether the last Update's error was within the
// convergence threshold.
func (c *Controller) IsConverged() bool { return c.isConverged }

// PeakError returns the largest |phase error| observed since Reset.
func (c *Controller) PeakError() float32 { return c.peakError }
