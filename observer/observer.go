// Package observer implements the sensorless back-EMF + PLL rotor
// position/speed observer used by FOC when no encoder is present.
package observer

import (
	"github.com/embeddedgo/motorctl"
	"github.com/embeddedgo/motorctl/mathutil"
	"github.com/embeddedgo/motorctl/pll"
)

// minSignal is the back-EMF magnitude below which the observer has
// insufficient signal to update and freezes its outputs (spec.md §4.F).
const minSignal = 0.01

// epsilon avoids a divide-by-zero in the normalized cross-product error.
const epsilon = 1e-6

// Config tunes an Observer.
type Config struct {
	PhaseResistance float32
	PLL             pll.Config
}

// Observer estimates rotor angle and speed from stationary-frame voltages
// and currents using the motor's voltage equation (di/dt term omitted at
// this design level, per spec.md §4.F) feeding a PLL.
type Observer struct {
	cfg *Config
	pll *pll.Controller

	eAlphaEst float32
	eBetaEst  float32
	magnitude float32
	updates   uint32

	isInitialized bool
}

// New creates an Observer bound to cfg. cfg must outlive the Observer.
func New(cfg *Config) *Observer {
	return &Observer{cfg: cfg, pll: pll.New(&cfg.PLL)}
}

// Init resets the observer and its internal PLL to a known state.
func (o *Observer) Init() {
	o.pll.Reset()
	o.eAlphaEst = 0
	o.eBetaEst = 0
	o.magnitude = 0
	o.updates = 0
	o.isInitialized = true
}

// Update computes back-EMF from the stationary-frame voltage equation,
// forms a normalized cross-product phase error against the current angle
// estimate, and feeds it to the PLL. Returns the updated (theta, omega).
func (o *Observer) Update(vAlpha, vBeta, iAlpha, iBeta, dt float32) (theta, omega float32, err error) {
	if !o.isInitialized {
		return 0, 0, motorctl.ErrUninitialized
	}
	if dt <= 0 {
		return 0, 0, motorctl.ErrInvalidArgs
	}

	eAlpha := vAlpha - o.cfg.PhaseResistance*iAlpha
	eBeta := vBeta - o.cfg.PhaseResistance*iBeta
	mag := mathutil.Sqrt(eAlpha*eAlpha + eBeta*eBeta)
	o.magnitude = mag

	if mag < minSignal {
		// Insufficient signal: freeze outputs at the current PLL state.
		return o.pll.Theta(), o.pll.Omega(), nil
	}

	thetaHat := o.pll.Theta()
	sinT, cosT := mathutil.FastSinCos(thetaHat)
	eAlphaHat := -mag * sinT
	eBetaHat := mag * cosT

	o.eAlphaEst = eAlphaHat
	o.eBetaEst = eBetaHat

	phaseErr := (eAlpha*eBetaHat - eBeta*eAlphaHat) / (mag*mag + epsilon)

	o.updates++
	theta, omega = o.pll.Update(phaseErr, dt)
	return theta, omega, nil
}

// Magnitude returns the most recent back-EMF magnitude estimate.
func (o *Observer) Magnitude() float32 { return o.magnitude }

// Updates returns the number of Update calls since Init that fed the PLL;
// calls frozen by a back-EMF magnitude below minSignal are not counted.
func (o *Observer) Updates() uint32 { return o.updates }

// IsConverged reports whether the internal PLL considers itself locked.
func (o *Observer) IsConverged() bool { return o.pll.IsConverged() }
