// Package svpwm synthesizes center-aligned three-phase PWM duty cycles
// from an electrical angle and modulation index, using the standard
// six-sector space-vector technique.
package svpwm

import (
	"github.com/embeddedgo/motorctl"
	"github.com/embeddedgo/motorctl/mathutil"
)

const sectorWidth = mathutil.TwoPi / 6 // π/3
const twoOverSqrt3 = 1.1547005

// DutyABC is a center-aligned per-phase duty triple, each in [0,1].
type DutyABC struct {
	A, B, C float32
}

// Generate computes the per-phase duty cycles for electrical angle thetaE
// (normalized internally) and modulation index m (clamped to [0,1]), per
// the sector table in spec.md §4.D.
func Generate(thetaE, m float32) (DutyABC, error) {
	m = mathutil.Clamp(m, 0, 1)
	theta := mathutil.NormalizeAngle(thetaE)

	sector := int(theta / sectorWidth)
	if sector < 0 || sector > 5 {
		return DutyABC{}, motorctl.ErrInternal
	}

	thetaPrime := theta - float32(sector)*sectorWidth

	sinA, _ := mathutil.FastSinCos(sectorWidth - thetaPrime)
	sinB, _ := mathutil.FastSinCos(thetaPrime)

	t1 := m * sinA * twoOverSqrt3
	t2 := m * sinB * twoOverSqrt3
	t0 := 1 - t1 - t2
	half := t0 / 2

	var duty DutyABC
	switch sector {
	case 0:
		duty = DutyABC{A: t1 + t2 + half, B: t2 + half, C: half}
	case 1:
		duty = DutyABC{A: t1 + half, B: t1 + t2 + half, C: half}
	case 2:
		duty = DutyABC{A: half, B: t1 + t2 + half, C: t2 + half}
	case 3:
		duty = DutyABC{A: half, B: t1 + half, C: t1 + t2 + half}
	case 4:
		duty = DutyABC{A: t2 + half, B: half, C: t1 + t2 + half}
	case 5:
		duty = DutyABC{A: t1 + t2 + half, B: half, C: t1 + half}
	default:
		return DutyABC{}, motorctl.ErrInternal
	}

	// Near full modulation mid-sector T1+T2 exceeds 1; clamp each duty so
	// the result stays within [0,1].
	duty.A = mathutil.Clamp(duty.A, 0, 1)
	duty.B = mathutil.Clamp(duty.B, 0, 1)
	duty.C = mathutil.Clamp(duty.C, 0, 1)
	return duty, nil
}
