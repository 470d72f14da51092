package motorctl

// commutationTable is the authoritative six-step pattern (spec.md §6):
// each row names the phase driven high and the phase driven low; the
// third phase floats. This is the unified six-step driver's table
// (0:A+,B- 1:A+,C- 2:B+,C- 3:B+,A- 4:C+,A- 5:C+,B-), picked as the single
// canonical ordering per spec.md §9 — the floating-phase map is derived
// from it below rather than hand-maintained, which structurally rules out
// the BLDC-only-driver-vs-unified-driver inconsistency the spec warns
// about.
var commutationTable = [6]struct{ High, Low Phase }{
	{PhaseA, PhaseB},
	{PhaseA, PhaseC},
	{PhaseB, PhaseC},
	{PhaseB, PhaseA},
	{PhaseC, PhaseA},
	{PhaseC, PhaseB},
}

// FloatingPhase returns the phase left undriven at commutation step s,
// the phase equal to neither the row's High nor Low (spec.md §4.G,
// invariant 2 of §8).
func FloatingPhase(step int) Phase {
	row := commutationTable[step%6]
	for _, p := range [3]Phase{PhaseA, PhaseB, PhaseC} {
		if p != row.High && p != row.Low {
			return p
		}
	}
	return PhaseA // unreachable: every row drives exactly two distinct phases
}

// HighPhase returns the phase driven high at commutation step s — the
// phase PWM duty is applied to.
func HighPhase(step int) Phase {
	return commutationTable[step%6].High
}

// LowPhase returns the phase driven low (hard, unmodulated) at
// commutation step s.
func LowPhase(step int) Phase {
	return commutationTable[step%6].Low
}

// DriveStep commands gpio into the pattern for commutation step s: one
// phase high, one low, one floating.
func DriveStep(gpio GPIO, step int) {
	row := commutationTable[step%6]
	gpio.SetPhaseHigh(row.High)
	gpio.SetPhaseLow(row.Low)
	gpio.SetPhaseFloat(FloatingPhase(step))
}

// FloatAll forces every phase to float, the fault/deinit posture.
func FloatAll(gpio GPIO) {
	gpio.SetPhaseFloat(PhaseA)
	gpio.SetPhaseFloat(PhaseB)
	gpio.SetPhaseFloat(PhaseC)
}

// NextStep advances step by one commutation in the commanded direction:
// forward adds 1, reverse adds 5 (i.e. -1 mod 6), per spec.md §4.G.
func NextStep(step int, dir Direction) int {
	if dir == Forward {
		return (step + 1) % 6
	}
	return (step + 5) % 6
}
