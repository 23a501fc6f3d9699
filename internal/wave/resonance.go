package wave

import (
	"math"

	"github.com/matsen/wavefield/internal/quaternion"
)

// Kernel term weights. These are frozen heuristic choices; search ranking
// depends on their exact values, so they must not be tuned.
const (
	weightOrientation  = 0.50
	weightFrequency    = 0.15
	weightPhase        = 0.15
	weightEnergy       = 0.10
	weightInterference = 0.10
)

// ResonanceOptions configures the kernel. The zero value is not useful;
// start from DefaultResonanceOptions.
type ResonanceOptions struct {
	// Interference enables the fifth kernel term, derived from the Hamilton
	// product of the two orientations.
	Interference bool
}

// DefaultResonanceOptions enables every kernel term.
func DefaultResonanceOptions() ResonanceOptions {
	return ResonanceOptions{Interference: true}
}

// Resonance scores how strongly two patterns resonate, in [0, 1].
//
// The orientation, frequency, phase and energy terms are symmetric in their
// arguments. The interference term is built from Multiply(a.Orientation,
// b.Orientation) in that fixed order, because the Hamilton product is not
// commutative; callers pass the stored pattern as a and the query as b so
// store-time and query-time scoring agree. (For unit orientations the product
// norm equals the product of norms, so the term's value is still symmetric.)
//
// Resonance(a, a) is not guaranteed to be exactly 1; this is a heuristic
// blend, not a metric.
func Resonance(a, b *Pattern, opts ResonanceOptions) float64 {
	orientationScore := (quaternion.Dot(a.Orientation, b.Orientation) + 1) / 2
	frequencyScore := 1 / (1 + math.Abs(a.Frequency-b.Frequency))
	phaseScore := (1 + math.Cos(wrapPhase(a.Phase-b.Phase))) / 2

	minEnergy := math.Min(a.Energy, b.Energy)
	maxEnergy := math.Max(a.Energy, b.Energy)
	energyScore := math.Sqrt(minEnergy / (maxEnergy + epsilon))

	score := weightOrientation*orientationScore +
		weightFrequency*frequencyScore +
		weightPhase*phaseScore +
		weightEnergy*energyScore

	if opts.Interference {
		interference := quaternion.Multiply(a.Orientation, b.Orientation)
		score += weightInterference * math.Min(1, interference.Norm()/2)
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
