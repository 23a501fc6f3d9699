package wave

import (
	"errors"
	"math"

	"github.com/matsen/wavefield/internal/quaternion"
)

// Errors returned when an embedding is rejected at the transform boundary.
var (
	ErrEmptyEmbedding     = errors.New("empty embedding")
	ErrNonFiniteEmbedding = errors.New("embedding contains non-finite values")
)

// epsilon guards divisions against zero denominators. Frozen alongside the
// kernel formulas; changing it changes search ranking.
const epsilon = 1e-10

// FromEmbedding deterministically projects an embedding vector onto a wave
// pattern. Identical input always yields identical output; the zero vector
// yields the identity orientation and zero energy.
//
// The four orientation components are:
//
//	w = L2 norm of the embedding
//	x = signed component sum scaled by the norm
//	y = first non-trivial Fourier magnitude (structural complexity)
//	z = mean over standard deviation (distribution skew)
//
// Frequency is the dominant bin of the first-half magnitude spectrum plus
// one, so it is always positive; phase is the spectral angle at that bin.
func FromEmbedding(embedding []float64, text string, meta Metadata) (*Pattern, error) {
	if len(embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	for _, v := range embedding {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFiniteEmbedding
		}
	}

	n := len(embedding)

	var sumSquares, posSum, negSum, sum float64
	for _, v := range embedding {
		sumSquares += v * v
		sum += v
		if v > 0 {
			posSum += v
		} else {
			negSum += v
		}
	}
	norm := math.Sqrt(sumSquares)
	mean := sum / float64(n)

	var variance float64
	for _, v := range embedding {
		d := v - mean
		variance += d * d
	}
	std := math.Sqrt(variance / float64(n))

	magnitudes, phases := halfSpectrum(embedding)

	w := norm
	x := (posSum + negSum) / (norm + epsilon)
	y := 0.0
	if len(magnitudes) > 1 {
		y = magnitudes[1]
	}
	z := mean / (std + epsilon)

	peak := 0
	for i, m := range magnitudes {
		if m > magnitudes[peak] {
			peak = i
		}
	}

	return &Pattern{
		Orientation: quaternion.Quaternion{W: w, X: x, Y: y, Z: z}.Normalize(),
		Energy:      norm / math.Sqrt(float64(n)),
		Frequency:   float64(peak + 1),
		Phase:       wrapPhase(phases[peak]),
		Text:        text,
		Timestamp:   now(),
		Metadata:    meta.Clone(),
	}, nil
}

// halfSpectrum computes the magnitude and phase of the first half of the
// discrete Fourier transform of the input. Embeddings are short enough that
// the direct O(n^2) evaluation is fine.
func halfSpectrum(signal []float64) (magnitudes, phases []float64) {
	n := len(signal)
	half := n / 2
	if half < 1 {
		half = 1
	}

	magnitudes = make([]float64, half)
	phases = make([]float64, half)
	for k := 0; k < half; k++ {
		var re, im float64
		for t, v := range signal {
			angle := 2 * math.Pi * float64(k) * float64(t) / float64(n)
			re += v * math.Cos(angle)
			im -= v * math.Sin(angle)
		}
		magnitudes[k] = math.Hypot(re, im)
		phases[k] = math.Atan2(im, re)
	}
	return magnitudes, phases
}

// wrapPhase maps an angle into [0, 2*pi).
func wrapPhase(angle float64) float64 {
	wrapped := math.Mod(angle, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped
}
