// Package wave implements the oriented wave pattern: the stored record of the
// semantic index, the deterministic embedding transform that produces it, and
// the resonance kernel that compares two patterns.
package wave

import (
	"time"

	"github.com/matsen/wavefield/internal/quaternion"
)

// Pattern is the stored record of the index: an orientation quaternion plus
// scalar wave characteristics derived from an embedding, the original text,
// and absorption bookkeeping.
type Pattern struct {
	// Orientation is a unit quaternion; the primary similarity signal.
	Orientation quaternion.Quaternion `json:"orientation"`

	// Energy is the embedding's RMS amplitude. Never negative; absorption
	// only increases it.
	Energy float64 `json:"energy"`

	// Frequency is the dominant spectral bin of the embedding, offset by one
	// so it is always positive.
	Frequency float64 `json:"frequency"`

	// Phase is the spectral phase at the dominant bin, in [0, 2*pi).
	Phase float64 `json:"phase"`

	// Text is the opaque payload the pattern was derived from.
	Text string `json:"text"`

	// Timestamp is the creation time in float unix seconds.
	Timestamp float64 `json:"timestamp"`

	// Metadata is the open key/value bag supplied at creation.
	Metadata Metadata `json:"metadata,omitempty"`

	// ExpansionDepth counts absorption calls applied to this pattern.
	// Monotonically non-decreasing.
	ExpansionDepth int `json:"expansion_depth"`

	// AbsorbedPatterns lists source ids in absorption order. Append-only;
	// duplicates allowed on repeated absorption.
	AbsorbedPatterns []string `json:"absorbed_patterns,omitempty"`
}

// Clone returns a deep copy of the pattern. Used to hand out snapshots
// without exposing internal state to mutation.
func (p *Pattern) Clone() *Pattern {
	out := *p
	out.Metadata = p.Metadata.Clone()
	if p.AbsorbedPatterns != nil {
		out.AbsorbedPatterns = append([]string(nil), p.AbsorbedPatterns...)
	}
	return &out
}

// now returns the current time in float unix seconds.
func now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
