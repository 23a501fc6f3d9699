package field

import (
	"fmt"
	"math"
	"sort"

	"github.com/matsen/wavefield/internal/quaternion"
	"github.com/matsen/wavefield/internal/wave"
)

// Absorb blends the named source patterns into the target, weighted by how
// strongly each resonates with it, scaled by strength.
//
// Sources are processed sequentially in descending order of their resonance
// with the target at the time of the call; each blend step sees the target
// state left by the previous one, so the order is part of the result and the
// loop must not be parallelised. Source ids absent from the field are logged
// and skipped. A call that finds no valid source leaves the target untouched,
// including its expansion depth; otherwise the depth increases by exactly one
// for the whole call.
//
// Returns a snapshot of the target after absorption.
func (f *Field) Absorb(targetID string, sourceIDs []string, strength float64) (*wave.Pattern, error) {
	if math.IsNaN(strength) || strength < 0 || strength > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStrength, strength)
	}

	f.mu.Lock()
	target, ok := f.patterns[targetID]
	if !ok {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, targetID)
	}

	type candidate struct {
		id        string
		pattern   *wave.Pattern
		resonance float64
	}

	candidates := make([]candidate, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		source, found := f.patterns[id]
		if !found {
			f.logger.Warn("absorption source not found, skipping",
				"target_id", targetID, "source_id", id)
			continue
		}
		candidates = append(candidates, candidate{
			id:        id,
			pattern:   source,
			resonance: wave.Resonance(target, source, f.resonance),
		})
	}

	if len(candidates) == 0 {
		f.mu.Unlock()
		f.logger.Warn("absorption had no valid sources, target unchanged",
			"target_id", targetID, "requested", len(sourceIDs))
		p, _ := f.Get(targetID)
		return p, nil
	}

	// Descending resonance; stable so equal scores keep the requested order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].resonance > candidates[j].resonance
	})

	for _, c := range candidates {
		// The weight tracks the evolving target: resonance is recomputed
		// against the state left by the previous blend step.
		weight := wave.Resonance(target, c.pattern, f.resonance) * strength

		interference := quaternion.Multiply(target.Orientation, c.pattern.Orientation)
		target.Orientation = quaternion.Lerp(target.Orientation, interference, weight).Normalize()
		target.Energy += c.pattern.Energy * weight
		target.Frequency = target.Frequency + (c.pattern.Frequency-target.Frequency)*weight
		target.Phase = math.Mod(target.Phase+c.pattern.Phase*weight, 2*math.Pi)
		target.AbsorbedPatterns = append(target.AbsorbedPatterns, c.id)
	}

	target.ExpansionDepth++
	f.absorptionCount.Add(1)
	f.dirty.Store(true)

	snapshot := target.Clone()
	f.mu.Unlock()

	f.saveIfDirty()
	return snapshot, nil
}
