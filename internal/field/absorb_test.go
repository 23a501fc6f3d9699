package field

import (
	"errors"
	"math"
	"testing"
)

func TestAbsorb_InvalidStrength(t *testing.T) {
	f := newTestField(t)
	mustStore(t, f, "A", basisEmbedding(0), "")
	mustStore(t, f, "B", basisEmbedding(1), "")

	for _, strength := range []float64{-0.1, 1.01, math.NaN()} {
		if _, err := f.Absorb("A", []string{"B"}, strength); !errors.Is(err, ErrInvalidStrength) {
			t.Errorf("strength %v: error = %v, want ErrInvalidStrength", strength, err)
		}
	}

	// A rejected call must not touch the target.
	p, _ := f.Get("A")
	if p.ExpansionDepth != 0 || len(p.AbsorbedPatterns) != 0 {
		t.Errorf("target changed by rejected absorb: %+v", p)
	}
}

func TestAbsorb_TargetNotFound(t *testing.T) {
	f := newTestField(t)
	mustStore(t, f, "B", basisEmbedding(1), "")

	if _, err := f.Absorb("missing", []string{"B"}, 0.5); !errors.Is(err, ErrTargetNotFound) {
		t.Errorf("error = %v, want ErrTargetNotFound", err)
	}
}

func TestAbsorb_NoValidSourcesIsNoOp(t *testing.T) {
	f := newTestField(t)
	mustStore(t, f, "A", basisEmbedding(0), "target")

	before, _ := f.Get("A")

	for _, sources := range [][]string{nil, {}, {"ghost", "phantom"}} {
		after, err := f.Absorb("A", sources, 0.5)
		if err != nil {
			t.Fatalf("Absorb(%v) failed: %v", sources, err)
		}
		if after.ExpansionDepth != before.ExpansionDepth {
			t.Errorf("sources %v: depth changed to %d", sources, after.ExpansionDepth)
		}
		if after.Orientation != before.Orientation || after.Energy != before.Energy ||
			after.Frequency != before.Frequency || after.Phase != before.Phase {
			t.Errorf("sources %v: target wave changed: %+v", sources, after)
		}
		if len(after.AbsorbedPatterns) != 0 {
			t.Errorf("sources %v: absorbed list grew: %v", sources, after.AbsorbedPatterns)
		}
	}

	if s := f.Stats(); s.AbsorptionCount != 0 {
		t.Errorf("AbsorptionCount = %d after no-op absorbs, want 0", s.AbsorptionCount)
	}
}

func TestAbsorb_DepthIncrementsOncePerCall(t *testing.T) {
	f := newTestField(t)
	mustStore(t, f, "A", basisEmbedding(0), "")
	mustStore(t, f, "B", basisEmbedding(1), "")
	mustStore(t, f, "C", basisEmbedding(2), "")

	// Two sources in one call: depth goes up by one, not two.
	after, err := f.Absorb("A", []string{"B", "C"}, 0.5)
	if err != nil {
		t.Fatalf("Absorb failed: %v", err)
	}
	if after.ExpansionDepth != 1 {
		t.Errorf("depth after one call = %d, want 1", after.ExpansionDepth)
	}
	if len(after.AbsorbedPatterns) != 2 {
		t.Errorf("absorbed = %v, want 2 entries", after.AbsorbedPatterns)
	}

	first := after.Orientation
	after, err = f.Absorb("A", []string{"B"}, 0.5)
	if err != nil {
		t.Fatalf("second Absorb failed: %v", err)
	}
	if after.ExpansionDepth != 2 {
		t.Errorf("depth after two calls = %d, want 2", after.ExpansionDepth)
	}
	if len(after.AbsorbedPatterns) != 3 {
		t.Errorf("absorbed = %v, want 3 entries (duplicates kept)", after.AbsorbedPatterns)
	}
	// Absorption is cumulative, not idempotent: the second call moves the
	// orientation again.
	if after.Orientation == first {
		t.Error("orientation unchanged by repeated absorption")
	}
}

func TestAbsorb_EnergyNonDecreasing(t *testing.T) {
	f := newTestField(t)
	mustStore(t, f, "A", basisEmbedding(0), "")
	mustStore(t, f, "B", []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9, 3}, "")

	before, _ := f.Get("A")
	after, err := f.Absorb("A", []string{"B"}, 0.8)
	if err != nil {
		t.Fatalf("Absorb failed: %v", err)
	}
	if after.Energy < before.Energy {
		t.Errorf("energy decreased: %v -> %v", before.Energy, after.Energy)
	}
	if after.Orientation == before.Orientation {
		t.Error("orientation unchanged by absorption with positive weight")
	}
	if n := after.Orientation.Norm(); math.Abs(n-1) > 1e-9 {
		t.Errorf("orientation norm after absorb = %v, want 1", n)
	}
}

func TestAbsorb_ZeroStrength(t *testing.T) {
	f := newTestField(t)
	mustStore(t, f, "A", basisEmbedding(0), "")
	mustStore(t, f, "B", basisEmbedding(1), "")

	before, _ := f.Get("A")
	after, err := f.Absorb("A", []string{"B"}, 0)
	if err != nil {
		t.Fatalf("Absorb failed: %v", err)
	}

	// Zero strength zeroes every blend weight: the wave fields stay put but
	// the call still counts as an absorption.
	if math.Abs(after.Energy-before.Energy) > 1e-12 {
		t.Errorf("energy changed at zero strength: %v -> %v", before.Energy, after.Energy)
	}
	if math.Abs(after.Frequency-before.Frequency) > 1e-12 {
		t.Errorf("frequency changed at zero strength")
	}
	if after.ExpansionDepth != 1 {
		t.Errorf("depth = %d, want 1", after.ExpansionDepth)
	}
	if len(after.AbsorbedPatterns) != 1 || after.AbsorbedPatterns[0] != "B" {
		t.Errorf("absorbed = %v, want [B]", after.AbsorbedPatterns)
	}
}

func TestAbsorb_SkipsMissingSources(t *testing.T) {
	f := newTestField(t)
	mustStore(t, f, "A", basisEmbedding(0), "")
	mustStore(t, f, "B", basisEmbedding(1), "")

	after, err := f.Absorb("A", []string{"ghost", "B", "phantom"}, 0.5)
	if err != nil {
		t.Fatalf("Absorb failed: %v", err)
	}
	if len(after.AbsorbedPatterns) != 1 || after.AbsorbedPatterns[0] != "B" {
		t.Errorf("absorbed = %v, want [B]", after.AbsorbedPatterns)
	}
	if after.ExpansionDepth != 1 {
		t.Errorf("depth = %d, want 1", after.ExpansionDepth)
	}
}

func TestAbsorb_PersistedInField(t *testing.T) {
	f := newTestField(t)
	mustStore(t, f, "A", basisEmbedding(0), "")
	mustStore(t, f, "B", basisEmbedding(1), "")

	returned, err := f.Absorb("A", []string{"B"}, 0.5)
	if err != nil {
		t.Fatalf("Absorb failed: %v", err)
	}

	stored, _ := f.Get("A")
	if stored.ExpansionDepth != returned.ExpansionDepth ||
		stored.Orientation != returned.Orientation ||
		stored.Energy != returned.Energy {
		t.Errorf("returned snapshot diverges from stored pattern:\n%+v\n%+v", returned, stored)
	}

	// The snapshot is a copy; mutating it must not leak back.
	returned.Energy = -1
	stored, _ = f.Get("A")
	if stored.Energy == -1 {
		t.Error("snapshot aliases stored pattern")
	}
}
