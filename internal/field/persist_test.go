package field

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matsen/wavefield/internal/wave"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.json")

	f := newTestField(t)
	mustStore(t, f, "zebra", basisEmbedding(0), "stored first")
	mustStore(t, f, "apple", []float64{1, -2, 3, -4, 5, -6, 7, -8}, "stored second")
	if _, err := f.StoreConcept("generated", basisEmbedding(5), "", wave.Metadata{
		"topic":  wave.String("waves"),
		"weight": wave.Number(0.75),
		"nested": wave.Map(wave.Metadata{"deep": wave.Bool(true)}),
	}); err != nil {
		t.Fatalf("StoreConcept failed: %v", err)
	}
	if _, err := f.Search(basisEmbedding(0), 5, 0); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if _, err := f.Absorb("zebra", []string{"apple"}, 0.5); err != nil {
		t.Fatalf("Absorb failed: %v", err)
	}

	if err := f.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got, want := loaded.IDs(), f.IDs(); len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	} else {
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("insertion order lost: %v, want %v", got, want)
			}
		}
	}

	for _, id := range f.IDs() {
		original, _ := f.Get(id)
		restored, ok := loaded.Get(id)
		if !ok {
			t.Fatalf("pattern %s missing after load", id)
		}
		if restored.Orientation != original.Orientation {
			t.Errorf("%s: orientation = %+v, want %+v", id, restored.Orientation, original.Orientation)
		}
		if restored.Energy != original.Energy || restored.Frequency != original.Frequency ||
			restored.Phase != original.Phase {
			t.Errorf("%s: wave fields changed across round trip", id)
		}
		if restored.Text != original.Text {
			t.Errorf("%s: text = %q, want %q", id, restored.Text, original.Text)
		}
		if restored.ExpansionDepth != original.ExpansionDepth {
			t.Errorf("%s: depth = %d, want %d", id, restored.ExpansionDepth, original.ExpansionDepth)
		}
		if len(restored.AbsorbedPatterns) != len(original.AbsorbedPatterns) {
			t.Errorf("%s: absorbed = %v, want %v", id, restored.AbsorbedPatterns, original.AbsorbedPatterns)
		}
		if !restored.Metadata.Equal(original.Metadata) {
			t.Errorf("%s: metadata changed across round trip", id)
		}
	}

	fs, ls := f.Stats(), loaded.Stats()
	if ls.SearchCount != fs.SearchCount || ls.AbsorptionCount != fs.AbsorptionCount {
		t.Errorf("statistics changed: %+v, want %+v", ls, fs)
	}

	// The sequence counter must survive so generated ids never collide with
	// pre-restart ones.
	next, err := loaded.StoreConcept("post-restart", basisEmbedding(1), "", nil)
	if err != nil {
		t.Fatalf("StoreConcept after load failed: %v", err)
	}
	if !strings.HasPrefix(next, "wave_2_") {
		t.Errorf("id after reload = %q, want wave_2_<ms>", next)
	}
}

func TestSave_DocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.json")

	f := newTestField(t)
	mustStore(t, f, "only", basisEmbedding(0), "concept")
	if err := f.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("saved document is not JSON: %v", err)
	}
	for _, key := range []string{"patterns", "statistics", "timestamp"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing top-level key %q", key)
		}
	}

	var ts float64
	if err := json.Unmarshal(doc["timestamp"], &ts); err != nil || ts <= 0 || math.IsNaN(ts) {
		t.Errorf("timestamp = %s, want positive seconds", doc["timestamp"])
	}

	var patterns map[string]struct {
		Orientation struct {
			W float64 `json:"w"`
			X float64 `json:"x"`
			Y float64 `json:"y"`
			Z float64 `json:"z"`
		} `json:"orientation"`
		Energy float64 `json:"energy"`
	}
	if err := json.Unmarshal(doc["patterns"], &patterns); err != nil {
		t.Fatalf("patterns object malformed: %v", err)
	}
	if p, ok := patterns["only"]; !ok {
		t.Error("patterns missing stored id")
	} else if p.Orientation.W == 0 && p.Orientation.X == 0 {
		t.Error("orientation components not serialized under w/x/y/z")
	}
}

func TestSave_KeyOrderMatchesInsertion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.json")

	f := newTestField(t)
	// Deliberately anti-alphabetical so map-sorted output would differ.
	for _, id := range []string{"zz", "mm", "aa"} {
		mustStore(t, f, id, basisEmbedding(0), "")
	}
	if err := f.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	text := string(data)
	zz, mm, aa := strings.Index(text, `"zz"`), strings.Index(text, `"mm"`), strings.Index(text, `"aa"`)
	if zz < 0 || mm < 0 || aa < 0 || !(zz < mm && mm < aa) {
		t.Errorf("key positions zz=%d mm=%d aa=%d, want insertion order", zz, mm, aa)
	}
}

func TestSave_Atomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.json")

	f := newTestField(t)
	mustStore(t, f, "A", basisEmbedding(0), "")
	if err := f.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestLoadOrEmpty_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	f := LoadOrEmpty(path, quietLogger())
	if f == nil {
		t.Fatal("LoadOrEmpty returned nil")
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.Len())
	}
}

func TestLoadOrEmpty_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	f := LoadOrEmpty(path, quietLogger())
	if f == nil || f.Len() != 0 {
		t.Fatal("LoadOrEmpty should fall back to an empty field on corrupt input")
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load of missing file should error")
	}
}

func TestFlush_WritesDeferredStatistics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "field.json")

	f := New(WithPath(path), WithLogger(quietLogger()))
	mustStore(t, f, "A", basisEmbedding(0), "")

	// Search marks the field dirty without writing.
	if _, err := f.Search(basisEmbedding(0), 5, 0); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if err := f.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := loaded.Stats().SearchCount; got != 1 {
		t.Errorf("persisted SearchCount = %d, want 1", got)
	}

	// Nothing dirty: Flush is a no-op and must not fail.
	if err := f.Flush(); err != nil {
		t.Errorf("idle Flush failed: %v", err)
	}
}

func TestStore_AutoSavesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.json")

	f := New(WithPath(path), WithLogger(quietLogger()))
	mustStore(t, f, "A", basisEmbedding(0), "persisted")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after StoreConcept failed: %v", err)
	}
	if p, ok := loaded.Get("A"); !ok || p.Text != "persisted" {
		t.Errorf("auto-saved field missing pattern: ok=%v", ok)
	}
}
