package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/matsen/wavefield/internal/embedding"
	"github.com/matsen/wavefield/internal/field"
	"github.com/matsen/wavefield/internal/wave"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		count   int
	}{
		{
			name: "valid with embedding",
			yaml: `seeds:
  - id: wave_1
    text: ocean wave
    embedding: [0.1, 0.2, 0.3]`,
			count: 1,
		},
		{
			name: "valid text only",
			yaml: `seeds:
  - text: sound wave
    metadata:
      medium: air`,
			count: 1,
		},
		{
			name: "embedding only",
			yaml: `seeds:
  - embedding: [1.0, 2.0]`,
			count: 1,
		},
		{
			name:    "empty file",
			yaml:    ``,
			wantErr: true,
		},
		{
			name:    "no seeds",
			yaml:    `seeds: []`,
			wantErr: true,
		},
		{
			name: "seed without text or embedding",
			yaml: `seeds:
  - id: hollow`,
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			yaml:    `seeds: [`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(f.Seeds) != tt.count {
				t.Errorf("got %d seeds, want %d", len(f.Seeds), tt.count)
			}
		})
	}
}

func TestConvertMetadata(t *testing.T) {
	meta, err := ConvertMetadata(map[string]any{
		"medium":  "water",
		"depth":   42,
		"speed":   1.5,
		"crested": true,
		"origin":  map[string]any{"basin": "pacific"},
	})
	if err != nil {
		t.Fatalf("ConvertMetadata failed: %v", err)
	}

	if v, _ := meta["medium"].AsString(); v != "water" {
		t.Errorf("medium = %q", v)
	}
	if v, _ := meta["depth"].AsNumber(); v != 42 {
		t.Errorf("depth = %v", v)
	}
	if v, _ := meta["speed"].AsNumber(); v != 1.5 {
		t.Errorf("speed = %v", v)
	}
	if v, _ := meta["crested"].AsBool(); !v {
		t.Error("crested lost")
	}
	nested, ok := meta["origin"].AsMap()
	if !ok {
		t.Fatal("origin not a map")
	}
	if v, _ := nested["basin"].AsString(); v != "pacific" {
		t.Errorf("basin = %q", v)
	}
}

func TestConvertMetadata_Rejects(t *testing.T) {
	if _, err := ConvertMetadata(map[string]any{"tags": []any{"a"}}); err == nil {
		t.Error("expected error for slice value")
	}
	if _, err := ConvertMetadata(map[string]any{"nested": map[string]any{"bad": []any{1}}}); err == nil {
		t.Error("expected error for nested slice value")
	}
	if meta, err := ConvertMetadata(nil); err != nil || meta != nil {
		t.Errorf("nil input: meta=%v err=%v, want nil/nil", meta, err)
	}
}

// fakeProvider returns a deterministic vector derived from the text length.
type fakeProvider struct {
	calls int
	fail  bool
}

func (p *fakeProvider) Embed(ctx context.Context, text string) (embedding.Embedding, error) {
	p.calls++
	if p.fail {
		return embedding.Embedding{}, fmt.Errorf("embedding backend down")
	}
	v := make([]float64, 8)
	for i := range v {
		v[i] = float64(len(text)%7) + float64(i)
	}
	return embedding.Embedding{Vector: v}, nil
}

func (p *fakeProvider) ModelName() string { return "fake" }
func (p *fakeProvider) Dimensions() int   { return 8 }

func newTestLoader(fail bool) (*Loader, *field.Field, *fakeProvider) {
	f := field.New(field.WithLogger(slog.New(slog.DiscardHandler)))
	provider := &fakeProvider{fail: fail}
	return NewLoader(provider, f), f, provider
}

func TestLoader_Load(t *testing.T) {
	loader, f, provider := newTestLoader(false)

	file := &File{Seeds: []Seed{
		{ID: "explicit", Text: "first", Embedding: []float64{1, 2, 3, 4}},
		{Text: "second needs embedding", Metadata: map[string]any{"kind": "test"}},
	}}

	var progress []int
	loader.SetProgressReporter(ProgressFunc(func(current, total int) {
		progress = append(progress, current)
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
	}))

	ids, stats, err := loader.Load(context.Background(), file)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(ids) != 2 || ids[0] != "explicit" {
		t.Errorf("ids = %v", ids)
	}
	if !strings.HasPrefix(ids[1], "wave_1_") {
		t.Errorf("generated id = %q, want wave_1_<ms>", ids[1])
	}
	if stats.Stored != 2 || stats.Embedded != 1 {
		t.Errorf("stats = %+v, want stored 2 embedded 1", stats)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (explicit embedding skips it)", provider.calls)
	}
	if len(progress) != 2 || progress[0] != 1 || progress[1] != 2 {
		t.Errorf("progress = %v, want [1 2]", progress)
	}

	p, ok := f.Get(ids[1])
	if !ok {
		t.Fatal("second seed not stored")
	}
	if v, _ := p.Metadata["kind"].AsString(); v != "test" {
		t.Errorf("metadata kind = %q", v)
	}
	if p.Metadata.Equal(wave.Metadata{}) {
		t.Error("metadata dropped")
	}
}

func TestLoader_LoadStopsOnEmbedFailure(t *testing.T) {
	loader, f, _ := newTestLoader(true)

	file := &File{Seeds: []Seed{
		{ID: "ok", Text: "has vector", Embedding: []float64{1, 2}},
		{Text: "needs embedding"},
	}}

	if _, _, err := loader.Load(context.Background(), file); err == nil {
		t.Fatal("expected error from failing provider")
	}
	// The seed before the failure was already stored.
	if f.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.Len())
	}
}

func TestLoader_LoadRespectsCancellation(t *testing.T) {
	loader, f, _ := newTestLoader(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	file := &File{Seeds: []Seed{{Text: "never stored", Embedding: []float64{1}}}}
	if _, _, err := loader.Load(ctx, file); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.Len())
	}
}

func TestLoader_LoadRejectsBadMetadata(t *testing.T) {
	loader, _, _ := newTestLoader(false)

	file := &File{Seeds: []Seed{{
		Text:      "bad",
		Embedding: []float64{1, 2},
		Metadata:  map[string]any{"list": []any{1, 2}},
	}}}
	if _, _, err := loader.Load(context.Background(), file); err == nil {
		t.Error("expected metadata conversion error")
	}
}
