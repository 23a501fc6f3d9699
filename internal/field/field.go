// Package field implements the wave-pattern store: an id-to-pattern map with
// resonance search, absorption, and round-trip JSON persistence.
package field

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matsen/wavefield/internal/wave"
)

// Errors returned by field operations.
var (
	ErrTargetNotFound  = errors.New("absorption target not found")
	ErrInvalidStrength = errors.New("absorption strength must be in [0, 1]")
)

// Field owns the stored patterns. It is an explicitly constructed object with
// a single writer lock; reads take snapshots so they never observe a pattern
// mid-mutation. Persistence is decoupled from search: only writes touch disk.
type Field struct {
	mu       sync.RWMutex
	patterns map[string]*wave.Pattern
	order    []string // insertion order, for deterministic ties and persistence
	seq      int

	searchCount     atomic.Int64
	absorptionCount atomic.Int64
	dirty           atomic.Bool

	resonance wave.ResonanceOptions
	logger    *slog.Logger
	path      string // persistence target; empty means in-memory only
}

// Option configures a Field.
type Option func(*Field)

// WithPath sets the persistence path. Mutating operations save to it after
// committing in memory.
func WithPath(path string) Option {
	return func(f *Field) {
		f.path = path
	}
}

// WithLogger sets the logger used for recoverable warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Field) {
		f.logger = logger
	}
}

// WithResonanceOptions overrides the kernel configuration used for search
// and absorption weighting.
func WithResonanceOptions(opts wave.ResonanceOptions) Option {
	return func(f *Field) {
		f.resonance = opts
	}
}

// New creates an empty field.
func New(opts ...Option) *Field {
	f := &Field{
		patterns:  make(map[string]*wave.Pattern),
		resonance: wave.DefaultResonanceOptions(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Store inserts or overwrites a pattern under the given id.
func (f *Field) Store(id string, p *wave.Pattern) {
	f.mu.Lock()
	if _, exists := f.patterns[id]; !exists {
		f.order = append(f.order, id)
	}
	f.patterns[id] = p.Clone()
	f.dirty.Store(true)
	f.mu.Unlock()

	f.saveIfDirty()
}

// StoreConcept transforms an embedding into a pattern and stores it.
// When id is empty one is generated as wave_<seq>_<timestamp_ms>.
// Returns the id the pattern was stored under.
func (f *Field) StoreConcept(text string, embedding []float64, id string, meta wave.Metadata) (string, error) {
	p, err := wave.FromEmbedding(embedding, text, meta)
	if err != nil {
		return "", fmt.Errorf("transforming embedding: %w", err)
	}

	f.mu.Lock()
	if id == "" {
		f.seq++
		id = fmt.Sprintf("wave_%d_%d", f.seq, time.Now().UnixMilli())
	}
	if _, exists := f.patterns[id]; !exists {
		f.order = append(f.order, id)
	}
	f.patterns[id] = p
	f.dirty.Store(true)
	f.mu.Unlock()

	f.saveIfDirty()
	return id, nil
}

// Get returns a snapshot of the pattern stored under id.
func (f *Field) Get(id string) (*wave.Pattern, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p, ok := f.patterns[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// IDs returns all stored ids in insertion order.
func (f *Field) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.order...)
}

// Len returns the number of stored patterns.
func (f *Field) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.patterns)
}

// Result is one search hit.
type Result struct {
	ID             string        `json:"id"`
	Text           string        `json:"text"`
	Resonance      float64       `json:"resonance"`
	Energy         float64       `json:"energy"`
	Frequency      float64       `json:"frequency"`
	ExpansionDepth int           `json:"expansion_depth"`
	Metadata       wave.Metadata `json:"metadata,omitempty"`
}

// Search transforms the query embedding and ranks every stored pattern by
// resonance against it. Results with resonance below minResonance are
// dropped; the rest are sorted by descending resonance with ties broken by
// insertion order, truncated to topK. topK == 0 returns no results.
// An empty field returns no results, not an error.
func (f *Field) Search(embedding []float64, topK int, minResonance float64) ([]Result, error) {
	query, err := wave.FromEmbedding(embedding, "", nil)
	if err != nil {
		return nil, fmt.Errorf("transforming query: %w", err)
	}

	// The search counter is part of the persisted statistics; flag it for
	// the next flush without blocking the read path on disk I/O.
	f.searchCount.Add(1)
	f.dirty.Store(true)

	if topK <= 0 {
		return []Result{}, nil
	}

	f.mu.RLock()
	results := make([]Result, 0, len(f.order))
	for _, id := range f.order {
		p := f.patterns[id]
		// Stored pattern first, query second: the interference term's
		// argument order is fixed.
		score := wave.Resonance(p, query, f.resonance)
		if score < minResonance {
			continue
		}
		results = append(results, Result{
			ID:             id,
			Text:           p.Text,
			Resonance:      score,
			Energy:         p.Energy,
			Frequency:      p.Frequency,
			ExpansionDepth: p.ExpansionDepth,
			Metadata:       p.Metadata.Clone(),
		})
	}
	f.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Resonance > results[j].Resonance
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Similar ranks every other stored pattern by resonance against the pattern
// stored under id. The source pattern is excluded from the results.
func (f *Field) Similar(id string, topK int, minResonance float64) ([]Result, error) {
	f.mu.RLock()
	source, ok := f.patterns[id]
	if !ok {
		f.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, id)
	}

	results := make([]Result, 0, len(f.order)-1)
	for _, otherID := range f.order {
		if otherID == id {
			continue
		}
		p := f.patterns[otherID]
		score := wave.Resonance(source, p, f.resonance)
		if score < minResonance {
			continue
		}
		results = append(results, Result{
			ID:             otherID,
			Text:           p.Text,
			Resonance:      score,
			Energy:         p.Energy,
			Frequency:      p.Frequency,
			ExpansionDepth: p.ExpansionDepth,
			Metadata:       p.Metadata.Clone(),
		})
	}
	f.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Resonance > results[j].Resonance
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Stats summarises the field.
type Stats struct {
	TotalPatterns     int     `json:"total_patterns"`
	SearchCount       int64   `json:"search_count"`
	AbsorptionCount   int64   `json:"absorption_count"`
	AvgExpansionDepth float64 `json:"avg_expansion_depth"`
	TotalEnergy       float64 `json:"total_energy"`
}

// Stats returns aggregate counters over the field.
func (f *Field) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s := Stats{
		TotalPatterns:   len(f.patterns),
		SearchCount:     f.searchCount.Load(),
		AbsorptionCount: f.absorptionCount.Load(),
	}
	if len(f.patterns) == 0 {
		return s
	}

	var depthSum int
	for _, p := range f.patterns {
		depthSum += p.ExpansionDepth
		s.TotalEnergy += p.Energy
	}
	s.AvgExpansionDepth = float64(depthSum) / float64(len(f.patterns))
	return s
}
