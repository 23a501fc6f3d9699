package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/matsen/wavefield/internal/embedding"
	"github.com/matsen/wavefield/internal/field"
)

// ProgressReporter receives progress updates during ingestion.
type ProgressReporter interface {
	// OnProgress is called with the current progress.
	OnProgress(current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(current, total int) {
	f(current, total)
}

// LoadStats contains statistics from a seed ingestion run.
type LoadStats struct {
	Stored   int           `json:"stored"`
	Embedded int           `json:"embedded"` // Seeds that needed an embedding generated
	Duration time.Duration `json:"duration"`
}

// Loader ingests seeds into a field, generating embeddings where missing.
type Loader struct {
	provider embedding.Provider
	field    *field.Field
	progress ProgressReporter
}

// NewLoader creates a seed loader.
func NewLoader(provider embedding.Provider, f *field.Field) *Loader {
	return &Loader{
		provider: provider,
		field:    f,
	}
}

// SetProgressReporter sets the progress reporter for the loader.
func (l *Loader) SetProgressReporter(reporter ProgressReporter) {
	l.progress = reporter
}

// Load ingests every seed in the file, returning the stored ids in input
// order. Ingestion stops at the first failure or context cancellation.
func (l *Loader) Load(ctx context.Context, file *File) ([]string, *LoadStats, error) {
	startTime := time.Now()
	stats := &LoadStats{}

	total := len(file.Seeds)
	ids := make([]string, 0, total)

	for i, s := range file.Seeds {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		if l.progress != nil {
			l.progress.OnProgress(i+1, total)
		}

		vector := s.Embedding
		if len(vector) == 0 {
			emb, err := l.provider.Embed(ctx, s.Text)
			if err != nil {
				return nil, nil, fmt.Errorf("embedding seed %d: %w", i+1, err)
			}
			vector = emb.Vector
			stats.Embedded++
		}

		meta, err := ConvertMetadata(s.Metadata)
		if err != nil {
			return nil, nil, fmt.Errorf("seed %d: %w", i+1, err)
		}

		id, err := l.field.StoreConcept(s.Text, vector, s.ID, meta)
		if err != nil {
			return nil, nil, fmt.Errorf("storing seed %d: %w", i+1, err)
		}

		ids = append(ids, id)
		stats.Stored++
	}

	stats.Duration = time.Since(startTime)
	return ids, stats, nil
}
