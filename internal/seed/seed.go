// Package seed handles batch ingestion of concepts from YAML seed files.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matsen/wavefield/internal/wave"
)

// Seed is one concept to ingest. The embedding is optional; when absent the
// loader generates one from the text.
type Seed struct {
	ID        string         `yaml:"id,omitempty"`
	Text      string         `yaml:"text"`
	Metadata  map[string]any `yaml:"metadata,omitempty"`
	Embedding []float64      `yaml:"embedding,omitempty"`
}

// File is the parsed shape of a seed file.
type File struct {
	Seeds []Seed `yaml:"seeds"`
}

// Parse decodes and validates seed file contents.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	if len(f.Seeds) == 0 {
		return nil, fmt.Errorf("seed file contains no seeds")
	}
	for i, s := range f.Seeds {
		if s.Text == "" && len(s.Embedding) == 0 {
			return nil, fmt.Errorf("seed %d has neither text nor embedding", i+1)
		}
	}
	return &f, nil
}

// Read loads and parses a seed file from disk.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(data)
}

// ConvertMetadata maps a decoded YAML metadata bag onto the pattern metadata
// union. Strings, booleans, numbers and nested string-keyed maps are
// accepted; anything else is rejected rather than silently coerced.
func ConvertMetadata(raw map[string]any) (wave.Metadata, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	meta := make(wave.Metadata, len(raw))
	for key, value := range raw {
		converted, err := convertValue(value)
		if err != nil {
			return nil, fmt.Errorf("metadata key %q: %w", key, err)
		}
		meta[key] = converted
	}
	return meta, nil
}

func convertValue(value any) (wave.Value, error) {
	switch v := value.(type) {
	case string:
		return wave.String(v), nil
	case bool:
		return wave.Bool(v), nil
	case int:
		return wave.Number(float64(v)), nil
	case int64:
		return wave.Number(float64(v)), nil
	case float64:
		return wave.Number(v), nil
	case map[string]any:
		nested, err := ConvertMetadata(v)
		if err != nil {
			return wave.Value{}, err
		}
		return wave.Map(nested), nil
	default:
		return wave.Value{}, fmt.Errorf("unsupported value type %T", value)
	}
}
