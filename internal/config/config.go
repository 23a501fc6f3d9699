// Package config handles repository and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents repository configuration stored in .wavefield/config.json.
type Config struct {
	OllamaURL          string  `json:"ollama_url,omitempty"`          // Embedding endpoint override
	Model              string  `json:"model,omitempty"`               // Embedding model name
	Dimensions         int     `json:"dimensions,omitempty"`          // Expected embedding dimensions
	AbsorptionStrength float64 `json:"absorption_strength,omitempty"` // Default strength for wf absorb
	MinResonance       float64 `json:"min_resonance,omitempty"`       // Default search threshold
}

const (
	WavefieldDir = ".wavefield"
	ConfigFile   = "config.json"
	FieldFile    = "field.json"
	CacheDir     = "cache"
	DBFile       = "field.db"
)

// WavefieldPath returns the path to the .wavefield directory from a root path.
func WavefieldPath(root string) string {
	return filepath.Join(root, WavefieldDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, WavefieldDir, ConfigFile)
}

// FieldPath returns the path to the persisted field document from a root path.
func FieldPath(root string) string {
	return filepath.Join(root, WavefieldDir, FieldFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, WavefieldDir, CacheDir)
}

// DBPath returns the path to the SQLite query mirror from a root path.
func DBPath(root string) string {
	return filepath.Join(root, WavefieldDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a wavefield repository.
func IsRepository(root string) bool {
	info, err := os.Stat(WavefieldPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a wavefield repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a wavefield repository (no .wavefield directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
// A missing config file yields the zero Config, not an error.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks field values that have constrained ranges.
func (c *Config) Validate() error {
	if c.Dimensions < 0 {
		return fmt.Errorf("dimensions must not be negative: %d", c.Dimensions)
	}
	if c.AbsorptionStrength < 0 || c.AbsorptionStrength > 1 {
		return fmt.Errorf("absorption_strength must be in [0, 1]: %v", c.AbsorptionStrength)
	}
	if c.MinResonance < 0 || c.MinResonance > 1 {
		return fmt.Errorf("min_resonance must be in [0, 1]: %v", c.MinResonance)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
