package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/wavefield/config.yml.
// Repository config overrides global config; environment variables override both.
type GlobalConfig struct {
	OllamaURL  string `yaml:"ollama_url,omitempty"`
	Model      string `yaml:"model,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty"`
	FieldRoot  string `yaml:"field_root,omitempty"` // Default repository when not inside one
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "wavefield"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/wavefield/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.FieldRoot != "" {
		cfg.FieldRoot = ExpandPath(cfg.FieldRoot)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetFieldRoot returns the configured default repository root from global config.
func GetFieldRoot() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.FieldRoot
}

// EffectiveOllamaURL resolves the embedding endpoint from, in order of
// precedence: the WAVEFIELD_OLLAMA_URL environment variable, the repository
// config, the global config.
func EffectiveOllamaURL(repo *Config) string {
	if v := os.Getenv("WAVEFIELD_OLLAMA_URL"); v != "" {
		return v
	}
	if repo != nil && repo.OllamaURL != "" {
		return repo.OllamaURL
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.OllamaURL
}

// EffectiveModel resolves the embedding model name with the same precedence
// as EffectiveOllamaURL.
func EffectiveModel(repo *Config) string {
	if v := os.Getenv("WAVEFIELD_MODEL"); v != "" {
		return v
	}
	if repo != nil && repo.Model != "" {
		return repo.Model
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.Model
}

// EffectiveDimensions resolves the expected embedding dimensions from the
// repository config, then the global config. Zero means "use the default".
func EffectiveDimensions(repo *Config) int {
	if repo != nil && repo.Dimensions > 0 {
		return repo.Dimensions
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.Dimensions
}
