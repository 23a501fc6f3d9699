package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get or set repository configuration",
}

// ConfigResponse is the response for config get.
type ConfigResponse struct {
	OllamaURL          string  `json:"ollama_url,omitempty"`
	Model              string  `json:"model,omitempty"`
	Dimensions         int     `json:"dimensions,omitempty"`
	AbsorptionStrength float64 `json:"absorption_strength,omitempty"`
	MinResonance       float64 `json:"min_resonance,omitempty"`
}

// UpdateResponse is the response for config set.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show repository configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigGet,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if humanOutput {
		fmt.Printf("ollama_url:          %s\n", cfg.OllamaURL)
		fmt.Printf("model:               %s\n", cfg.Model)
		fmt.Printf("dimensions:          %d\n", cfg.Dimensions)
		fmt.Printf("absorption_strength: %g\n", cfg.AbsorptionStrength)
		fmt.Printf("min_resonance:       %g\n", cfg.MinResonance)
	} else {
		outputJSON(ConfigResponse{
			OllamaURL:          cfg.OllamaURL,
			Model:              cfg.Model,
			Dimensions:         cfg.Dimensions,
			AbsorptionStrength: cfg.AbsorptionStrength,
			MinResonance:       cfg.MinResonance,
		})
	}
	return nil
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a repository configuration value",
	Long: `Set a repository configuration value.

Keys: ollama_url, model, dimensions, absorption_strength, min_resonance`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	repoRoot := mustFindRepository()
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	switch key {
	case "ollama_url":
		cfg.OllamaURL = value
	case "model":
		cfg.Model = value
	case "dimensions":
		dims, err := strconv.Atoi(value)
		if err != nil {
			exitWithError(ExitError, "invalid dimensions: %s", value)
		}
		cfg.Dimensions = dims
	case "absorption_strength":
		strength, err := strconv.ParseFloat(value, 64)
		if err != nil {
			exitWithError(ExitError, "invalid absorption_strength: %s", value)
		}
		cfg.AbsorptionStrength = strength
	case "min_resonance":
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil {
			exitWithError(ExitError, "invalid min_resonance: %s", value)
		}
		cfg.MinResonance = threshold
	default:
		exitWithError(ExitError, "unknown config key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
