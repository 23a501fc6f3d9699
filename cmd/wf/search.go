package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/config"
	"github.com/matsen/wavefield/internal/field"
)

var (
	searchLimit        int
	searchMinResonance float64
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", DefaultSearchLimit, "Maximum number of results")
	searchCmd.Flags().Float64VarP(&searchMinResonance, "min-resonance", "r", 0.5, "Minimum resonance threshold (0.0-1.0)")
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query        string         `json:"query"`
	Results      []field.Result `json:"results"`
	Total        int            `json:"total"`
	MinResonance float64        `json:"min_resonance"`
	Model        string         `json:"model"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the field by resonance",
	Long: `Search stored patterns by resonance with the query.

The query is embedded and projected onto a wave pattern, then every
stored pattern is scored by the resonance kernel: orientation alignment,
frequency and phase proximity, energy balance and wave interference.
Results are ranked by descending resonance.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.TrimSpace(args[0])

	if query == "" {
		exitWithError(ExitError, "Search query cannot be empty")
	}

	repoRoot := mustFindRepository()
	provider := newProvider(repoRoot)

	minResonance := searchMinResonance
	if !cmd.Flags().Changed("min-resonance") {
		if cfg, err := config.Load(repoRoot); err == nil && cfg.MinResonance > 0 {
			minResonance = cfg.MinResonance
		}
	}

	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitDataError, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
	}

	queryEmb, err := provider.Embed(ctx, query)
	if err != nil {
		exitWithError(ExitError, "generating query embedding: %v", err)
	}

	f := openField(repoRoot)
	results, err := f.Search(queryEmb.Vector, searchLimit, minResonance)
	if err != nil {
		exitWithError(ExitError, "searching field: %v", err)
	}

	// Persist the updated search counter off the result path.
	defer f.Flush()

	if humanOutput {
		fmt.Printf("Search: %q\n", query)
		fmt.Printf("Found %d patterns (min resonance: %.2f)\n\n", len(results), minResonance)
		printResultsHuman(results)
	} else {
		outputJSON(SearchResponse{
			Query:        query,
			Results:      results,
			Total:        len(results),
			MinResonance: minResonance,
			Model:        provider.ModelName(),
		})
	}

	return nil
}
