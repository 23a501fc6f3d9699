package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/field"
)

var (
	similarLimit        int
	similarMinResonance float64
)

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().IntVarP(&similarLimit, "limit", "l", DefaultSearchLimit, "Maximum number of results")
	similarCmd.Flags().Float64VarP(&similarMinResonance, "min-resonance", "r", 0.0, "Minimum resonance threshold (0.0-1.0)")
}

// SimilarResponse is the response for the similar command.
type SimilarResponse struct {
	ID      string         `json:"id"`
	Results []field.Result `json:"results"`
	Total   int            `json:"total"`
}

var similarCmd = &cobra.Command{
	Use:   "similar <id>",
	Short: "Find patterns resonating with a stored pattern",
	Long: `Rank every other stored pattern by resonance with the given one.

Unlike 'wf search' this needs no embedding model: the stored pattern
itself is the query. The source pattern is excluded from the results.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	id := args[0]

	repoRoot := mustFindRepository()
	f := openField(repoRoot)

	results, err := f.Similar(id, similarLimit, similarMinResonance)
	if err != nil {
		if errors.Is(err, field.ErrTargetNotFound) {
			exitWithError(ExitNotFound, "pattern %q not found", id)
		}
		exitWithError(ExitError, "finding similar patterns: %v", err)
	}

	if humanOutput {
		fmt.Printf("Patterns resonating with %s:\n\n", id)
		printResultsHuman(results)
	} else {
		outputJSON(SimilarResponse{ID: id, Results: results, Total: len(results)})
	}
	return nil
}
