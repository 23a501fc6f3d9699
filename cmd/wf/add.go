package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/wave"
)

var (
	addID   string
	addMeta []string
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addID, "id", "", "Pattern id (default: auto-generated)")
	addCmd.Flags().StringArrayVarP(&addMeta, "meta", "m", nil, "Metadata entry as key=value (repeatable)")
}

// AddResponse is the response for the add command.
type AddResponse struct {
	ID     string  `json:"id"`
	Energy float64 `json:"energy"`
	Model  string  `json:"model"`
}

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Store a concept as a wave pattern",
	Long: `Store a concept in the field.

The text is embedded (via Ollama), projected onto a wave pattern, and
stored under the given or auto-generated id. Metadata entries are kept
verbatim and returned with search results.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	text := strings.TrimSpace(args[0])

	if text == "" {
		exitWithError(ExitError, "Concept text cannot be empty")
	}

	meta, err := parseMetaFlags(addMeta)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	repoRoot := mustFindRepository()
	provider := newProvider(repoRoot)

	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitDataError, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
	}

	emb, err := provider.Embed(ctx, text)
	if err != nil {
		exitWithError(ExitError, "generating embedding: %v", err)
	}

	f := openField(repoRoot)
	id, err := f.StoreConcept(text, emb.Vector, addID, meta)
	if err != nil {
		exitWithError(ExitDataError, "storing concept: %v", err)
	}
	if err := f.Flush(); err != nil {
		exitWithError(ExitError, "saving field: %v", err)
	}

	p, _ := f.Get(id)

	if humanOutput {
		fmt.Printf("Stored %s (energy %.3f)\n", id, p.Energy)
	} else {
		outputJSON(AddResponse{ID: id, Energy: p.Energy, Model: provider.ModelName()})
	}
	return nil
}

// parseMetaFlags converts repeated key=value flags into pattern metadata.
func parseMetaFlags(entries []string) (wave.Metadata, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	meta := make(wave.Metadata, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata entry %q (want key=value)", entry)
		}
		meta[key] = wave.String(value)
	}
	return meta, nil
}
