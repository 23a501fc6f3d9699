package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/seed"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

// ImportResponse is the response for the import command.
type ImportResponse struct {
	IDs      []string `json:"ids"`
	Stored   int      `json:"stored"`
	Embedded int      `json:"embedded"`
	Duration string   `json:"duration"`
}

var importCmd = &cobra.Command{
	Use:   "import <seeds.yaml>",
	Short: "Batch-import concepts from a YAML seed file",
	Long: `Import concepts from a YAML seed file.

Each seed has text, an optional id and metadata, and an optional
pre-computed embedding. Seeds without an embedding are embedded via
Ollama; requests are rate-limited so large files don't flood the
endpoint.

Example seed file:

  seeds:
    - text: "gradient descent converges on convex objectives"
      metadata: {topic: optimization}
    - id: wave_custom_1
      text: "attention weighs token pairs"`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	file, err := seed.Read(args[0])
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	repoRoot := mustFindRepository()
	provider := newProvider(repoRoot)

	needsEmbedding := false
	for _, s := range file.Seeds {
		if len(s.Embedding) == 0 {
			needsEmbedding = true
			break
		}
	}
	if needsEmbedding {
		if err := provider.IsAvailable(ctx); err != nil {
			exitWithError(ExitDataError, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
		}
		if ok, err := provider.HasModel(ctx); err == nil && !ok {
			exitWithError(ExitModelNotFound, "model %q not found\n\nPull it with 'ollama pull %s'",
				provider.ModelName(), provider.ModelName())
		}
	}

	f := openField(repoRoot)
	loader := seed.NewLoader(provider, f)
	if humanOutput {
		loader.SetProgressReporter(seed.ProgressFunc(func(current, total int) {
			fmt.Fprintf(os.Stderr, "\rImporting %d/%d...", current, total)
		}))
	}

	ids, stats, err := loader.Load(ctx, file)
	if humanOutput {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		exitWithError(ExitError, "importing seeds: %v", err)
	}
	if err := f.Flush(); err != nil {
		exitWithError(ExitError, "saving field: %v", err)
	}

	if humanOutput {
		fmt.Printf("Imported %d seeds (%d embedded) in %s\n",
			stats.Stored, stats.Embedded, formatDuration(stats.Duration))
	} else {
		outputJSON(ImportResponse{
			IDs:      ids,
			Stored:   stats.Stored,
			Embedded: stats.Embedded,
			Duration: stats.Duration.String(),
		})
	}
	return nil
}
