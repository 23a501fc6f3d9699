// Package main provides the wf CLI entry point.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/config"
	"github.com/matsen/wavefield/internal/embedding"
	"github.com/matsen/wavefield/internal/field"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wf",
	Short: "Agent-first wave-pattern semantic index",
	Long: `wf is an agent-first CLI for a wave-pattern semantic index.

Concepts are stored as oriented wave patterns derived from embedding
vectors and ranked by a resonance kernel instead of plain cosine
similarity. Patterns can absorb each other, blending their waves into a
deeper target pattern. The field lives in a git-versionable JSON document
with an ephemeral SQLite mirror for ad-hoc queries. All commands output
JSON by default for easy integration with AI agents and other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// warnLogger returns the logger wired into the field for recoverable
// warnings (skipped absorption sources, failed loads).
func warnLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// mustFindRepository locates the enclosing wavefield repository, falling back
// to WF_ROOT and then the globally configured field_root. Exits on failure.
func mustFindRepository() string {
	if root := os.Getenv("WF_ROOT"); root != "" {
		return root
	}

	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	root, err := config.FindRepository(cwd)
	if err == nil {
		return root
	}

	if root := config.GetFieldRoot(); root != "" && config.IsRepository(root) {
		return root
	}

	exitWithError(ExitConfigError, "not in a wavefield repository (run 'wf init' first)")
	return "" // unreachable
}

// openField loads the persisted field for the repository, or an empty one if
// nothing has been stored yet.
func openField(repoRoot string) *field.Field {
	logger := warnLogger()
	return field.LoadOrEmpty(config.FieldPath(repoRoot), logger,
		field.WithPath(config.FieldPath(repoRoot)),
		field.WithLogger(logger),
	)
}

// newProvider builds the embedding provider from the effective configuration.
func newProvider(repoRoot string) *embedding.OllamaProvider {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	var opts []embedding.OllamaOption
	if url := config.EffectiveOllamaURL(cfg); url != "" {
		opts = append(opts, embedding.WithBaseURL(url))
	}
	if model := config.EffectiveModel(cfg); model != "" {
		opts = append(opts, embedding.WithModel(model))
	}
	if dims := config.EffectiveDimensions(cfg); dims > 0 {
		opts = append(opts, embedding.WithDimensions(dims))
	}
	return embedding.NewOllamaProvider(opts...)
}
