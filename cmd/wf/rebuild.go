package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/config"
	"github.com/matsen/wavefield/internal/storage"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

// RebuildResponse is the response for the rebuild command.
type RebuildResponse struct {
	Status   string `json:"status"`
	Patterns int    `json:"patterns"`
	DBPath   string `json:"db_path"`
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the SQLite query mirror from the field document",
	Long: `Rebuild the ephemeral SQLite mirror under .wavefield/cache.

The JSON field document stays the source of truth; the mirror only
exists so 'wf query' can answer ad-hoc SQL. It is safe to delete and
rebuild at any time.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	f := openField(repoRoot)

	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening mirror database: %v", err)
	}
	defer db.Close()

	count, err := db.RebuildFromField(f)
	if err != nil {
		exitWithError(ExitError, "rebuilding mirror: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt mirror with %d patterns\n", count)
	} else {
		outputJSON(RebuildResponse{
			Status:   "rebuilt",
			Patterns: count,
			DBPath:   config.DBPath(repoRoot),
		})
	}
	return nil
}
