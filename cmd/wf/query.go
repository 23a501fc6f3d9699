package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/config"
	"github.com/matsen/wavefield/internal/storage"
)

func init() {
	rootCmd.AddCommand(queryCmd)
}

// QueryResponse is the response for the query command.
type QueryResponse struct {
	Records []storage.Record `json:"records"`
	Total   int              `json:"total"`
}

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run SQL against the query mirror",
	Long: `Run a SQL query against the SQLite mirror.

The mirror holds one row per pattern (table 'patterns') with the
orientation components, scalar wave fields, metadata JSON and insertion
position. Run 'wf rebuild' first if the field has changed since the last
rebuild.

Example:

  wf query "SELECT id, energy FROM patterns ORDER BY energy DESC LIMIT 5"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	dbPath := config.DBPath(repoRoot)
	if _, err := os.Stat(dbPath); err != nil {
		exitWithError(ExitConfigError, "query mirror not found\n\nRun 'wf rebuild' to create it.")
	}

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening mirror database: %v", err)
	}
	defer db.Close()

	records, err := db.Query(args[0])
	if err != nil {
		exitWithError(ExitDataError, "executing query: %v", err)
	}

	if humanOutput {
		for _, r := range records {
			fmt.Printf("%v\n", r)
		}
		fmt.Printf("\n%d records\n", len(records))
	} else {
		outputJSON(QueryResponse{Records: records, Total: len(records)})
	}
	return nil
}
