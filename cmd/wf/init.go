package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a wavefield repository in the current directory",
	Long: `Initialize a wavefield repository by creating the .wavefield directory.

The field document (.wavefield/field.json) is created on the first store;
the SQLite mirror lives under .wavefield/cache and can be rebuilt at any
time with 'wf rebuild'.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(cwd) {
		exitWithError(ExitConfigError, "already a wavefield repository: %s", config.WavefieldPath(cwd))
	}

	if err := os.MkdirAll(config.CachePath(cwd), 0755); err != nil {
		exitWithError(ExitError, "creating repository directories: %v", err)
	}

	cfg := &config.Config{}
	if err := cfg.Save(cwd); err != nil {
		exitWithError(ExitError, "writing config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized wavefield repository in %s\n", config.WavefieldPath(cwd))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.WavefieldPath(cwd)})
	}
	return nil
}
