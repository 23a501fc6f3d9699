package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate field statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	f := openField(repoRoot)

	s := f.Stats()

	if humanOutput {
		fmt.Printf("Patterns:          %d\n", s.TotalPatterns)
		fmt.Printf("Searches:          %d\n", s.SearchCount)
		fmt.Printf("Absorptions:       %d\n", s.AbsorptionCount)
		fmt.Printf("Avg depth:         %.2f\n", s.AvgExpansionDepth)
		fmt.Printf("Total energy:      %.3f\n", s.TotalEnergy)
	} else {
		outputJSON(s)
	}
	return nil
}
