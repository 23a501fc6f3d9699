package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/config"
	"github.com/matsen/wavefield/internal/field"
	"github.com/matsen/wavefield/internal/wave"
)

var absorbStrength float64

func init() {
	rootCmd.AddCommand(absorbCmd)

	absorbCmd.Flags().Float64VarP(&absorbStrength, "strength", "s", -1, "Absorption strength (0.0-1.0, default from config or 0.5)")
}

// AbsorbResponse is the response for the absorb command.
type AbsorbResponse struct {
	ID             string        `json:"id"`
	Pattern        *wave.Pattern `json:"pattern"`
	Absorbed       int           `json:"absorbed"`
	ExpansionDepth int           `json:"expansion_depth"`
	Strength       float64       `json:"strength"`
}

var absorbCmd = &cobra.Command{
	Use:   "absorb <target-id> <source-id>...",
	Short: "Absorb source patterns into a target pattern",
	Long: `Blend source patterns into the target, deepening it.

Sources are blended sequentially in descending order of their resonance
with the target, each step building on the previous one, so absorption
order matters and repeated absorption is cumulative. Source ids missing
from the field are skipped with a warning. The target's expansion depth
increases by one per call that absorbs at least one source.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAbsorb,
}

func runAbsorb(cmd *cobra.Command, args []string) error {
	targetID := args[0]
	sourceIDs := args[1:]

	repoRoot := mustFindRepository()

	strength := absorbStrength
	if strength < 0 {
		cfg, err := config.Load(repoRoot)
		if err != nil {
			exitWithError(ExitConfigError, "loading config: %v", err)
		}
		strength = cfg.AbsorptionStrength
		if strength == 0 {
			strength = 0.5
		}
	}

	f := openField(repoRoot)
	before, ok := f.Get(targetID)
	if !ok {
		exitWithError(ExitNotFound, "target pattern %q not found", targetID)
	}

	after, err := f.Absorb(targetID, sourceIDs, strength)
	if err != nil {
		if errors.Is(err, field.ErrTargetNotFound) {
			exitWithError(ExitNotFound, "target pattern %q not found", targetID)
		}
		exitWithError(ExitError, "absorbing patterns: %v", err)
	}

	absorbed := len(after.AbsorbedPatterns) - len(before.AbsorbedPatterns)

	if humanOutput {
		fmt.Printf("Absorbed %d of %d sources into %s\n", absorbed, len(sourceIDs), targetID)
		fmt.Printf("  energy %.3f -> %.3f\n", before.Energy, after.Energy)
		fmt.Printf("  expansion depth %d -> %d\n", before.ExpansionDepth, after.ExpansionDepth)
	} else {
		outputJSON(AbsorbResponse{
			ID:             targetID,
			Pattern:        after,
			Absorbed:       absorbed,
			ExpansionDepth: after.ExpansionDepth,
			Strength:       strength,
		})
	}
	return nil
}
