package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/wavefield/internal/wave"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

// GetResponse is the response for the get command.
type GetResponse struct {
	ID      string        `json:"id"`
	Pattern *wave.Pattern `json:"pattern"`
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a stored pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	id := args[0]

	repoRoot := mustFindRepository()
	f := openField(repoRoot)

	p, ok := f.Get(id)
	if !ok {
		exitWithError(ExitNotFound, "pattern %q not found", id)
	}

	if humanOutput {
		fmt.Printf("%s\n", id)
		if p.Text != "" {
			fmt.Printf("  text:      %s\n", p.Text)
		}
		fmt.Printf("  orientation: (%.4f, %.4f, %.4f, %.4f)\n",
			p.Orientation.W, p.Orientation.X, p.Orientation.Y, p.Orientation.Z)
		fmt.Printf("  energy:    %.4f\n", p.Energy)
		fmt.Printf("  frequency: %.0f\n", p.Frequency)
		fmt.Printf("  phase:     %.4f\n", p.Phase)
		fmt.Printf("  depth:     %d\n", p.ExpansionDepth)
		if len(p.AbsorbedPatterns) > 0 {
			fmt.Printf("  absorbed:  %s\n", strings.Join(p.AbsorbedPatterns, ", "))
		}
		for _, key := range p.Metadata.Keys() {
			fmt.Printf("  meta %s: %v\n", key, metaValueString(p.Metadata[key]))
		}
	} else {
		outputJSON(GetResponse{ID: id, Pattern: p})
	}
	return nil
}

// metaValueString renders a metadata value for human output.
func metaValueString(v wave.Value) string {
	switch v.Kind() {
	case wave.KindString:
		s, _ := v.AsString()
		return s
	case wave.KindNumber:
		n, _ := v.AsNumber()
		return fmt.Sprintf("%g", n)
	case wave.KindBool:
		b, _ := v.AsBool()
		return fmt.Sprintf("%t", b)
	case wave.KindMap:
		m, _ := v.AsMap()
		return fmt.Sprintf("(%d nested keys)", len(m))
	}
	return "?"
}
