package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

// ListEntry is one pattern in the list response.
type ListEntry struct {
	ID             string  `json:"id"`
	Text           string  `json:"text,omitempty"`
	Energy         float64 `json:"energy"`
	Frequency      float64 `json:"frequency"`
	ExpansionDepth int     `json:"expansion_depth"`
}

// ListResponse is the response for the list command.
type ListResponse struct {
	Patterns []ListEntry `json:"patterns"`
	Total    int         `json:"total"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored patterns in insertion order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	f := openField(repoRoot)

	ids := f.IDs()
	entries := make([]ListEntry, 0, len(ids))
	for _, id := range ids {
		p, ok := f.Get(id)
		if !ok {
			continue
		}
		entries = append(entries, ListEntry{
			ID:             id,
			Text:           p.Text,
			Energy:         p.Energy,
			Frequency:      p.Frequency,
			ExpansionDepth: p.ExpansionDepth,
		})
	}

	if humanOutput {
		for _, e := range entries {
			fmt.Printf("%s  [energy %.3f, depth %d]\n", e.ID, e.Energy, e.ExpansionDepth)
			if e.Text != "" {
				fmt.Printf("  %s\n", truncateString(e.Text, ListTextMaxLen))
			}
		}
		fmt.Printf("\n%d patterns\n", len(entries))
	} else {
		outputJSON(ListResponse{Patterns: entries, Total: len(entries)})
	}
	return nil
}
