package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matsen/wavefield/internal/field"
)

// Output formatting constants.
const (
	DefaultSearchLimit = 10 // Default limit for search/similar commands

	SearchTextMaxLen = 70 // Pattern text truncation in result summaries
	ListTextMaxLen   = 50 // Pattern text truncation in list output
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printResultsHuman prints resonance-ranked results in human-readable format.
// Used by both the search and similar commands.
func printResultsHuman(results []field.Result) {
	for i, r := range results {
		fmt.Printf("%d. [%.3f] %s\n", i+1, r.Resonance, r.ID)
		if r.Text != "" {
			fmt.Printf("   %s\n", truncateString(r.Text, SearchTextMaxLen))
		}
		fmt.Printf("   energy %.3f, frequency %.0f, depth %d\n\n",
			r.Energy, r.Frequency, r.ExpansionDepth)
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
