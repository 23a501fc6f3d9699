// Package embedding provides vector embedding generation for text.
// The embedding model itself is an external collaborator; this package only
// wraps its API and hands the resulting vectors to the wave transform.
package embedding

// Embedding represents a vector embedding of text.
type Embedding struct {
	Vector []float64 // The embedding vector (e.g., 384 dimensions for all-minilm)
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}
