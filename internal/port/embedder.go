package port

import "context"

// Embedder converts texts into vector representations.
type Embedder interface {
	// Embed embeds a batch of texts, preserving input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
