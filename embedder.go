package docrag

import "context"

// Embedder maps text to a fixed-dimension vector.
//
// The model used at query time must be the one used during ingestion.
// A mismatch silently degrades retrieval, so Model is recorded with every
// stored row.
type Embedder interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the pinned embedding model identifier.
	Model() string
}
