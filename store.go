package docrag

import "context"

// EmbeddedChunk pairs a chunk with its embedding vector.
type EmbeddedChunk struct {
	Chunk  *Chunk
	Vector []float32
	Model  string // Embedding model that produced Vector
}

// Validate returns an error if the embedded chunk cannot be stored.
func (e *EmbeddedChunk) Validate() error {
	if e.Chunk == nil {
		return Errorf(EINVALID, "embedded chunk requires a chunk")
	}
	if e.Chunk.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	if e.Chunk.SourceURL == "" {
		return Errorf(EINVALID, "chunk source URL required")
	}
	if len(e.Vector) == 0 {
		return Errorf(EINVALID, "chunk vector required")
	}
	return nil
}

// RowMetadata is the metadata persisted alongside each stored chunk.
type RowMetadata struct {
	Source      string `json:"source"`
	Index       int    `json:"chunk_index"`
	ContentHash string `json:"content_hash,omitempty"`
	Model       string `json:"embedding_model,omitempty"`
}

// StoredRow is a chunk as persisted in, and returned from, a vector store.
type StoredRow struct {
	ID         string      `json:"id"`
	Text       string      `json:"content"`
	Metadata   RowMetadata `json:"metadata"`
	Similarity float32     `json:"similarity"`
}

// VectorStore persists embedded chunks and searches them by similarity.
type VectorStore interface {
	// UpsertBatch appends rows to the store. Either every row is stored or
	// an error is returned. No uniqueness is enforced.
	UpsertBatch(ctx context.Context, rows []*EmbeddedChunk) (int, error)

	// TopK returns the k rows nearest to vector, closest first.
	TopK(ctx context.Context, vector []float32, k int) ([]*StoredRow, error)

	// DeleteBySource removes all rows whose source is one of sources and
	// returns the number of rows removed.
	DeleteBySource(ctx context.Context, sources []string) (int, error)

	// ReplaceBatch stores rows and removes the rows previously stored for
	// sources. It returns the number of rows stored and removed. A failed
	// call never leaves sources with fewer rows than before it.
	ReplaceBatch(ctx context.Context, sources []string, rows []*EmbeddedChunk) (stored, replaced int, err error)
}
