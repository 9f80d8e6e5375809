package mock

import (
	"context"

	"github.com/fwojciec/docrag"
)

var _ docrag.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of docrag.VectorStore.
type VectorStore struct {
	UpsertBatchFn    func(ctx context.Context, rows []*docrag.EmbeddedChunk) (int, error)
	TopKFn           func(ctx context.Context, vector []float32, k int) ([]*docrag.StoredRow, error)
	DeleteBySourceFn func(ctx context.Context, sources []string) (int, error)
	ReplaceBatchFn   func(ctx context.Context, sources []string, rows []*docrag.EmbeddedChunk) (int, int, error)
}

func (s *VectorStore) UpsertBatch(ctx context.Context, rows []*docrag.EmbeddedChunk) (int, error) {
	return s.UpsertBatchFn(ctx, rows)
}

func (s *VectorStore) TopK(ctx context.Context, vector []float32, k int) ([]*docrag.StoredRow, error) {
	return s.TopKFn(ctx, vector, k)
}

func (s *VectorStore) DeleteBySource(ctx context.Context, sources []string) (int, error) {
	return s.DeleteBySourceFn(ctx, sources)
}

func (s *VectorStore) ReplaceBatch(ctx context.Context, sources []string, rows []*docrag.EmbeddedChunk) (int, int, error) {
	return s.ReplaceBatchFn(ctx, sources, rows)
}
