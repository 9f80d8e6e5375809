package mock

import (
	"context"

	"github.com/fwojciec/docrag"
)

var _ docrag.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docrag.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
	ModelFn func() string
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) Model() string {
	return e.ModelFn()
}
