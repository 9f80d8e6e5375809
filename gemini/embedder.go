package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/docrag"
	"google.golang.org/genai"
)

// Ensure Embedder implements docrag.Embedder at compile time.
var _ docrag.Embedder = (*Embedder)(nil)

// Embedder implements docrag.Embedder using the Gemini embedding API.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int32
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithEmbeddingModel overrides DefaultEmbeddingModel.
func WithEmbeddingModel(model string) EmbedderOption {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimensions overrides DefaultDimensions.
func WithDimensions(n int) EmbedderOption {
	return func(e *Embedder) {
		e.dimensions = int32(n)
	}
}

// NewEmbedder creates a new Embedder.
func NewEmbedder(client *genai.Client, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		client:     client,
		model:      DefaultEmbeddingModel,
		dimensions: DefaultDimensions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the embedding model identifier.
func (e *Embedder) Model() string {
	return e.model
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, docrag.Errorf(docrag.EINVALID, "text required")
	}

	dims := e.dimensions
	result, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, "user")},
		&genai.EmbedContentConfig{OutputDimensionality: &dims},
	)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, docrag.Errorf(docrag.EINTERNAL, "gemini returned no embedding")
	}

	return result.Embeddings[0].Values, nil
}
