// Package slog provides log/slog decorators for docrag services.
// Per-item operations log at debug level; store and model calls at info.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docrag"
)

var (
	_ docrag.Fetcher       = (*LoggingFetcher)(nil)
	_ docrag.Embedder      = (*LoggingEmbedder)(nil)
	_ docrag.VectorStore   = (*LoggingVectorStore)(nil)
	_ docrag.LanguageModel = (*LoggingLanguageModel)(nil)
)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   docrag.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next docrag.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Debug("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// LoggingEmbedder wraps an Embedder with debug logging.
type LoggingEmbedder struct {
	next   docrag.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next docrag.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the outcome.
func (e *LoggingEmbedder) Embed(ctx context.Context, text string) (vector []float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed",
			"model", e.next.Model(),
			"chars", len(text),
			"dims", len(vector),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, text)
}

// Model delegates to the wrapped embedder.
func (e *LoggingEmbedder) Model() string {
	return e.next.Model()
}

// LoggingVectorStore wraps a VectorStore with logging.
type LoggingVectorStore struct {
	next   docrag.VectorStore
	logger *slog.Logger
}

// NewLoggingVectorStore creates a new LoggingVectorStore.
func NewLoggingVectorStore(next docrag.VectorStore, logger *slog.Logger) *LoggingVectorStore {
	return &LoggingVectorStore{next: next, logger: logger}
}

// UpsertBatch delegates to the wrapped store and logs the outcome.
func (s *LoggingVectorStore) UpsertBatch(ctx context.Context, rows []*docrag.EmbeddedChunk) (n int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("upsert batch",
			"rows", len(rows),
			"stored", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpsertBatch(ctx, rows)
}

// TopK delegates to the wrapped store and logs the outcome.
func (s *LoggingVectorStore) TopK(ctx context.Context, vector []float32, k int) (rows []*docrag.StoredRow, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("top k",
			"k", k,
			"rows", len(rows),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.TopK(ctx, vector, k)
}

// DeleteBySource delegates to the wrapped store and logs the outcome.
func (s *LoggingVectorStore) DeleteBySource(ctx context.Context, sources []string) (n int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete by source",
			"sources", len(sources),
			"deleted", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteBySource(ctx, sources)
}

// ReplaceBatch delegates to the wrapped store and logs the outcome.
func (s *LoggingVectorStore) ReplaceBatch(ctx context.Context, sources []string, rows []*docrag.EmbeddedChunk) (stored, replaced int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("replace batch",
			"sources", len(sources),
			"rows", len(rows),
			"stored", stored,
			"replaced", replaced,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ReplaceBatch(ctx, sources, rows)
}

// LoggingLanguageModel wraps a LanguageModel with debug logging.
type LoggingLanguageModel struct {
	next   docrag.LanguageModel
	logger *slog.Logger
}

// NewLoggingLanguageModel creates a new LoggingLanguageModel.
func NewLoggingLanguageModel(next docrag.LanguageModel, logger *slog.Logger) *LoggingLanguageModel {
	return &LoggingLanguageModel{next: next, logger: logger}
}

// Complete delegates to the wrapped model and logs the outcome.
func (m *LoggingLanguageModel) Complete(ctx context.Context, prompt string) (answer string, err error) {
	defer func(begin time.Time) {
		m.logger.Debug("complete",
			"prompt_chars", len(prompt),
			"answer_chars", len(answer),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.Complete(ctx, prompt)
}
