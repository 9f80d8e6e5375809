// Package ingest turns a crawled site into stored, embedded chunks.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/docrag"
)

// Ingester runs the ingestion pipeline: crawl, split, embed, store.
// Every step is sequential and all chunks are stored with a single batch.
type Ingester struct {
	Crawler  docrag.PageCrawler
	Splitter *docrag.Splitter
	Embedder docrag.Embedder
	Store    docrag.VectorStore

	// TokenCounter, when set, sizes the run in model tokens for the summary.
	TokenCounter docrag.TokenCounter

	// KeepExisting disables replacing rows previously stored for the
	// crawled pages, so re-ingesting a page appends duplicates.
	KeepExisting bool
}

// Result summarizes an ingestion run.
type Result struct {
	Pages    int
	Chunks   int
	Stored   int
	Replaced int
	Bytes    int
	Tokens   int
	Duration time.Duration
}

// Ingest crawls req and stores the embedded chunks of every page found.
// Crawl failures on individual URLs are tolerated; an embedding or store
// failure fails the run and rows stored by earlier runs are kept.
func (i *Ingester) Ingest(ctx context.Context, req docrag.CrawlRequest) (*Result, error) {
	start := time.Now()

	pages, err := i.Crawler.Crawl(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &Result{Pages: len(pages)}
	if len(pages) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	var chunks []*docrag.Chunk
	sources := make([]string, 0, len(pages))
	for _, page := range pages {
		chunks = append(chunks, i.Splitter.Split(page)...)
		sources = append(sources, page.URL)
		result.Bytes += len(page.Text)
		result.Tokens += i.countTokens(ctx, page.Text)
	}
	result.Chunks = len(chunks)

	rows := make([]*docrag.EmbeddedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := i.Embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d of %s: %w", chunk.Index, chunk.SourceURL, err)
		}
		rows = append(rows, &docrag.EmbeddedChunk{
			Chunk:  chunk,
			Vector: vector,
			Model:  i.Embedder.Model(),
		})
	}

	if i.KeepExisting {
		n, err := i.Store.UpsertBatch(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("store chunks: %w", err)
		}
		result.Stored = n
	} else {
		stored, replaced, err := i.Store.ReplaceBatch(ctx, sources, rows)
		if err != nil {
			return nil, fmt.Errorf("store chunks: %w", err)
		}
		result.Stored, result.Replaced = stored, replaced
	}
	result.Duration = time.Since(start)

	return result, nil
}

// countTokens is best effort: a tokenizer failure only loses the estimate.
func (i *Ingester) countTokens(ctx context.Context, text string) int {
	if i.TokenCounter == nil {
		return 0
	}
	n, err := i.TokenCounter.CountTokens(ctx, text)
	if err != nil {
		return 0
	}
	return n
}

// Summary renders the result as a single line for the terminal.
func (r *Result) Summary() string {
	s := fmt.Sprintf("Ingested %d pages into %d chunks (%s", r.Pages, r.Stored, FormatBytes(r.Bytes))
	if r.Tokens > 0 {
		s += ", " + FormatTokens(r.Tokens)
	}
	s += ")"
	if r.Replaced > 0 {
		s += fmt.Sprintf(", replaced %d existing", r.Replaced)
	}
	return s + " in " + r.Duration.Round(time.Millisecond).String()
}
