package main

import (
	"fmt"

	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/crawl"
	"github.com/fwojciec/docrag/ingest"
)

// urlWidth is the display width of URLs in progress lines.
const urlWidth = 70

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	req := docrag.CrawlRequest{
		SeedURL:     c.URL,
		ScopePrefix: c.Scope,
		MaxPages:    c.MaxPages,
	}
	if err := req.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docrag.ErrorMessage(err))
		return err
	}

	if deps.Crawler != nil {
		deps.Crawler.Progress = func(event crawl.ProgressEvent) {
			switch event.Type {
			case crawl.ProgressFetched:
				fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Visited, req.MaxPages, ingest.TruncateURL(event.URL, urlWidth))
			case crawl.ProgressEmpty:
				fmt.Fprintf(deps.Stderr, "  empty %s\n", ingest.TruncateURL(event.URL, urlWidth))
			case crawl.ProgressSkipped:
				if event.Kind != 0 {
					fmt.Fprintf(deps.Stderr, "  skip %s (%s): %v\n", ingest.TruncateURL(event.URL, urlWidth), event.Kind, event.Error)
					return
				}
				fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", ingest.TruncateURL(event.URL, urlWidth), event.Error)
			case crawl.ProgressFinished:
				// Summary printed after ingestion completes
			}
		}
	}

	fmt.Fprintf(deps.Stdout, "Crawling %s (scope %s, up to %d pages)\n", req.SeedURL, req.Scope(), req.MaxPages)

	result, err := deps.Ingester.Ingest(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docrag.ErrorMessage(err))
		return err
	}

	if result.Pages == 0 {
		fmt.Fprintln(deps.Stdout, "No pages with text found; nothing stored.")
		return nil
	}

	fmt.Fprintln(deps.Stdout, result.Summary())
	return nil
}
