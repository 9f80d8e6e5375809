// Package crawl implements breadth-first, scope-bounded site crawling.
package crawl

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/fwojciec/docrag"
)

// Ensure Crawler implements docrag.PageCrawler at compile time.
var _ docrag.PageCrawler = (*Crawler)(nil)

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	// ProgressFetched reports a page whose text was extracted.
	ProgressFetched ProgressType = iota
	// ProgressSkipped reports a URL that failed to fetch or extract.
	ProgressSkipped
	// ProgressEmpty reports an HTML page with no extractable text.
	ProgressEmpty
	// ProgressFinished reports the end of the crawl.
	ProgressFinished
)

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type    ProgressType
	URL     string
	Visited int
	Pages   int
	Error   error

	// Kind classifies Error when it is a *docrag.FetchError; zero otherwise.
	Kind docrag.FetchErrorKind
}

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawler fetches pages breadth-first from a seed URL, following links that
// stay within the scope prefix. Fetches are strictly sequential.
type Crawler struct {
	Fetcher   docrag.Fetcher
	Extractor docrag.Extractor

	// RateLimiter, when set, is waited on before every fetch.
	RateLimiter docrag.DomainLimiter

	// Progress, when set, receives one event per visited URL and a final
	// ProgressFinished event.
	Progress ProgressFunc
}

// Crawl performs the crawl described by req and returns the extracted pages
// in fetch order. A URL that fails is reported through Progress and skipped.
func (c *Crawler) Crawl(ctx context.Context, req docrag.CrawlRequest) ([]*docrag.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	frontier := NewFrontier(req)
	var pages []*docrag.Page

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		u, ok := frontier.Next()
		if !ok {
			break
		}

		page, links, err := c.visit(ctx, u)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		event := ProgressEvent{URL: u, Visited: frontier.Visited()}
		switch {
		case err != nil:
			event.Type = ProgressSkipped
			event.Error = err
			var fetchErr *docrag.FetchError
			if errors.As(err, &fetchErr) {
				event.Kind = fetchErr.Kind
			}
		case page == nil:
			event.Type = ProgressEmpty
		default:
			pages = append(pages, page)
			event.Type = ProgressFetched
		}
		event.Pages = len(pages)
		c.report(event)

		for _, link := range links {
			frontier.Push(link)
		}
	}

	c.report(ProgressEvent{
		Type:    ProgressFinished,
		Visited: frontier.Visited(),
		Pages:   len(pages),
	})

	return pages, nil
}

// visit fetches and extracts a single URL. It returns a nil page when the
// extracted text is blank; links are returned either way.
func (c *Crawler) visit(ctx context.Context, rawURL string) (*docrag.Page, []string, error) {
	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx, host(rawURL)); err != nil {
			return nil, nil, err
		}
	}

	html, err := c.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}

	result, err := c.Extractor.Extract(html, rawURL)
	if err != nil {
		return nil, nil, err
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return nil, result.Links, nil
	}
	return &docrag.Page{URL: rawURL, Text: text}, result.Links, nil
}

func (c *Crawler) report(event ProgressEvent) {
	if c.Progress != nil {
		c.Progress(event)
	}
}

func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
