package docrag

import (
	"context"
	"strings"
)

// Page is the extracted text of one fetched, in-scope HTML page.
// Pages are produced by a crawl and discarded once chunked.
type Page struct {
	URL  string
	Text string
}

// CrawlRequest describes a single crawl run.
type CrawlRequest struct {
	// SeedURL is the first URL fetched.
	SeedURL string

	// ScopePrefix bounds the crawl: only URLs starting with it are fetched.
	// Defaults to SeedURL when empty.
	ScopePrefix string

	// MaxPages caps the number of URLs fetched, including failed fetches.
	MaxPages int
}

// Scope returns the effective scope prefix.
func (r *CrawlRequest) Scope() string {
	if r.ScopePrefix == "" {
		return r.SeedURL
	}
	return r.ScopePrefix
}

// Validate returns an error if the request contains invalid fields.
func (r *CrawlRequest) Validate() error {
	if strings.TrimSpace(r.SeedURL) == "" {
		return Errorf(EINVALID, "seed URL required")
	}
	if !strings.HasPrefix(r.SeedURL, r.Scope()) {
		return Errorf(EINVALID, "seed URL %q is outside scope %q", r.SeedURL, r.Scope())
	}
	if r.MaxPages < 0 {
		return Errorf(EINVALID, "max pages must not be negative, got %d", r.MaxPages)
	}
	return nil
}

// PageCrawler traverses a site and returns the pages it could extract.
type PageCrawler interface {
	// Crawl fetches pages breadth-first from the seed within the scope prefix.
	// Per-URL failures are skipped; only invalid requests and cancellation
	// are returned as errors.
	Crawl(ctx context.Context, req CrawlRequest) ([]*Page, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
