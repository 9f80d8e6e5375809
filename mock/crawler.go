package mock

import (
	"context"

	"github.com/fwojciec/docrag"
)

var (
	_ docrag.PageCrawler   = (*PageCrawler)(nil)
	_ docrag.DomainLimiter = (*DomainLimiter)(nil)
)

// PageCrawler is a mock implementation of docrag.PageCrawler.
type PageCrawler struct {
	CrawlFn func(ctx context.Context, req docrag.CrawlRequest) ([]*docrag.Page, error)
}

func (c *PageCrawler) Crawl(ctx context.Context, req docrag.CrawlRequest) ([]*docrag.Page, error) {
	return c.CrawlFn(ctx, req)
}

// DomainLimiter is a mock implementation of docrag.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
