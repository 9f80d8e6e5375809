package crawl

import (
	"strings"

	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/bloom"
)

// visitedFalsePositiveRate sizes the Bloom filter in front of the visited set.
const visitedFalsePositiveRate = 0.01

// Frontier is the breadth-first work queue of a single crawl.
// It owns the visited set and enforces the scope prefix and page budget.
// A Frontier is built per crawl and is not safe for concurrent use.
type Frontier struct {
	scope    string
	maxPages int
	visited  *bloom.Set
	queue    []string
}

// NewFrontier creates a Frontier seeded with the request's seed URL.
// The scope is compared against fragment-free URLs, so it loses its
// fragment too.
func NewFrontier(req docrag.CrawlRequest) *Frontier {
	f := &Frontier{
		scope:    StripFragment(req.Scope()),
		maxPages: req.MaxPages,
		visited:  bloom.NewSet(uint(max(req.MaxPages, 1)), visitedFalsePositiveRate),
	}
	f.Push(req.SeedURL)
	return f
}

// Push appends a URL to the back of the queue unless it was already visited.
// The fragment is removed first. Queued duplicates are tolerated; Next
// discards them.
func (f *Frontier) Push(rawURL string) {
	u := StripFragment(rawURL)
	if u == "" || f.visited.Has(u) {
		return
	}
	f.queue = append(f.queue, u)
}

// Next pops URLs from the front of the queue until it finds one that is in
// scope and not yet visited, marks it visited and returns it. The bool result
// is false once the queue is drained or the page budget is spent.
func (f *Frontier) Next() (string, bool) {
	for len(f.queue) > 0 && f.visited.Len() < f.maxPages {
		u := f.queue[0]
		f.queue = f.queue[1:]

		if !strings.HasPrefix(u, f.scope) {
			continue
		}
		if !f.visited.Add(u) {
			continue
		}
		return u, true
	}
	return "", false
}

// Visited returns the number of URLs handed out by Next.
func (f *Frontier) Visited() int {
	return f.visited.Len()
}

// Len returns the number of queued URLs, duplicates included.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// StripFragment returns rawURL without its "#fragment" part.
func StripFragment(rawURL string) string {
	if idx := strings.Index(rawURL, "#"); idx != -1 {
		return rawURL[:idx]
	}
	return rawURL
}
