package mock

import "github.com/fwojciec/docrag"

var _ docrag.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docrag.Extractor.
type Extractor struct {
	ExtractFn func(html, baseURL string) (*docrag.ExtractResult, error)
}

func (e *Extractor) Extract(html, baseURL string) (*docrag.ExtractResult, error) {
	return e.ExtractFn(html, baseURL)
}
