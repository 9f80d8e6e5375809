// Package goquery implements docrag.Extractor using the goquery HTML parser.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docrag"
)

// TextSelector selects the elements whose text makes up a page.
const TextSelector = "h1, h2, h3, p, li"

var _ docrag.Extractor = (*Extractor)(nil)

// Extractor extracts heading, paragraph and list item text plus hyperlinks
// from HTML documents.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page text and its resolved links.
// HTML the parser cannot read yields an empty result.
func (e *Extractor) Extract(html, baseURL string) (*docrag.ExtractResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docrag.Errorf(docrag.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &docrag.ExtractResult{}, nil
	}

	return &docrag.ExtractResult{
		Text:  extractText(doc),
		Links: extractLinks(doc, base),
	}, nil
}

// extractText joins element texts with single spaces; page text never
// carries paragraph breaks.
func extractText(doc *goquery.Document) string {
	var parts []string
	doc.Find(TextSelector).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.Join(strings.Fields(sel.Text()), " "); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func extractLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})
	return links
}

// resolveURL resolves href against base. It returns an empty string for
// hrefs that cannot be parsed or that do not resolve to an http(s) URL.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
