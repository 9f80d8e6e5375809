package docrag

// ExtractResult holds the text and links extracted from an HTML page.
type ExtractResult struct {
	// Text is the visible text of the page's headings, paragraphs and list
	// items in document order, joined by single spaces.
	Text string

	// Links are the page's hyperlink targets resolved to absolute URLs,
	// deduplicated and kept in the order they first appear.
	Links []string
}

// Extractor pulls text and links out of HTML pages.
type Extractor interface {
	// Extract parses raw HTML and returns its text and links.
	// Relative links are resolved against baseURL. Malformed HTML yields
	// whatever could be salvaged rather than an error.
	Extract(html string, baseURL string) (*ExtractResult, error)
}
