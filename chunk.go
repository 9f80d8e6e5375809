package docrag

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 300
)

// DefaultBoundaries lists the break points a chunk may end on, grouped in
// tiers of decreasing preference: paragraph, sentence, whitespace.
// Extracted page text joins elements with single spaces, so the paragraph
// tier only matters for text passed to SplitText directly.
var DefaultBoundaries = [][]string{
	{"\n\n"},
	{". ", "! ", "? "},
	{" ", "\n", "\t"},
}

// Chunk represents a window of a page's text optimized for embedding and retrieval.
type Chunk struct {
	Text      string `json:"text"`
	SourceURL string `json:"sourceUrl"`
	Index     int    `json:"index"` // Zero-based position within the page
}

// Hash returns the hex-encoded xxHash of the chunk text.
func (c *Chunk) Hash() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(c.Text))
}

// Splitter splits page text into overlapping windows of bounded length.
// Lengths are measured in runes. A Splitter is immutable and safe for
// concurrent use.
type Splitter struct {
	maxLen     int
	overlap    int
	boundaries [][][]rune
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithBoundaries replaces the boundary tiers used to snap chunk ends.
// Tiers are tried in order; within a tier the latest break wins.
// An empty slice disables snapping so every chunk is cut at maxLen.
func WithBoundaries(tiers [][]string) SplitterOption {
	return func(s *Splitter) {
		s.boundaries = compileBoundaries(tiers)
	}
}

// NewSplitter creates a Splitter producing chunks of at most maxLen runes,
// consecutive chunks sharing exactly overlap runes.
func NewSplitter(maxLen, overlap int, opts ...SplitterOption) (*Splitter, error) {
	if maxLen <= 0 {
		return nil, Errorf(EINVALID, "chunk size must be positive, got %d", maxLen)
	}
	if overlap < 0 {
		return nil, Errorf(EINVALID, "chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= maxLen {
		return nil, Errorf(EINVALID, "chunk overlap (%d) must be smaller than chunk size (%d)", overlap, maxLen)
	}

	s := &Splitter{
		maxLen:     maxLen,
		overlap:    overlap,
		boundaries: compileBoundaries(DefaultBoundaries),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Split splits a page's text into chunks carrying the page URL.
func (s *Splitter) Split(page *Page) []*Chunk {
	return s.SplitText(page.Text, page.URL)
}

// SplitText splits text into chunks attributed to sourceURL.
// Identical input always yields an identical chunk sequence.
func (s *Splitter) SplitText(text, sourceURL string) []*Chunk {
	runes := []rune(text)
	n := len(runes)

	var chunks []*Chunk
	for start := 0; start < n; {
		end := min(start+s.maxLen, n)
		if end < n {
			end = s.snap(runes, start, end)
		}

		chunks = append(chunks, &Chunk{
			Text:      string(runes[start:end]),
			SourceURL: sourceURL,
			Index:     len(chunks),
		})

		if end == n {
			break
		}
		start = end - s.overlap
	}
	return chunks
}

// snap moves the end of the window runes[start:end] back to the best
// boundary. Breaks at or before start+overlap are not eligible, which keeps
// the next window strictly ahead of this one.
func (s *Splitter) snap(runes []rune, start, end int) int {
	floor := start + s.overlap
	for _, tier := range s.boundaries {
		best := -1
		for _, sep := range tier {
			if pos := lastBreak(runes[:end], sep, floor); pos > best {
				best = pos
			}
		}
		if best > floor {
			return best
		}
	}
	return end
}

// lastBreak returns the position just after the last occurrence of sep in
// runes, or -1 if there is none ending beyond floor.
func lastBreak(runes, sep []rune, floor int) int {
	for i := len(runes) - len(sep); i >= 0 && i+len(sep) > floor; i-- {
		if hasPrefixAt(runes, sep, i) {
			return i + len(sep)
		}
	}
	return -1
}

func hasPrefixAt(runes, sep []rune, i int) bool {
	for j, r := range sep {
		if runes[i+j] != r {
			return false
		}
	}
	return true
}

func compileBoundaries(tiers [][]string) [][][]rune {
	compiled := make([][][]rune, 0, len(tiers))
	for _, tier := range tiers {
		var seps [][]rune
		for _, sep := range tier {
			if sep != "" {
				seps = append(seps, []rune(sep))
			}
		}
		if len(seps) > 0 {
			compiled = append(compiled, seps)
		}
	}
	return compiled
}
