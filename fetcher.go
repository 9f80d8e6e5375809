package docrag

import (
	"context"
	"fmt"
)

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch performs a single GET for the URL and returns the HTML body.
	// Failures are reported as *FetchError so callers can tell them apart.
	// The context controls cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)
}

// FetchErrorKind classifies why a fetch failed.
type FetchErrorKind int

// Fetch failure kinds.
const (
	FetchTimeout FetchErrorKind = iota + 1
	FetchConnectionFailed
	FetchNonSuccessStatus
	FetchUnsupportedContentType
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchTimeout:
		return "timeout"
	case FetchConnectionFailed:
		return "connection failed"
	case FetchNonSuccessStatus:
		return "non-success status"
	case FetchUnsupportedContentType:
		return "unsupported content type"
	default:
		return "unknown"
	}
}

// FetchError describes a failed fetch of a single URL.
type FetchError struct {
	Kind        FetchErrorKind
	URL         string
	StatusCode  int    // set for FetchNonSuccessStatus
	ContentType string // set for FetchUnsupportedContentType
	Err         error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchNonSuccessStatus:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	case FetchUnsupportedContentType:
		return fmt.Sprintf("fetch %s: unsupported content type %q", e.URL, e.ContentType)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
