// Package http provides an HTTP-based implementation of docrag.Fetcher.
// Pages are fetched once, without JavaScript rendering.
package http

import (
	"context"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/docrag"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout bounds a single fetch, including reading the body.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 10 << 20

// DefaultUserAgent identifies the crawler to servers.
const DefaultUserAgent = "docrag/1.0 (+https://github.com/fwojciec/docrag)"

// Ensure Fetcher implements docrag.Fetcher at compile time.
var _ docrag.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP GET requests.
// Responses that are not HTML are rejected.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	userAgent   string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		maxBodySize: DefaultMaxBodySize,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
// All failures are returned as *docrag.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &docrag.FetchError{Kind: docrag.FetchConnectionFailed, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", transportError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &docrag.FetchError{Kind: docrag.FetchNonSuccessStatus, URL: url, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return "", &docrag.FetchError{Kind: docrag.FetchUnsupportedContentType, URL: url, ContentType: contentType}
	}

	// Decode to UTF-8 using the declared or sniffed charset.
	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), contentType)
	if err != nil {
		return "", &docrag.FetchError{Kind: docrag.FetchUnsupportedContentType, URL: url, ContentType: contentType, Err: err}
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return "", transportError(url, err)
	}

	return string(b), nil
}

// transportError classifies a client or body read failure.
func transportError(url string, err error) *docrag.FetchError {
	kind := docrag.FetchConnectionFailed
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = docrag.FetchTimeout
	}
	return &docrag.FetchError{Kind: kind, URL: url, Err: err}
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
