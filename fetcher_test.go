package docrag_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/docrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchError_Error(t *testing.T) {
	t.Parallel()

	t.Run("includes status code for non-success status", func(t *testing.T) {
		t.Parallel()

		err := &docrag.FetchError{Kind: docrag.FetchNonSuccessStatus, URL: "https://example.com/a", StatusCode: 500}

		assert.Equal(t, "fetch https://example.com/a: HTTP 500", err.Error())
	})

	t.Run("includes content type for non-HTML responses", func(t *testing.T) {
		t.Parallel()

		err := &docrag.FetchError{Kind: docrag.FetchUnsupportedContentType, URL: "https://example.com/a.pdf", ContentType: "application/pdf"}

		assert.Contains(t, err.Error(), `"application/pdf"`)
	})

	t.Run("includes kind and cause for transport failures", func(t *testing.T) {
		t.Parallel()

		err := &docrag.FetchError{Kind: docrag.FetchConnectionFailed, URL: "https://example.com", Err: errors.New("no such host")}

		assert.Equal(t, "fetch https://example.com: connection failed: no such host", err.Error())
	})
}

func TestFetchError_Unwrap(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("crawl: %w", &docrag.FetchError{Kind: docrag.FetchTimeout, Err: context.DeadlineExceeded})

	var fetchErr *docrag.FetchError
	require.ErrorAs(t, wrapped, &fetchErr)
	assert.Equal(t, docrag.FetchTimeout, fetchErr.Kind)
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}

func TestFetchErrorKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "timeout", docrag.FetchTimeout.String())
	assert.Equal(t, "unsupported content type", docrag.FetchUnsupportedContentType.String())
	assert.Equal(t, "unknown", docrag.FetchErrorKind(0).String())
}
