package supabase_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/supabase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorded is a request seen by the test server.
type recorded struct {
	Method string
	Path   string
	Query  string
	ID     string
	Header http.Header
	Body   []byte
}

// newServer starts a server that records requests and replies with handler.
func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, func() []recorded) {
	t.Helper()

	var mu sync.Mutex
	var reqs []recorded
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query().Get("metadata->>source"),
			ID:     r.URL.Query().Get("id"),
			Header: r.Header.Clone(),
			Body:   body,
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return server, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func embedded(source string, index int, text string) *docrag.EmbeddedChunk {
	return &docrag.EmbeddedChunk{
		Chunk:  &docrag.Chunk{Text: text, SourceURL: source, Index: index},
		Vector: []float32{0.5, -0.25},
		Model:  "gemini-embedding-001",
	}
}

func TestStore_UpsertBatch(t *testing.T) {
	t.Parallel()

	t.Run("posts whole batch in one request", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
		store := supabase.NewStore(server.URL+"/", "service-key", supabase.WithTable("docs"))

		n, err := store.UpsertBatch(context.Background(), []*docrag.EmbeddedChunk{
			embedded("https://d.io/a", 0, "alpha"),
			embedded("https://d.io/a", 1, "beta"),
		})

		require.NoError(t, err)
		assert.Equal(t, 2, n)

		reqs := requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodPost, reqs[0].Method)
		assert.Equal(t, "/rest/v1/docs", reqs[0].Path)
		assert.Equal(t, "service-key", reqs[0].Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", reqs[0].Header.Get("Authorization"))
		assert.Equal(t, "return=minimal", reqs[0].Header.Get("Prefer"))

		var rows []struct {
			Content   string             `json:"content"`
			Metadata  docrag.RowMetadata `json:"metadata"`
			Embedding []float32          `json:"embedding"`
		}
		require.NoError(t, json.Unmarshal(reqs[0].Body, &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "beta", rows[1].Content)
		assert.Equal(t, "https://d.io/a", rows[1].Metadata.Source)
		assert.Equal(t, 1, rows[1].Metadata.Index)
		assert.Equal(t, "gemini-embedding-001", rows[1].Metadata.Model)
		assert.Equal(t, (&docrag.Chunk{Text: "beta"}).Hash(), rows[1].Metadata.ContentHash)
		assert.Equal(t, []float32{0.5, -0.25}, rows[1].Embedding)
	})

	t.Run("sends nothing for empty batch", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, _ *http.Request) {})
		store := supabase.NewStore(server.URL, "k")

		n, err := store.UpsertBatch(context.Background(), nil)

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, requests())
	})

	t.Run("rejects invalid row before sending", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, _ *http.Request) {})
		store := supabase.NewStore(server.URL, "k")

		bad := embedded("https://d.io/a", 0, "alpha")
		bad.Vector = nil
		_, err := store.UpsertBatch(context.Background(), []*docrag.EmbeddedChunk{bad})

		assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))
		assert.Empty(t, requests())
	})

	t.Run("maps rejected key to unauthorized", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
		})
		store := supabase.NewStore(server.URL, "wrong")

		_, err := store.UpsertBatch(context.Background(), []*docrag.EmbeddedChunk{embedded("https://d.io/a", 0, "alpha")})

		assert.Equal(t, docrag.EUNAUTHORIZED, docrag.ErrorCode(err))
		assert.Contains(t, docrag.ErrorMessage(err), "Invalid API key")
	})

	t.Run("reports server error with PostgREST message", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"22000","message":"expected 768 dimensions, not 2","hint":null}`))
		})
		store := supabase.NewStore(server.URL, "k")

		_, err := store.UpsertBatch(context.Background(), []*docrag.EmbeddedChunk{embedded("https://d.io/a", 0, "alpha")})

		assert.Equal(t, docrag.EINTERNAL, docrag.ErrorCode(err))
		assert.Contains(t, docrag.ErrorMessage(err), "expected 768 dimensions")
		assert.Contains(t, docrag.ErrorMessage(err), "400")
	})
}

func TestStore_TopK(t *testing.T) {
	t.Parallel()

	t.Run("calls match function and returns rows in order", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id": 7, "content": "closest", "metadata": {"source": "https://d.io/a", "chunk_index": 2}, "similarity": 0.91},
				{"id": "3f1c", "content": "next", "metadata": {"source": "https://d.io/b"}, "similarity": 0.5}
			]`))
		})
		store := supabase.NewStore(server.URL, "k")

		rows, err := store.TopK(context.Background(), []float32{1, 0}, 2)

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "7", rows[0].ID)
		assert.Equal(t, "closest", rows[0].Text)
		assert.Equal(t, "https://d.io/a", rows[0].Metadata.Source)
		assert.Equal(t, 2, rows[0].Metadata.Index)
		assert.InDelta(t, 0.91, rows[0].Similarity, 1e-6)
		assert.Equal(t, "3f1c", rows[1].ID)

		reqs := requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "/rest/v1/rpc/match_documents", reqs[0].Path)

		var body struct {
			QueryEmbedding []float32      `json:"query_embedding"`
			MatchCount     int            `json:"match_count"`
			Filter         map[string]any `json:"filter"`
		}
		require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
		assert.Equal(t, []float32{1, 0}, body.QueryEmbedding)
		assert.Equal(t, 2, body.MatchCount)
		assert.NotNil(t, body.Filter)
	})

	t.Run("uses configured query function", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})
		store := supabase.NewStore(server.URL, "k", supabase.WithQueryFunction("match_docs_v2"))

		rows, err := store.TopK(context.Background(), []float32{1}, 4)

		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, "/rest/v1/rpc/match_docs_v2", requests()[0].Path)
	})

	t.Run("rejects non-positive k", func(t *testing.T) {
		t.Parallel()

		store := supabase.NewStore("http://127.0.0.1:1", "k")

		_, err := store.TopK(context.Background(), []float32{1}, 0)

		assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))
	})

	t.Run("reports malformed response", func(t *testing.T) {
		t.Parallel()

		server, _ := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})
		store := supabase.NewStore(server.URL, "k")

		_, err := store.TopK(context.Background(), []float32{1}, 4)

		assert.Error(t, err)
	})
}

func TestStore_DeleteBySource(t *testing.T) {
	t.Parallel()

	t.Run("filters on quoted metadata source list", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Range", "*/3")
			w.WriteHeader(http.StatusNoContent)
		})
		store := supabase.NewStore(server.URL, "k")

		n, err := store.DeleteBySource(context.Background(), []string{"https://d.io/a", `https://d.io/q?x="y"`})

		require.NoError(t, err)
		assert.Equal(t, 3, n)

		reqs := requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodDelete, reqs[0].Method)
		assert.Equal(t, "/rest/v1/documents", reqs[0].Path)
		assert.Equal(t, `in.("https://d.io/a","https://d.io/q?x=\"y\"")`, reqs[0].Query)
		assert.Equal(t, "count=exact", reqs[0].Header.Get("Prefer"))
	})

	t.Run("sends nothing for empty source list", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, _ *http.Request) {})
		store := supabase.NewStore(server.URL, "k")

		n, err := store.DeleteBySource(context.Background(), nil)

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, requests())
	})
}

func TestStore_ReplaceBatch(t *testing.T) {
	t.Parallel()

	t.Run("inserts then deletes older rows of each source", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				w.WriteHeader(http.StatusCreated)
				_, _ = io.WriteString(w, `[{"id":41,"metadata":{"source":"https://d.io/a"}},{"id":42,"metadata":{"source":"https://d.io/a"}}]`)
			case http.MethodDelete:
				w.Header().Set("Content-Range", "*/3")
				w.WriteHeader(http.StatusNoContent)
			}
		})
		store := supabase.NewStore(server.URL, "k")

		stored, replaced, err := store.ReplaceBatch(context.Background(), []string{"https://d.io/a"}, []*docrag.EmbeddedChunk{
			embedded("https://d.io/a", 0, "alpha"),
			embedded("https://d.io/a", 1, "beta"),
		})

		require.NoError(t, err)
		assert.Equal(t, 2, stored)
		assert.Equal(t, 3, replaced)

		reqs := requests()
		require.Len(t, reqs, 2)
		assert.Equal(t, http.MethodPost, reqs[0].Method)
		assert.Equal(t, "return=representation", reqs[0].Header.Get("Prefer"))
		assert.Equal(t, http.MethodDelete, reqs[1].Method)
		assert.Equal(t, "eq.https://d.io/a", reqs[1].Query)
		assert.Equal(t, `not.in.("41","42")`, reqs[1].ID)
	})

	t.Run("deletes nothing when the insert fails", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"expected 768 dimensions, not 4"}`)
		})
		store := supabase.NewStore(server.URL, "k")

		_, _, err := store.ReplaceBatch(context.Background(), []string{"https://d.io/a"}, []*docrag.EmbeddedChunk{
			embedded("https://d.io/a", 0, "alpha"),
		})

		require.Error(t, err)
		assert.Contains(t, docrag.ErrorMessage(err), "expected 768 dimensions")
		reqs := requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, http.MethodPost, reqs[0].Method)
	})

	t.Run("removes every row of a source without new chunks", func(t *testing.T) {
		t.Parallel()

		server, requests := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Range", "*/1")
			w.WriteHeader(http.StatusNoContent)
		})
		store := supabase.NewStore(server.URL, "k")

		stored, replaced, err := store.ReplaceBatch(context.Background(), []string{"https://d.io/gone"}, nil)

		require.NoError(t, err)
		assert.Zero(t, stored)
		assert.Equal(t, 1, replaced)
		reqs := requests()
		require.Len(t, reqs, 1)
		assert.Empty(t, reqs[0].ID)
	})
}
