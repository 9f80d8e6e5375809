// Package supabase implements docrag.VectorStore against a Supabase project
// through its PostgREST API.
//
// The target table follows the LangChain Supabase layout:
//
//	create table documents (
//	  id bigserial primary key,
//	  content text,
//	  metadata jsonb,
//	  embedding vector(768)
//	);
//
// with a match_documents(query_embedding, match_count, filter) function
// returning id, content, metadata and similarity.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/docrag"
)

// DefaultTable is the table rows are written to.
const DefaultTable = "documents"

// DefaultQueryFunction is the RPC used for similarity search.
const DefaultQueryFunction = "match_documents"

// DefaultTimeout bounds a single PostgREST request.
const DefaultTimeout = 60 * time.Second

// Compile-time interface verification.
var _ docrag.VectorStore = (*Store)(nil)

// Store implements docrag.VectorStore using Supabase PostgREST.
type Store struct {
	client        *http.Client
	baseURL       string
	serviceKey    string
	table         string
	queryFunction string
}

// Option configures a Store.
type Option func(*Store)

// WithTable sets the table name. Defaults to DefaultTable.
func WithTable(table string) Option {
	return func(s *Store) {
		s.table = table
	}
}

// WithQueryFunction sets the similarity search RPC name.
func WithQueryFunction(name string) Option {
	return func(s *Store) {
		s.queryFunction = name
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) {
		s.client = c
	}
}

// NewStore creates a Store for the Supabase project at projectURL,
// authenticating with serviceKey.
func NewStore(projectURL, serviceKey string, opts ...Option) *Store {
	s := &Store{
		client:        &http.Client{Timeout: DefaultTimeout},
		baseURL:       strings.TrimRight(projectURL, "/") + "/rest/v1",
		serviceKey:    serviceKey,
		table:         DefaultTable,
		queryFunction: DefaultQueryFunction,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// insertRow is the JSON shape of a row written to the table.
type insertRow struct {
	Content   string             `json:"content"`
	Metadata  docrag.RowMetadata `json:"metadata"`
	Embedding []float32          `json:"embedding"`
}

// matchRequest is the JSON body of the similarity search RPC.
type matchRequest struct {
	QueryEmbedding []float32      `json:"query_embedding"`
	MatchCount     int            `json:"match_count"`
	Filter         map[string]any `json:"filter"`
}

// matchRow is a row returned by the similarity search RPC. The id is a
// JSON number for bigserial keys and a string for uuid keys.
type matchRow struct {
	ID         json.RawMessage    `json:"id"`
	Content    string             `json:"content"`
	Metadata   docrag.RowMetadata `json:"metadata"`
	Similarity float32            `json:"similarity"`
}

// UpsertBatch inserts all rows with a single request, which PostgREST
// executes in one transaction.
func (s *Store) UpsertBatch(ctx context.Context, rows []*docrag.EmbeddedChunk) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	body, err := insertBody(rows)
	if err != nil {
		return 0, err
	}

	resp, err := s.do(ctx, http.MethodPost, "/"+s.table, body, "return=minimal")
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return len(rows), nil
}

// ReplaceBatch inserts rows first and then deletes, per source, the rows
// that were not part of this insert. A failed insert leaves the table
// untouched; a failed delete leaves both generations in place.
func (s *Store) ReplaceBatch(ctx context.Context, sources []string, rows []*docrag.EmbeddedChunk) (stored, replaced int, err error) {
	body, err := insertBody(rows)
	if err != nil {
		return 0, 0, err
	}

	kept := make(map[string][]string)
	if len(rows) > 0 {
		resp, err := s.do(ctx, http.MethodPost, "/"+s.table+"?select=id,metadata", body, "return=representation")
		if err != nil {
			return 0, 0, err
		}
		var inserted []matchRow
		err = json.NewDecoder(resp.Body).Decode(&inserted)
		resp.Body.Close()
		if err != nil {
			return 0, 0, fmt.Errorf("decode insert response: %w", err)
		}
		for _, r := range inserted {
			kept[r.Metadata.Source] = append(kept[r.Metadata.Source], quote(rowID(r.ID)))
		}
		stored = len(rows)
	}

	for _, src := range sources {
		query := url.Values{}
		query.Set("metadata->>source", "eq."+src)
		if ids := kept[src]; len(ids) > 0 {
			query.Set("id", "not.in.("+strings.Join(ids, ",")+")")
		}
		resp, err := s.do(ctx, http.MethodDelete, "/"+s.table+"?"+query.Encode(), nil, "count=exact")
		if err != nil {
			return stored, replaced, fmt.Errorf("remove previous rows of %s: %w", src, err)
		}
		resp.Body.Close()
		replaced += deletedCount(resp.Header.Get("Content-Range"))
	}

	return stored, replaced, nil
}

func insertBody(rows []*docrag.EmbeddedChunk) ([]insertRow, error) {
	body := make([]insertRow, len(rows))
	for i, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, err
		}
		body[i] = insertRow{
			Content: row.Chunk.Text,
			Metadata: docrag.RowMetadata{
				Source:      row.Chunk.SourceURL,
				Index:       row.Chunk.Index,
				ContentHash: row.Chunk.Hash(),
				Model:       row.Model,
			},
			Embedding: row.Vector,
		}
	}
	return body, nil
}

// TopK calls the similarity search RPC and returns its rows, closest first.
func (s *Store) TopK(ctx context.Context, vector []float32, k int) ([]*docrag.StoredRow, error) {
	if k <= 0 {
		return nil, docrag.Errorf(docrag.EINVALID, "k must be positive, got %d", k)
	}
	if len(vector) == 0 {
		return nil, docrag.Errorf(docrag.EINVALID, "query vector required")
	}

	resp, err := s.do(ctx, http.MethodPost, "/rpc/"+s.queryFunction, matchRequest{
		QueryEmbedding: vector,
		MatchCount:     k,
		Filter:         map[string]any{},
	}, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var matches []matchRow
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", s.queryFunction, err)
	}

	rows := make([]*docrag.StoredRow, len(matches))
	for i, m := range matches {
		rows[i] = &docrag.StoredRow{
			ID:         rowID(m.ID),
			Text:       m.Content,
			Metadata:   m.Metadata,
			Similarity: m.Similarity,
		}
	}
	return rows, nil
}

// DeleteBySource removes all rows whose metadata source is one of sources.
func (s *Store) DeleteBySource(ctx context.Context, sources []string) (int, error) {
	if len(sources) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(sources))
	for i, src := range sources {
		quoted[i] = quote(src)
	}
	query := url.Values{}
	query.Set("metadata->>source", "in.("+strings.Join(quoted, ",")+")")

	resp, err := s.do(ctx, http.MethodDelete, "/"+s.table+"?"+query.Encode(), nil, "count=exact")
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	return deletedCount(resp.Header.Get("Content-Range")), nil
}

// do sends a PostgREST request and returns the response for 2xx statuses.
// Other statuses are converted to errors and the body is closed.
func (s *Store) do(ctx context.Context, method, path string, body any, prefer string) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}
	defer resp.Body.Close()

	code := docrag.EINTERNAL
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		code = docrag.EUNAUTHORIZED
	}
	return nil, docrag.Errorf(code, "supabase returned HTTP %d: %s", resp.StatusCode, errorMessage(resp.Body))
}

// errorMessage extracts the message of a PostgREST error body.
func errorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var pgErr struct {
		Message string `json:"message"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(b, &pgErr); err == nil && pgErr.Message != "" {
		if pgErr.Hint != "" {
			return pgErr.Message + " (" + pgErr.Hint + ")"
		}
		return pgErr.Message
	}
	return strings.TrimSpace(string(b))
}

// rowID renders a bigserial or uuid id as a string.
func rowID(raw json.RawMessage) string {
	return strings.Trim(string(raw), `"`)
}

// quote renders s as a PostgREST double-quoted list value.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// deletedCount parses the total of a Content-Range header like "*/3".
func deletedCount(contentRange string) int {
	_, total, ok := strings.Cut(contentRange, "/")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0
	}
	return n
}
