package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/docrag"
	"github.com/google/uuid"
)

// Meta keys.
const (
	metaDimensions = "dimensions"
	metaModel      = "embedding_model"
)

// Compile-time interface verification.
var _ docrag.VectorStore = (*Store)(nil)

// Store implements docrag.VectorStore on SQLite with brute-force cosine
// search. It suits local indexes of a few thousand chunks.
type Store struct {
	db *DB
}

// NewStore creates a new Store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// UpsertBatch inserts rows in a single transaction. The first batch ever
// stored fixes the vector dimension; later batches must match it.
func (s *Store) UpsertBatch(ctx context.Context, rows []*docrag.EmbeddedChunk) (int, error) {
	stored, _, err := s.write(ctx, nil, rows)
	return stored, err
}

// ReplaceBatch deletes the rows of sources and inserts rows in a single
// transaction, so a failed insert keeps the previous rows.
func (s *Store) ReplaceBatch(ctx context.Context, sources []string, rows []*docrag.EmbeddedChunk) (stored, replaced int, err error) {
	return s.write(ctx, sources, rows)
}

func (s *Store) write(ctx context.Context, sources []string, rows []*docrag.EmbeddedChunk) (int, int, error) {
	if len(rows) == 0 && len(sources) == 0 {
		return 0, 0, nil
	}
	if err := validateBatch(rows); err != nil {
		return 0, 0, err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	replaced, err := deleteSources(ctx, tx, sources)
	if err != nil {
		return 0, 0, err
	}
	if err := insertRows(ctx, tx, rows); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return len(rows), replaced, nil
}

func validateBatch(rows []*docrag.EmbeddedChunk) error {
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
		if len(row.Vector) != len(rows[0].Vector) {
			return docrag.Errorf(docrag.EINVALID, "batch mixes vector dimensions %d and %d", len(rows[0].Vector), len(row.Vector))
		}
	}
	return nil
}

// insertRows checks the batch against the recorded dimension, recording it
// on first use, and inserts every row.
func insertRows(ctx context.Context, tx *sql.Tx, rows []*docrag.EmbeddedChunk) error {
	if len(rows) == 0 {
		return nil
	}
	dims := len(rows[0].Vector)

	stored, err := metaValue(ctx, tx, metaDimensions)
	if err != nil {
		return err
	}
	if stored == "" {
		if err := setMeta(ctx, tx, metaDimensions, strconv.Itoa(dims)); err != nil {
			return err
		}
		if err := setMeta(ctx, tx, metaModel, rows[0].Model); err != nil {
			return err
		}
	} else if stored != strconv.Itoa(dims) {
		return docrag.Errorf(docrag.EINVALID, "store holds %s-dimension vectors, batch has %d", stored, dims)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source, chunk_index, content, content_hash, model, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), row.Chunk.SourceURL, row.Chunk.Index, row.Chunk.Text,
			row.Chunk.Hash(), row.Model, encodeVector(row.Vector), now,
		); err != nil {
			return err
		}
	}
	return nil
}

// TopK returns the k rows with the highest cosine similarity to vector.
// Rows with equal similarity keep insertion order.
func (s *Store) TopK(ctx context.Context, vector []float32, k int) ([]*docrag.StoredRow, error) {
	if k <= 0 {
		return nil, docrag.Errorf(docrag.EINVALID, "k must be positive, got %d", k)
	}
	if len(vector) == 0 {
		return nil, docrag.Errorf(docrag.EINVALID, "query vector required")
	}

	stored, err := metaValue(ctx, s.db, metaDimensions)
	if err != nil {
		return nil, err
	}
	if stored == "" {
		return []*docrag.StoredRow{}, nil
	}
	if stored != strconv.Itoa(len(vector)) {
		return nil, docrag.Errorf(docrag.EINVALID, "store holds %s-dimension vectors, query has %d", stored, len(vector))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, chunk_index, content, content_hash, model, embedding
		FROM chunks
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*docrag.StoredRow
	for rows.Next() {
		var row docrag.StoredRow
		var blob []byte
		if err := rows.Scan(&row.ID, &row.Metadata.Source, &row.Metadata.Index, &row.Text,
			&row.Metadata.ContentHash, &row.Metadata.Model, &blob); err != nil {
			return nil, err
		}
		v, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		if len(v) != len(vector) {
			return nil, docrag.Errorf(docrag.EINVALID, "row %s has %d dimensions, query has %d", row.ID, len(v), len(vector))
		}
		row.Similarity = cosine(vector, v)
		results = append(results, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b *docrag.StoredRow) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteBySource removes all rows for the given source URLs.
func (s *Store) DeleteBySource(ctx context.Context, sources []string) (int, error) {
	return deleteSources(ctx, s.db, sources)
}

func deleteSources(ctx context.Context, e execer, sources []string) (int, error) {
	if len(sources) == 0 {
		return 0, nil
	}

	args := make([]any, len(sources))
	for i, src := range sources {
		args[i] = src
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sources)), ",")

	result, err := e.ExecContext(ctx, "DELETE FROM chunks WHERE source IN ("+placeholders+")", args...)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Model returns the embedding model recorded by the first stored batch,
// or an empty string for an empty store.
func (s *Store) Model(ctx context.Context) (string, error) {
	return metaValue(ctx, s.db, metaModel)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func metaValue(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func setMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
	return err
}
