// Package vectorstore persists chunk embeddings with denormalized
// tenancy metadata and performs vault-scoped cosine-similarity top-k
// search (§4.2).
package vectorstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/ragvault/ragvault/internal/apperr"
)

// ChunkInput is a chunk ready to be embedded and persisted.
type ChunkInput struct {
	Ordinal    int
	Text       string
	TokenCount int
	Vector     []float32
}

// DenormMetadata is copied onto every chunk row of a document so search
// results don't need a join back to the Metadata Store.
type DenormMetadata struct {
	Title  string
	Source string
}

// SearchFilter scopes a search to a single vault, or to global (no-vault)
// documents when VaultID is nil (§9a: "no vault" is not "all vaults").
type SearchFilter struct {
	VaultID *string
}

// SearchResult is a single retrieved chunk plus its similarity score.
type SearchResult struct {
	ChunkID    string
	DocumentID string
	Title      string
	Snippet    string
	Score      float32
}

// Store is the Vector Store: persists chunk embeddings and serves
// vault-scoped cosine-similarity search, backed by Postgres + pgvector.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
}

// NewStore wraps pool and ensures the vector schema exists for the given
// embedding dimension D.
func NewStore(ctx context.Context, pool *pgxpool.Pool, dimension int) (*Store, error) {
	s := &Store{pool: pool, dimension: dimension}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	statements := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS chunks (
	id UUID PRIMARY KEY,
	document_id UUID NOT NULL,
	vault_id UUID,
	ordinal INT NOT NULL,
	text TEXT NOT NULL,
	token_count INT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	embedding vector(%d) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS chunks_document_idx ON chunks (document_id);
CREATE INDEX IF NOT EXISTS chunks_vault_idx ON chunks (vault_id);

DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_indexes
		WHERE schemaname = current_schema() AND indexname = 'chunks_embedding_idx'
	) THEN
		EXECUTE 'CREATE INDEX chunks_embedding_idx ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)';
	END IF;
END
$$;
`, s.dimension)

	if _, err := s.pool.Exec(ctx, statements); err != nil {
		if strings.Contains(err.Error(), "ivfflat") {
			// Approximate index creation can fail on an empty table; the
			// exact-search fallback (sequential scan) still works.
			return nil
		}
		return apperr.StoreUnavailable(err, "ensure vector schema")
	}

	return nil
}

// UpsertChunks atomically replaces all chunks for a document: either all
// become visible to subsequent searches, or none do (§4.2).
func (s *Store) UpsertChunks(ctx context.Context, documentID string, vaultID *string, denorm DenormMetadata, chunks []ChunkInput) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.StoreUnavailable(err, "begin chunk upsert")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return apperr.StoreUnavailable(err, "clear existing chunks")
	}

	for _, c := range chunks {
		if len(c.Vector) != s.dimension {
			return apperr.Internal(nil, "embedding dimension mismatch: expected %d, got %d", s.dimension, len(c.Vector))
		}

		if _, err := tx.Exec(ctx, `
INSERT INTO chunks (id, document_id, vault_id, ordinal, text, token_count, title, source, embedding, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
			uuid.NewString(), documentID, vaultID, c.Ordinal, c.Text, c.TokenCount,
			denorm.Title, denorm.Source, pgvector.NewVector(c.Vector),
		); err != nil {
			return apperr.StoreUnavailable(err, "insert chunk")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.StoreUnavailable(err, "commit chunk upsert")
	}

	return nil
}

// Search returns the topK chunks closest to queryVector under the given
// filter, ordered by score descending, ties broken by smaller ordinal
// then smaller documentID (§4.2).
func (s *Store) Search(ctx context.Context, queryVector []float32, topK int, filter SearchFilter) ([]SearchResult, error) {
	if len(queryVector) != s.dimension {
		return nil, apperr.Internal(nil, "query embedding dimension mismatch: expected %d, got %d", s.dimension, len(queryVector))
	}
	if topK < 0 {
		return nil, apperr.Validation("top_k must not be negative")
	}
	if topK == 0 {
		return nil, nil
	}

	vec := pgvector.NewVector(queryVector)

	var (
		rows pgx.Rows
		err  error
	)

	if filter.VaultID != nil {
		rows, err = s.pool.Query(ctx, `
SELECT id, document_id, title, text, ordinal, 1 - (embedding <=> $1) AS score
FROM chunks
WHERE vault_id = $2
ORDER BY score DESC, ordinal ASC, document_id ASC
LIMIT $3`, vec, *filter.VaultID, topK)
	} else {
		rows, err = s.pool.Query(ctx, `
SELECT id, document_id, title, text, ordinal, 1 - (embedding <=> $1) AS score
FROM chunks
WHERE vault_id IS NULL
ORDER BY score DESC, ordinal ASC, document_id ASC
LIMIT $2`, vec, topK)
	}
	if err != nil {
		return nil, apperr.StoreUnavailable(err, "search chunks")
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			id, documentID, title, text string
			ordinal                     int
			score                       float32
		)
		if err := rows.Scan(&id, &documentID, &title, &text, &ordinal, &score); err != nil {
			return nil, apperr.StoreUnavailable(err, "scan search result")
		}
		results = append(results, SearchResult{
			ChunkID:    id,
			DocumentID: documentID,
			Title:      title,
			Snippet:    Snippet(text),
			Score:      score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreUnavailable(err, "iterate search results")
	}

	return results, nil
}

// DeleteByDocument removes all chunks for a document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return apperr.StoreUnavailable(err, "delete chunks by document")
	}
	return nil
}

// DeleteByVault removes all chunks denormalized with the given vault.
// Idempotent: deleting an already-empty vault succeeds.
func (s *Store) DeleteByVault(ctx context.Context, vaultID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chunks WHERE vault_id = $1`, vaultID)
	if err != nil {
		return apperr.StoreUnavailable(err, "delete chunks by vault")
	}
	return nil
}

// CountByDocument returns how many chunks a document currently has.
func (s *Store) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM chunks WHERE document_id = $1`, documentID).Scan(&n); err != nil {
		return 0, apperr.StoreUnavailable(err, "count chunks")
	}
	return n, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Snippet returns the first 200 characters of text with surrounding
// whitespace collapsed; shorter text is returned in full (§4.2).
func Snippet(text string) string {
	collapsed := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	runes := []rune(collapsed)
	if len(runes) <= 200 {
		return collapsed
	}
	return strings.TrimSpace(string(runes[:200]))
}
