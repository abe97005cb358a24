package metastore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ragvault/ragvault/internal/apperr"
)

// CreateDocument inserts a document row. vaultID is nil for global
// documents (§9a).
func (s *Store) CreateDocument(ctx context.Context, vaultID *string, title, source string, metadata map[string]any) (Document, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return Document{}, apperr.Internal(err, "marshal document metadata")
	}

	d := Document{
		ID:        uuid.NewString(),
		VaultID:   vaultID,
		Title:     title,
		Source:    source,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, vault_id, title, source, metadata, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.VaultID, d.Title, d.Source, raw, d.CreatedAt,
	)
	if err != nil {
		return Document{}, apperr.StoreUnavailable(err, "create document")
	}

	return d, nil
}

// DeleteDocument removes a document row. Caller must also invoke the
// Vector Store's deleteByDocument.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return apperr.StoreUnavailable(err, "delete document")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("document %q not found", id)
	}
	return nil
}

// GetDocument returns a document's metadata and its live chunk count.
func (s *Store) GetDocument(ctx context.Context, id string, chunkCount func(ctx context.Context, documentID string) (int, error)) (Document, error) {
	var d Document
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, vault_id, title, source, metadata, created_at FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.VaultID, &d.Title, &d.Source, &raw, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, apperr.NotFound("document %q not found", id)
	}
	if err != nil {
		return Document{}, apperr.StoreUnavailable(err, "get document")
	}
	if err := json.Unmarshal(raw, &d.Metadata); err != nil {
		return Document{}, apperr.Internal(err, "unmarshal document metadata")
	}

	if chunkCount != nil {
		n, err := chunkCount(ctx, d.ID)
		if err != nil {
			return Document{}, err
		}
		d.ChunkCount = n
	}

	return d, nil
}

// ListDocuments returns documents optionally filtered by vaultID, paged
// by limit/offset, plus the total count matching the filter.
func (s *Store) ListDocuments(ctx context.Context, vaultID *string, limit, offset int) ([]Document, int, error) {
	var (
		rows pgx.Rows
		err  error
		total int
	)

	if vaultID != nil {
		if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM documents WHERE vault_id = $1`, *vaultID).Scan(&total); err != nil {
			return nil, 0, apperr.StoreUnavailable(err, "count documents")
		}
		rows, err = s.pool.Query(ctx,
			`SELECT id, vault_id, title, source, metadata, created_at FROM documents
			 WHERE vault_id = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
			*vaultID, limit, offset)
	} else {
		if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&total); err != nil {
			return nil, 0, apperr.StoreUnavailable(err, "count documents")
		}
		rows, err = s.pool.Query(ctx,
			`SELECT id, vault_id, title, source, metadata, created_at FROM documents
			 ORDER BY created_at ASC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, 0, apperr.StoreUnavailable(err, "list documents")
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var raw []byte
		if err := rows.Scan(&d.ID, &d.VaultID, &d.Title, &d.Source, &raw, &d.CreatedAt); err != nil {
			return nil, 0, apperr.StoreUnavailable(err, "scan document")
		}
		if err := json.Unmarshal(raw, &d.Metadata); err != nil {
			return nil, 0, apperr.Internal(err, "unmarshal document metadata")
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.StoreUnavailable(err, "iterate documents")
	}

	return docs, total, nil
}
