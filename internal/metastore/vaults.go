package metastore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ragvault/ragvault/internal/apperr"
)

const uniqueViolation = "23505"

// CreateVault inserts a new vault. A duplicate name yields Conflict.
func (s *Store) CreateVault(ctx context.Context, name, description string) (Vault, error) {
	v := Vault{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO vaults (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		v.ID, v.Name, v.Description, v.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Vault{}, apperr.Conflict("a vault named %q already exists", name)
		}
		return Vault{}, apperr.StoreUnavailable(err, "create vault")
	}

	return v, nil
}

// GetVault returns a single vault with its live document_count, computed
// at query time rather than a denormalized counter.
func (s *Store) GetVault(ctx context.Context, id string) (Vault, error) {
	var v Vault
	err := s.pool.QueryRow(ctx, `
SELECT v.id, v.name, v.description, v.created_at,
       (SELECT count(*) FROM documents d WHERE d.vault_id = v.id) AS document_count
FROM vaults v
WHERE v.id = $1`, id).Scan(&v.ID, &v.Name, &v.Description, &v.CreatedAt, &v.DocumentCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vault{}, apperr.NotFound("vault %q not found", id)
	}
	if err != nil {
		return Vault{}, apperr.StoreUnavailable(err, "get vault")
	}
	return v, nil
}

// ListVaults returns every vault with its live document_count.
func (s *Store) ListVaults(ctx context.Context) ([]Vault, error) {
	rows, err := s.pool.Query(ctx, `
SELECT v.id, v.name, v.description, v.created_at,
       (SELECT count(*) FROM documents d WHERE d.vault_id = v.id) AS document_count
FROM vaults v
ORDER BY v.created_at ASC`)
	if err != nil {
		return nil, apperr.StoreUnavailable(err, "list vaults")
	}
	defer rows.Close()

	var vaults []Vault
	for rows.Next() {
		var v Vault
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.CreatedAt, &v.DocumentCount); err != nil {
			return nil, apperr.StoreUnavailable(err, "scan vault")
		}
		vaults = append(vaults, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreUnavailable(err, "iterate vaults")
	}

	return vaults, nil
}

// VaultExists reports whether a live vault with the given id exists.
func (s *Store) VaultExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM vaults WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperr.StoreUnavailable(err, "check vault existence")
	}
	return exists, nil
}

// DeleteVaultCascade deletes the vault row in a single transaction; its
// documents and agents are removed with it by the ON DELETE CASCADE
// foreign keys of the metadata schema. Embeddings must already have
// been removed by the Vector Store before this is called (§4.5): the
// caller is the entities.Vaults service, which orders these two calls so
// that a crash between them converges to fully deleted on retry, since
// both operations are idempotent.
func (s *Store) DeleteVaultCascade(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.StoreUnavailable(err, "begin vault delete transaction")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM vaults WHERE id = $1`, id)
	if err != nil {
		return apperr.StoreUnavailable(err, "delete vault")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("vault %q not found", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.StoreUnavailable(err, "commit vault delete")
	}

	return nil
}
