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

// CreateAgent inserts an agent. (name, vaultID) must be unique (§3).
func (s *Store) CreateAgent(ctx context.Context, name, vaultID, systemPrompt string) (Agent, error) {
	a := Agent{
		ID:           uuid.NewString(),
		Name:         name,
		VaultID:      vaultID,
		SystemPrompt: systemPrompt,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO agents (id, name, vault_id, system_prompt, created_at) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Name, a.VaultID, a.SystemPrompt, a.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Agent{}, apperr.Conflict("agent %q already exists in vault %q", name, vaultID)
		}
		return Agent{}, apperr.StoreUnavailable(err, "create agent")
	}

	return a, nil
}

// GetAgent returns a single agent.
func (s *Store) GetAgent(ctx context.Context, id string) (Agent, error) {
	var a Agent
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, vault_id, system_prompt, created_at FROM agents WHERE id = $1`, id,
	).Scan(&a.ID, &a.Name, &a.VaultID, &a.SystemPrompt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, apperr.NotFound("agent %q not found", id)
	}
	if err != nil {
		return Agent{}, apperr.StoreUnavailable(err, "get agent")
	}
	return a, nil
}

// ListAgents returns agents optionally filtered by vaultID.
func (s *Store) ListAgents(ctx context.Context, vaultID *string) ([]Agent, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if vaultID != nil {
		rows, err = s.pool.Query(ctx,
			`SELECT id, name, vault_id, system_prompt, created_at FROM agents WHERE vault_id = $1 ORDER BY name ASC`,
			*vaultID)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, name, vault_id, system_prompt, created_at FROM agents ORDER BY name ASC`)
	}
	if err != nil {
		return nil, apperr.StoreUnavailable(err, "list agents")
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.VaultID, &a.SystemPrompt, &a.CreatedAt); err != nil {
			return nil, apperr.StoreUnavailable(err, "scan agent")
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreUnavailable(err, "iterate agents")
	}

	return agents, nil
}

// DeleteAgent removes an agent. NotFound if it does not exist (§4.5).
func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return apperr.StoreUnavailable(err, "delete agent")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("agent %q not found", id)
	}
	return nil
}
