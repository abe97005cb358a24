package metastore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Metadata Store: vaults, documents, sessions, messages, and
// agents, backed by Postgres. It shares its connection pool with the
// Vector Store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps pool and ensures the metadata schema exists.
func NewStore(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS vaults (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	vault_id UUID REFERENCES vaults(id) ON DELETE CASCADE,
	title TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS documents_vault_idx ON documents (vault_id);
CREATE INDEX IF NOT EXISTS documents_created_at_idx ON documents (created_at);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_active_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS sessions_last_active_idx ON sessions (last_active_at);

CREATE TABLE IF NOT EXISTS messages (
	id UUID PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	role TEXT NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS messages_session_created_idx ON messages (session_id, created_at DESC);

CREATE TABLE IF NOT EXISTS agents (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	vault_id UUID NOT NULL REFERENCES vaults(id) ON DELETE CASCADE,
	system_prompt TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (vault_id, name)
);

CREATE INDEX IF NOT EXISTS agents_vault_name_idx ON agents (vault_id, name);
`

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure metadata schema: %w", err)
	}
	return nil
}
