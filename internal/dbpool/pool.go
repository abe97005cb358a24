// Package dbpool builds the single Postgres connection pool shared by the
// metadata store and the vector store (§5: "Vector Store may share the
// pool when co-located with the metadata store").
package dbpool

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open parses dsn and returns a pool sized between min and max
// connections.
func Open(ctx context.Context, dsn string, min, max int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if min > 0 {
		cfg.MinConns = int32(min)
	}
	if max > 0 {
		cfg.MaxConns = int32(max)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
