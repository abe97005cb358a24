package metastore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ragvault/ragvault/internal/apperr"
)

// GetOrCreateSession returns the existing session or creates it with an
// empty history. The id is caller-chosen (§4.5).
func (s *Store) GetOrCreateSession(ctx context.Context, id string, userID *string) (Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at, last_active_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.LastActiveAt)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Session{}, apperr.StoreUnavailable(err, "get session")
	}

	now := time.Now().UTC()
	sess = Session{ID: id, UserID: userID, CreatedAt: now, LastActiveAt: now}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, last_active_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		sess.ID, sess.UserID, sess.CreatedAt, sess.LastActiveAt,
	)
	if err != nil {
		return Session{}, apperr.StoreUnavailable(err, "create session")
	}

	// Another concurrent call may have just won the race; re-read so both
	// callers observe the same row.
	if err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at, last_active_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.LastActiveAt); err != nil {
		return Session{}, apperr.StoreUnavailable(err, "reload session")
	}

	return sess, nil
}

// UpdateLastActive bumps a session's last_active_at to the current time.
// last_active_at is monotonically non-decreasing per session (§3); the
// GREATEST guard keeps that true even if clock skew reorders concurrent
// writers.
func (s *Store) UpdateLastActive(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sessions SET last_active_at = GREATEST(last_active_at, $2) WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return apperr.StoreUnavailable(err, "update session last_active_at")
	}
	return nil
}
