package metastore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ragvault/ragvault/internal/apperr"
)

// AppendMessage inserts an append-only message row.
func (s *Store) AppendMessage(ctx context.Context, sessionID string, role Role, content string) (Message, error) {
	m := Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, session_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.SessionID, string(m.Role), m.Content, m.CreatedAt,
	)
	if err != nil {
		return Message{}, apperr.StoreUnavailable(err, "append message")
	}

	return m, nil
}

// RecentMessages returns the last limit messages for a session in
// ascending chronological order (§4.6 step 2: the short-term memory).
func (s *Store) RecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, session_id, role, content, created_at FROM (
	SELECT id, session_id, role, content, created_at
	FROM messages
	WHERE session_id = $1
	ORDER BY created_at DESC
	LIMIT $2
) recent
ORDER BY created_at ASC`, sessionID, limit)
	if err != nil {
		return nil, apperr.StoreUnavailable(err, "load recent messages")
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var role string
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, apperr.StoreUnavailable(err, "scan message")
		}
		m.Role = Role(role)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreUnavailable(err, "iterate messages")
	}

	return messages, nil
}
