// Package metastore persists the logical entities — vaults, documents,
// sessions, messages, agents — and enforces their referential integrity
// and cascade-deletion invariants (§3, §4.5).
package metastore

import "time"

// Vault is a tenant-scoped namespace. Name is unique across live vaults.
type Vault struct {
	ID            string
	Name          string
	Description   string
	CreatedAt     time.Time
	DocumentCount int
}

// Document is an ingested text unit owned by at most one vault.
type Document struct {
	ID         string
	VaultID    *string
	Title      string
	Source     string
	Metadata   map[string]any
	CreatedAt  time.Time
	ChunkCount int
}

// Session is a caller-identified conversation thread.
type Session struct {
	ID           string
	UserID       *string
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Role enumerates the allowed values of Message.Role (§3 role constraint).
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single append-only turn in a session's history.
type Message struct {
	ID        string
	SessionID string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Agent is a named system-prompt configuration bound to a vault.
type Agent struct {
	ID           string
	Name         string
	VaultID      string
	SystemPrompt string
	CreatedAt    time.Time
}
