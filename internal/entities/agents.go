package entities

import (
	"context"

	"github.com/ragvault/ragvault/internal/metastore"
)

// AgentMetaStore is the slice of the Metadata Store agent operations
// need.
type AgentMetaStore interface {
	CreateAgent(ctx context.Context, name, vaultID, systemPrompt string) (metastore.Agent, error)
	GetAgent(ctx context.Context, id string) (metastore.Agent, error)
	ListAgents(ctx context.Context, vaultID *string) ([]metastore.Agent, error)
	DeleteAgent(ctx context.Context, id string) error
	VaultExists(ctx context.Context, id string) (bool, error)
}

// Agents implements the agent service of §4.5. Uniqueness on
// (name, vault_id) and NotFound-on-missing-delete are enforced by the
// Metadata Store; deleting the owning vault cascades to its agents via
// the foreign key declared in the metadata schema.
type Agents struct {
	meta AgentMetaStore
}

// NewAgents constructs an Agents service.
func NewAgents(meta AgentMetaStore) *Agents {
	return &Agents{meta: meta}
}

// Create inserts a new agent. vaultID must reference a live vault;
// (name, vaultID) must be unique.
func (a *Agents) Create(ctx context.Context, name, vaultID, systemPrompt string) (metastore.Agent, error) {
	if exists, err := a.meta.VaultExists(ctx, vaultID); err != nil {
		return metastore.Agent{}, err
	} else if !exists {
		return metastore.Agent{}, notFoundVault(vaultID)
	}
	return a.meta.CreateAgent(ctx, name, vaultID, systemPrompt)
}

// Get returns a single agent.
func (a *Agents) Get(ctx context.Context, id string) (metastore.Agent, error) {
	return a.meta.GetAgent(ctx, id)
}

// List returns agents optionally filtered by vaultID.
func (a *Agents) List(ctx context.Context, vaultID *string) ([]metastore.Agent, error) {
	return a.meta.ListAgents(ctx, vaultID)
}

// Delete removes an agent. NotFound when the agent does not exist.
func (a *Agents) Delete(ctx context.Context, id string) error {
	return a.meta.DeleteAgent(ctx, id)
}
