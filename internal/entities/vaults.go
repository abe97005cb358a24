// Package entities composes the Metadata Store and Vector Store into the
// cross-store orchestration the spec's Entity Services need: cascade
// delete ordering, uniqueness, and cross-entity invariants (§4.5).
package entities

import (
	"context"

	"github.com/ragvault/ragvault/internal/metastore"
)

// VaultVectorDeleter is the slice of the Vector Store vault deletion
// needs.
type VaultVectorDeleter interface {
	DeleteByVault(ctx context.Context, vaultID string) error
}

// VaultMetaStore is the slice of the Metadata Store vault operations
// need.
type VaultMetaStore interface {
	CreateVault(ctx context.Context, name, description string) (metastore.Vault, error)
	GetVault(ctx context.Context, id string) (metastore.Vault, error)
	ListVaults(ctx context.Context) ([]metastore.Vault, error)
	DeleteVaultCascade(ctx context.Context, id string) error
}

// Vaults implements the vault service of §4.5.
type Vaults struct {
	meta    VaultMetaStore
	vectors VaultVectorDeleter
}

// NewVaults constructs a Vaults service.
func NewVaults(meta VaultMetaStore, vectors VaultVectorDeleter) *Vaults {
	return &Vaults{meta: meta, vectors: vectors}
}

// Create inserts a new vault. A duplicate name yields Conflict.
func (v *Vaults) Create(ctx context.Context, name, description string) (metastore.Vault, error) {
	return v.meta.CreateVault(ctx, name, description)
}

// Get returns a single vault with its live document_count.
func (v *Vaults) Get(ctx context.Context, id string) (metastore.Vault, error) {
	return v.meta.GetVault(ctx, id)
}

// List returns every vault with its live document_count.
func (v *Vaults) List(ctx context.Context) ([]metastore.Vault, error) {
	return v.meta.ListVaults(ctx)
}

// Delete cascades a vault delete: the Vector Store's embeddings are
// removed first (idempotent), then the vault's documents and agents and
// the vault row itself are removed in one metadata transaction (cascade
// via foreign keys). Both steps are individually idempotent, so a crash
// between them converges to fully deleted on retry (§4.5, §5).
func (v *Vaults) Delete(ctx context.Context, id string) error {
	if _, err := v.meta.GetVault(ctx, id); err != nil {
		return err
	}

	if err := v.vectors.DeleteByVault(ctx, id); err != nil {
		return err
	}

	return v.meta.DeleteVaultCascade(ctx, id)
}
