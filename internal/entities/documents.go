package entities

import (
	"context"

	"github.com/ragvault/ragvault/internal/metastore"
)

// DocumentVectorStore is the slice of the Vector Store document
// operations need.
type DocumentVectorStore interface {
	DeleteByDocument(ctx context.Context, documentID string) error
	CountByDocument(ctx context.Context, documentID string) (int, error)
}

// DocumentMetaStore is the slice of the Metadata Store document
// operations need.
type DocumentMetaStore interface {
	GetDocument(ctx context.Context, id string, chunkCount func(ctx context.Context, documentID string) (int, error)) (metastore.Document, error)
	ListDocuments(ctx context.Context, vaultID *string, limit, offset int) ([]metastore.Document, int, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Documents implements the document service of §4.5.
type Documents struct {
	meta    DocumentMetaStore
	vectors DocumentVectorStore
}

// NewDocuments constructs a Documents service.
func NewDocuments(meta DocumentMetaStore, vectors DocumentVectorStore) *Documents {
	return &Documents{meta: meta, vectors: vectors}
}

// Get returns a document's metadata plus its live chunk count.
func (d *Documents) Get(ctx context.Context, id string) (metastore.Document, error) {
	return d.meta.GetDocument(ctx, id, d.vectors.CountByDocument)
}

// List returns documents optionally filtered by vaultID, paged.
func (d *Documents) List(ctx context.Context, vaultID *string, limit, offset int) ([]metastore.Document, int, error) {
	return d.meta.ListDocuments(ctx, vaultID, limit, offset)
}

// Delete removes a document's chunks/embeddings, then its metadata row.
func (d *Documents) Delete(ctx context.Context, id string) error {
	if _, err := d.meta.GetDocument(ctx, id, nil); err != nil {
		return err
	}

	if err := d.vectors.DeleteByDocument(ctx, id); err != nil {
		return err
	}

	return d.meta.DeleteDocument(ctx, id)
}
