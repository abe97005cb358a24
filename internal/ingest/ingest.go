// Package ingest orchestrates the write path: validate vault, chunk,
// embed, and persist atomically (§4.4).
package ingest

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ragvault/ragvault/internal/apperr"
	"github.com/ragvault/ragvault/internal/chunker"
	"github.com/ragvault/ragvault/internal/metastore"
	"github.com/ragvault/ragvault/internal/provider"
	"github.com/ragvault/ragvault/internal/vectorstore"
)

// MetadataStore is the slice of the Metadata Store the pipeline needs.
type MetadataStore interface {
	VaultExists(ctx context.Context, id string) (bool, error)
	CreateDocument(ctx context.Context, vaultID *string, title, source string, metadata map[string]any) (metastore.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// VectorWriter is the slice of the Vector Store the pipeline needs.
type VectorWriter interface {
	UpsertChunks(ctx context.Context, documentID string, vaultID *string, denorm vectorstore.DenormMetadata, chunks []vectorstore.ChunkInput) error
}

// Pipeline wires the chunker, embedder, metadata store, and vector store
// together for the ingest operation.
type Pipeline struct {
	meta     MetadataStore
	vectors  VectorWriter
	embedder provider.Embedder
	chunkOpt chunker.Options
	logger   *zap.Logger
}

// New constructs a Pipeline.
func New(meta MetadataStore, vectors VectorWriter, embedder provider.Embedder, chunkOpt chunker.Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{meta: meta, vectors: vectors, embedder: embedder, chunkOpt: chunkOpt, logger: logger}
}

// Result is the outcome of a successful ingest.
type Result struct {
	DocumentID string
}

// Ingest validates inputs, chunks the text, embeds the chunks, and
// persists the document + its chunk embeddings atomically (§4.4).
func (p *Pipeline) Ingest(ctx context.Context, text, title, source string, vaultID *string, metadata map[string]any) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, apperr.Validation("document text must not be empty")
	}

	if vaultID != nil {
		exists, err := p.meta.VaultExists(ctx, *vaultID)
		if err != nil {
			return Result{}, err
		}
		if !exists {
			return Result{}, apperr.NotFound("vault %q not found", *vaultID)
		}
	}

	chunks := chunker.Split(text, p.chunkOpt)
	if len(chunks) == 0 {
		return Result{}, apperr.Validation("document text must not be empty")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return Result{}, err
	}
	if len(vectors) != len(chunks) {
		return Result{}, apperr.Internal(nil, "embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	doc, err := p.meta.CreateDocument(ctx, vaultID, title, source, metadata)
	if err != nil {
		return Result{}, err
	}

	inputs := make([]vectorstore.ChunkInput, len(chunks))
	for i, c := range chunks {
		inputs[i] = vectorstore.ChunkInput{
			Ordinal:    c.Ordinal,
			Text:       c.Text,
			TokenCount: c.TokenCount,
			Vector:     vectors[i],
		}
	}

	denorm := vectorstore.DenormMetadata{Title: title, Source: source}
	if err := p.vectors.UpsertChunks(ctx, doc.ID, vaultID, denorm, inputs); err != nil {
		// Compensate: the document row must not survive without its
		// chunks (§4.4 step 5).
		if delErr := p.meta.DeleteDocument(ctx, doc.ID); delErr != nil {
			p.logger.Error("failed to compensate document after chunk upsert failure",
				zap.String("document_id", doc.ID), zap.Error(delErr), zap.NamedError("upsert_error", err))
		}
		return Result{}, err
	}

	return Result{DocumentID: doc.ID}, nil
}
