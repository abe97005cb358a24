package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ragvault/ragvault/internal/metastore"
)

type documentResponse struct {
	ID         string         `json:"id"`
	VaultID    *string        `json:"vault_id"`
	Title      string         `json:"title"`
	Source     string         `json:"source"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  string         `json:"created_at"`
	ChunkCount int            `json:"chunk_count"`
}

func documentToResponse(d metastore.Document) documentResponse {
	return documentResponse{
		ID:         d.ID,
		VaultID:    d.VaultID,
		Title:      d.Title,
		Source:     d.Source,
		Metadata:   d.Metadata,
		CreatedAt:  d.CreatedAt.Format(timeFormat),
		ChunkCount: d.ChunkCount,
	}
}

type documentListResponse struct {
	Documents []documentResponse `json:"documents"`
	Total     int                `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	vaultID := optionalVaultID(r)
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	docs, total, err := s.documents.List(r.Context(), vaultID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]documentResponse, len(docs))
	for i, d := range docs {
		out[i] = documentToResponse(d)
	}
	writeJSON(w, http.StatusOK, documentListResponse{Documents: out, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := s.documents.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(d))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.documents.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "document deleted", "document_id": id})
}
