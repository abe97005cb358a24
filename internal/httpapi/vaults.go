package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ragvault/ragvault/internal/metastore"
)

type vaultResponse struct {
	ID            string `json:"vault_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	CreatedAt     string `json:"created_at"`
	DocumentCount int    `json:"document_count"`
}

func vaultToResponse(v metastore.Vault) vaultResponse {
	return vaultResponse{
		ID:            v.ID,
		Name:          v.Name,
		Description:   v.Description,
		CreatedAt:     v.CreatedAt.Format(timeFormat),
		DocumentCount: v.DocumentCount,
	}
}

type createVaultRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateVault(w http.ResponseWriter, r *http.Request) {
	var req createVaultRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, validationError("name is required"))
		return
	}

	v, err := s.vaults.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vaultToResponse(v))
}

func (s *Server) handleListVaults(w http.ResponseWriter, r *http.Request) {
	vaults, err := s.vaults.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]vaultResponse, len(vaults))
	for i, v := range vaults {
		out[i] = vaultToResponse(v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetVault(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := s.vaults.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vaultToResponse(v))
}

func (s *Server) handleDeleteVault(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.vaults.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vault_id": id, "status": "deleted"})
}
