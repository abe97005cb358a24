package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ragvault/ragvault/internal/metastore"
)

type agentResponse struct {
	ID           string `json:"agent_id"`
	Name         string `json:"name"`
	VaultID      string `json:"vault_id"`
	SystemPrompt string `json:"system_prompt"`
	CreatedAt    string `json:"created_at"`
}

func agentToResponse(a metastore.Agent) agentResponse {
	return agentResponse{
		ID:           a.ID,
		Name:         a.Name,
		VaultID:      a.VaultID,
		SystemPrompt: a.SystemPrompt,
		CreatedAt:    a.CreatedAt.Format(timeFormat),
	}
}

type createAgentRequest struct {
	Name         string `json:"name"`
	VaultID      string `json:"vault_id"`
	SystemPrompt string `json:"system_prompt"`
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		writeError(w, validationError("name is required"))
		return
	}
	if req.VaultID == "" {
		writeError(w, validationError("vault_id is required"))
		return
	}

	a, err := s.agents.Create(r.Context(), req.Name, req.VaultID, req.SystemPrompt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agentToResponse(a))
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	vaultID := optionalVaultID(r)
	agents, err := s.agents.List(r.Context(), vaultID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]agentResponse, len(agents))
	for i, a := range agents {
		out[i] = agentToResponse(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.agents.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agentToResponse(a))
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.agents.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "agent deleted"})
}
