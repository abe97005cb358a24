package httpapi

import "net/http"

type ingestRequest struct {
	Text     string         `json:"text"`
	Title    string         `json:"title"`
	Source   string         `json:"source"`
	VaultID  *string        `json:"vault_id"`
	Metadata map[string]any `json:"metadata"`
}

type ingestResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Text == "" {
		writeError(w, validationError("text is required"))
		return
	}

	result, err := s.ingest.Ingest(r.Context(), req.Text, req.Title, req.Source, req.VaultID, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{DocumentID: result.DocumentID, Status: "indexed"})
}
