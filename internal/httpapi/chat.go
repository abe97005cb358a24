package httpapi

import (
	"net/http"

	"github.com/ragvault/ragvault/internal/retrieval"
)

type chatConfig struct {
	TopK        *int     `json:"top_k"`
	Temperature *float32 `json:"temperature"`
}

type chatRequest struct {
	SessionID string      `json:"session_id"`
	Message   string      `json:"message"`
	UserID    *string     `json:"user_id"`
	VaultID   *string     `json:"vault_id"`
	Config    *chatConfig `json:"config"`
}

type sourceResponse struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	Score      float32 `json:"score"`
}

type chatResponse struct {
	SessionID string           `json:"session_id"`
	Answer    string           `json:"answer"`
	Sources   []sourceResponse `json:"sources"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SessionID == "" {
		writeError(w, validationError("session_id is required"))
		return
	}
	if req.Message == "" {
		writeError(w, validationError("message is required"))
		return
	}

	var opts retrieval.Options
	if req.Config != nil {
		if req.Config.TopK != nil {
			opts.TopK = *req.Config.TopK
		}
		if req.Config.Temperature != nil {
			opts.Temperature = *req.Config.Temperature
		}
	}

	reply, err := s.retrieval.Chat(r.Context(), req.SessionID, req.Message, req.UserID, req.VaultID, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	sources := make([]sourceResponse, len(reply.Sources))
	for i, src := range reply.Sources {
		sources[i] = sourceResponse{
			DocumentID: src.DocumentID,
			Title:      src.Title,
			Snippet:    src.Snippet,
			Score:      src.Score,
		}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: reply.SessionID,
		Answer:    reply.Answer,
		Sources:   sources,
	})
}
