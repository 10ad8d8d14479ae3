package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zylker/failwatch/internal/ai"
	"github.com/zylker/failwatch/internal/api/response"
	"github.com/zylker/failwatch/internal/normalize"
	"github.com/zylker/failwatch/pkg/models"
)

// Asker is the chat interface the handler depends on.
type Asker interface {
	Ask(ctx context.Context, rec models.FailureRecord, question string) (*ai.ChatAnswer, error)
}

type chatRequest struct {
	Record       map[string]any `json:"record"`
	SourceModule string         `json:"source_module"`
	Question     string         `json:"question"`
}

// NewChatHandler returns an http.HandlerFunc for POST /api/v1/chat.
func NewChatHandler(svc Asker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Record == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "record is required", nil)
			return
		}

		rec := normalize.Normalize(req.Record, req.SourceModule)

		answer, err := svc.Ask(r.Context(), rec, req.Question)
		switch {
		case errors.Is(err, ai.ErrEmptyQuestion):
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "question is required", nil)
			return
		case errors.Is(err, ai.ErrInferenceTimeout):
			response.Error(w, http.StatusGatewayTimeout, "INFERENCE_TIMEOUT", "The assistant took too long to answer", nil)
			return
		case err != nil:
			response.Error(w, http.StatusBadGateway, "PROVIDER_ERROR", "The assistant is unavailable", nil)
			return
		}

		response.JSON(w, answer)
	}
}
