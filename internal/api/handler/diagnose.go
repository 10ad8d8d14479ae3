package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zylker/failwatch/internal/api/response"
	"github.com/zylker/failwatch/internal/classify"
	"github.com/zylker/failwatch/internal/diagnose"
	"github.com/zylker/failwatch/internal/normalize"
	"github.com/zylker/failwatch/pkg/deeplink"
)

// diagnoseRequest carries a raw record exactly as the dashboard received
// it from upstream; the server normalizes it before composing.
type diagnoseRequest struct {
	Record       map[string]any `json:"record"`
	SourceModule string         `json:"source_module"`
	Query        string         `json:"query"`
}

// NewDiagnoseHandler returns an http.HandlerFunc for POST /api/v1/diagnose.
func NewDiagnoseHandler(links deeplink.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req diagnoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Record == nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "record is required", nil)
			return
		}

		rec := normalize.Normalize(req.Record, req.SourceModule)
		diagnosis := diagnose.Compose(rec, req.Query)
		matches := classify.Classify(rec)

		response.JSON(w, map[string]any{
			"diagnosis":      diagnosis,
			"matches":        matches,
			"log_search_url": links.SearchURL(rec.FlowType, rec.ThreadID, rec.RequestID),
		})
	}
}
