// Package handler contains the HTTP handlers for the FailWatch API.
package handler

import (
	"context"
	"net/http"

	"github.com/zylker/failwatch/internal/api/response"
	"github.com/zylker/failwatch/internal/hierarchy"
	"github.com/zylker/failwatch/pkg/models"
)

// Fetcher is the aggregation interface the failures handler depends on.
type Fetcher interface {
	FetchAll(ctx context.Context, skipCacheRead bool) []models.FailureRecord
}

// NewFailuresHandler returns an http.HandlerFunc for GET /api/v1/failures.
// ?refresh=true bypasses cache reads (fresh pages are still written back).
func NewFailuresHandler(fetcher Fetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refresh := r.URL.Query().Get("refresh") == "true"

		records := fetcher.FetchAll(r.Context(), refresh)
		forest := hierarchy.Build(records)

		response.JSON(w, map[string]any{
			"applications": forest,
			"total":        len(records),
		})
	}
}
