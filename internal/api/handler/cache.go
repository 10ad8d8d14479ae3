package handler

import (
	"net/http"

	"github.com/zylker/failwatch/internal/api/response"
	"github.com/zylker/failwatch/internal/cache"
)

// NewClearCacheHandler returns an http.HandlerFunc for DELETE
// /api/v1/cache, the dashboard's hard refresh.
func NewClearCacheHandler(c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := c.ClearAll(r.Context()); err != nil {
			response.Error(w, http.StatusInternalServerError, "CACHE_ERROR", "Failed to clear cache", nil)
			return
		}
		response.JSON(w, map[string]any{"cleared": true})
	}
}
