package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/zylker/failwatch/internal/api/middleware"
	"github.com/zylker/failwatch/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler     http.HandlerFunc
	FailuresHandler   http.HandlerFunc
	DiagnoseHandler   http.HandlerFunc
	ChatHandler       http.HandlerFunc
	ClearCacheHandler http.HandlerFunc

	MetricsHandler http.Handler
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check and metrics
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// Rate-limited API
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Get("/api/v1/failures", orNotImplemented(deps.FailuresHandler))
		r.Post("/api/v1/diagnose", orNotImplemented(deps.DiagnoseHandler))
		r.Post("/api/v1/chat", orNotImplemented(deps.ChatHandler))
		r.Delete("/api/v1/cache", orNotImplemented(deps.ClearCacheHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
