package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stub(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

func TestRouter_Routes(t *testing.T) {
	router := NewRouter(Dependencies{
		HealthHandler:     stub(http.StatusOK),
		FailuresHandler:   stub(http.StatusOK),
		DiagnoseHandler:   stub(http.StatusOK),
		ChatHandler:       stub(http.StatusOK),
		ClearCacheHandler: stub(http.StatusOK),
		MetricsHandler:    stub(http.StatusOK),
	})

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/failures", http.StatusOK},
		{http.MethodPost, "/api/v1/diagnose", http.StatusOK},
		{http.MethodPost, "/api/v1/chat", http.StatusOK},
		{http.MethodDelete, "/api/v1/cache", http.StatusOK},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
		{http.MethodPost, "/api/v1/failures", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, rr.Code, "%s %s", tc.method, tc.path)
		})
	}
}

func TestRouter_MissingHandlerIs501(t *testing.T) {
	router := NewRouter(Dependencies{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/failures", nil))

	assert.Equal(t, http.StatusNotImplemented, rr.Code)
	assert.Contains(t, rr.Body.String(), "NOT_IMPLEMENTED")
}

func TestRouter_SetsRequestID(t *testing.T) {
	router := NewRouter(Dependencies{HealthHandler: stub(http.StatusOK)})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}
