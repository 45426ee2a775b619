package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route string
	status        int
}

type recordingHTTP struct {
	mu     sync.Mutex
	obs    []observation
	active int
	peak   int
}

func (r *recordingHTTP) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{method, route, status})
}

func (r *recordingHTTP) IncActiveRequests() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active++
	if r.active > r.peak {
		r.peak = r.active
	}
}

func (r *recordingHTTP) DecActiveRequests() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
}

func TestMetrics_RoutePatternLabel(t *testing.T) {
	rec := &recordingHTTP{}
	r := chi.NewRouter()
	r.Use(Metrics(rec))
	r.Get("/api/v1/claims/{externalId}/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/claims/abc/dashboard", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/claims/def/dashboard", nil))

	require.Len(t, rec.obs, 2)
	for _, o := range rec.obs {
		assert.Equal(t, observation{http.MethodGet, "/api/v1/claims/{externalId}/dashboard", http.StatusNotFound}, o)
	}
	assert.Equal(t, 0, rec.active)
	assert.Equal(t, 1, rec.peak)
}

func TestMetrics_Unmatched(t *testing.T) {
	rec := &recordingHTTP{}
	h := Metrics(rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, rec.obs, 1)
	assert.Equal(t, "unmatched", rec.obs[0].route)
	assert.Equal(t, http.StatusOK, rec.obs[0].status)
}
