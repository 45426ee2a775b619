package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okCheck(name string) HealthChecker {
	return CheckFunc{Component: name, Fn: func(context.Context) error { return nil }}
}

func failingCheck(name string) HealthChecker {
	return CheckFunc{Component: name, Fn: func(context.Context) error { return errors.New("connection refused") }}
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler("1.2.3", nil, failingCheck("postgres"))
	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestReadiness_NoCheckers(t *testing.T) {
	h := NewHealthHandler("dev", nil)
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready"`)
}

func TestReadiness_AllHealthy(t *testing.T) {
	h := NewHealthHandler("dev", nil, okCheck("postgres"), okCheck("redis"))
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "healthy", resp.Components["postgres"].Status)
	assert.Equal(t, "healthy", resp.Components["redis"].Status)
}

func TestReadiness_OneUnhealthy(t *testing.T) {
	var (
		mu       sync.Mutex
		observed = map[string]bool{}
	)
	observe := func(component string, up bool) {
		mu.Lock()
		observed[component] = up
		mu.Unlock()
	}

	h := NewHealthHandler("dev", observe, okCheck("postgres"), failingCheck("redis"))
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["redis"].Status)
	assert.Equal(t, "connection refused", resp.Components["redis"].Error)
	assert.Equal(t, map[string]bool{"postgres": true, "redis": false}, observed)
}
