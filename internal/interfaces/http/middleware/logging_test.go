package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/claimtrack/internal/testutil"
)

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte("body"))
	})
}

func serveLogged(logger *testutil.MockLogger, cfg LoggingConfig, h http.Handler, target string) {
	chain := chimw.RequestID(RequestLogging(logger, cfg)(h))
	chain.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
}

func TestRequestLogging_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
		msg    string
	}{
		{http.StatusOK, "info", "HTTP request completed"},
		{http.StatusNotFound, "warn", "HTTP request completed with client error"},
		{http.StatusBadGateway, "error", "HTTP request completed with server error"},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			logger := testutil.NewMockLogger()
			serveLogged(logger, DefaultLoggingConfig(), statusHandler(tc.status), "/api/v1/states")

			require.True(t, logger.HasMessage(tc.level, tc.msg), "%+v", logger.GetMessages())
			status, ok := logger.FieldValue(tc.msg, "status")
			require.True(t, ok)
			assert.Equal(t, tc.status, status)
			bytes, _ := logger.FieldValue(tc.msg, "bytes")
			assert.Equal(t, 4, bytes)
		})
	}
}

func TestRequestLogging_RequestIDAndViewer(t *testing.T) {
	logger := testutil.NewMockLogger()
	serveLogged(logger, DefaultLoggingConfig(), statusHandler(http.StatusOK), "/api/v1/claims/x/dashboard?viewer=claimant")

	id, ok := logger.FieldValue("HTTP request completed", "request_id")
	require.True(t, ok)
	assert.NotEmpty(t, id)
	viewer, _ := logger.FieldValue("HTTP request completed", "viewer")
	assert.Equal(t, "claimant", viewer)
	path, _ := logger.FieldValue("HTTP request completed", "path")
	assert.Equal(t, "/api/v1/claims/x/dashboard", path)
}

func TestRequestLogging_SkipPaths(t *testing.T) {
	logger := testutil.NewMockLogger()
	serveLogged(logger, DefaultLoggingConfig(), statusHandler(http.StatusOK), "/healthz")
	assert.Empty(t, logger.GetMessages())
}

func TestRequestLogging_Slow(t *testing.T) {
	logger := testutil.NewMockLogger()
	slow := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	serveLogged(logger, LoggingConfig{SlowThreshold: time.Millisecond}, slow, "/api/v1/states")
	assert.True(t, logger.HasMessage("warn", "HTTP request completed (slow)"))
}

func TestRequestLogging_ImplicitOK(t *testing.T) {
	logger := testutil.NewMockLogger()
	noWrite := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	serveLogged(logger, DefaultLoggingConfig(), noWrite, "/api/v1/states")

	status, ok := logger.FieldValue("HTTP request completed", "status")
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
}
