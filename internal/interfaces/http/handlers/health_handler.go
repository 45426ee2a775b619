package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is a dependency the readiness probe verifies.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc struct {
	Component string
	Fn        func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.Component }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// HealthObserver receives each readiness result, e.g. to export it as a gauge.
type HealthObserver func(component string, up bool)

type HealthHandler struct {
	checkers []HealthChecker
	observe  HealthObserver
	version  string
	startAt  time.Time
	timeout  time.Duration
}

func NewHealthHandler(version string, observe HealthObserver, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		observe:  observe,
		version:  version,
		startAt:  time.Now(),
		timeout:  5 * time.Second,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type ReadinessResponse struct {
	Status     string                    `json:"status"`
	Components map[string]ComponentCheck `json:"components,omitempty"`
}

type ComponentCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Liveness handles GET /healthz. It never checks dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz: 503 when any dependency fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if len(h.checkers) == 0 {
		writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	components := h.checkAll(ctx)
	resp := ReadinessResponse{Status: "ready", Components: components}
	status := http.StatusOK
	for _, c := range components {
		if c.Status != "healthy" {
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, status, resp)
}

func (h *HealthHandler) checkAll(ctx context.Context) map[string]ComponentCheck {
	results := make(map[string]ComponentCheck, len(h.checkers))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, checker := range h.checkers {
		wg.Add(1)
		go func(c HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)
			cc := ComponentCheck{Status: "healthy", Latency: time.Since(start).Truncate(time.Microsecond).String()}
			if err != nil {
				cc.Status = "unhealthy"
				cc.Error = err.Error()
			}
			if h.observe != nil {
				h.observe(c.Name(), err == nil)
			}

			mu.Lock()
			results[c.Name()] = cc
			mu.Unlock()
		}(checker)
	}
	wg.Wait()
	return results
}
