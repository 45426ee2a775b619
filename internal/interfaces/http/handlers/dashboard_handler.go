package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/claimtrack/internal/application/dashboard"
	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/domain/narrative"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// DocumentLinker resolves narrative document refs to download links.
type DocumentLinker interface {
	Links(ctx context.Context, externalID string, refs []narrative.DocumentRef) (map[narrative.DocumentRef]string, error)
}

// DashboardResponse is the body of both dashboard endpoints.
type DashboardResponse struct {
	ExternalID  string                           `json:"external_id"`
	Viewer      narrative.Viewer                 `json:"viewer"`
	State       claim.State                      `json:"state"`
	Terminal    bool                             `json:"terminal"`
	Rule        string                           `json:"rule"`
	Narrative   narrative.Descriptor             `json:"narrative"`
	EvaluatedAt time.Time                        `json:"evaluated_at"`
	Links       map[narrative.DocumentRef]string `json:"links,omitempty"`
}

type DashboardHandler struct {
	svc         dashboard.Service
	linker      DocumentLinker
	logger      logging.Logger
	maxBodySize int64
}

// NewDashboardHandler accepts a nil linker; responses then carry no links.
func NewDashboardHandler(svc dashboard.Service, linker DocumentLinker, maxBodySize int64, logger logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxBodySize <= 0 {
		maxBodySize = 1 << 20
	}
	return &DashboardHandler{svc: svc, linker: linker, logger: logger, maxBodySize: maxBodySize}
}

// GetDashboard handles GET /api/v1/claims/{externalId}/dashboard.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	viewer, err := parseViewer(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	now, err := parseNow(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.svc.ViewClaim(r.Context(), &dashboard.ViewRequest{
		ExternalID: chi.URLParam(r, "externalId"),
		Viewer:     viewer,
		Now:        now,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(r.Context(), view))
}

// Classify handles POST /api/v1/dashboard/classify with a claim record body.
func (h *DashboardHandler) Classify(w http.ResponseWriter, r *http.Request) {
	viewer, err := parseViewer(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	now, err := parseNow(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var rec claim.Record
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err := dec.Decode(&rec); err != nil {
		h.fail(w, r, errors.InvalidParam("request body is not a claim record").WithCause(err).WithDetail(err.Error()))
		return
	}

	view, err := h.svc.Classify(r.Context(), &dashboard.ClassifyRequest{Record: &rec, Viewer: viewer, Now: now})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(r.Context(), view))
}

// ListStates handles GET /api/v1/states.
func (h *DashboardHandler) ListStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"rules": h.svc.Rules()})
}

// fail logs err at a level matching who caused it and writes the error body.
func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	fields := []logging.Field{
		logging.String("path", r.URL.Path),
		logging.String("error_code", string(code)),
		logging.String("module", errors.ModuleForCode(code)),
		logging.Err(err),
	}
	if errors.IsServerError(code) || code == errors.CodeUnknown {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Debug("request rejected", fields...)
	}
	writeAppError(w, err)
}

func (h *DashboardHandler) respond(ctx context.Context, v *dashboard.View) *DashboardResponse {
	resp := &DashboardResponse{
		ExternalID:  v.ExternalID,
		Viewer:      v.Viewer,
		State:       v.State,
		Terminal:    v.Terminal,
		Rule:        v.Rule,
		Narrative:   v.Narrative,
		EvaluatedAt: v.EvaluatedAt,
	}
	if h.linker == nil || len(v.Narrative.Params.Documents) == 0 {
		return resp
	}
	links, err := h.linker.Links(ctx, v.ExternalID, v.Narrative.Params.Documents)
	if err != nil {
		h.logger.Warn("failed to resolve document links",
			logging.String("external_id", v.ExternalID), logging.Err(err))
		return resp
	}
	if len(links) > 0 {
		resp.Links = links
	}
	return resp
}
