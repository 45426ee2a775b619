// Package handlers implements the claimtrack HTTP endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/turtacn/claimtrack/internal/domain/narrative"
	"github.com/turtacn/claimtrack/pkg/errors"
)

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps the error code to a status. Server-side failures are
// masked; record and narrative defects keep their code so callers can
// report them.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: string(code), Message: errors.DefaultMessageForCode(code)}
	var ae *errors.AppError
	if errors.As(err, &ae) && errors.IsClientError(code) {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	writeJSON(w, status, resp)
}

func parseViewer(r *http.Request) (narrative.Viewer, error) {
	return narrative.ParseViewer(r.URL.Query().Get("viewer"))
}

// parseNow reads the optional "now" query parameter (RFC 3339).
func parseNow(r *http.Request) (*time.Time, error) {
	raw := r.URL.Query().Get("now")
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.InvalidParam("now must be an RFC 3339 timestamp").WithDetail("now=" + raw)
	}
	return &t, nil
}
