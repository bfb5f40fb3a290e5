package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmylchreest/jav-meta/internal/models"
)

// errorResponse is the JSON body written for any non-2xx response.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusForError maps one of the spec's five error kinds to an HTTP status
// (§7): ConfigError and PersistenceError are server-side failures the
// caller cannot fix, TransportError and ParseError reflect an upstream site
// misbehaving, and ValidationError is the caller's fault.
func statusForError(err error) int {
	var cfgErr *models.ConfigError
	var transportErr *models.TransportError
	var parseErr *models.ParseError
	var persistErr *models.PersistenceError
	var validErr *models.ValidationError

	switch {
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.As(err, &parseErr):
		return http.StatusBadGateway
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError
	case errors.As(err, &validErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as a JSON error body with the status statusForError
// derives from its kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:     err.Error(),
		RequestID: GetRequestID(r.Context()),
	})
}

// writeJSON writes v as a JSON body with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
