package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Error codes surfaced on the wire.
const (
	codeValidation         = "VALIDATION_ERROR"
	codeUnauthenticated    = "UNAUTHENTICATED"
	codeStorageUnavailable = "STORAGE_UNAVAILABLE"
	codeInternal           = "INTERNAL_ERROR"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

var successBody = map[string]bool{"success": true}

// writeJSON serializes v with the given status. Absent values are
// expected to arrive as typed nils so they serialize as JSON null.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSuccess is the fixed body for mutations that return no row.
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, successBody)
}

// writeError maps domain errors to the wire taxonomy. Unknown errors
// become opaque 500s; their detail stays in the logs.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	if ve, ok := core.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
			Code:    codeValidation,
			Message: ve.Message,
			Field:   ve.Field,
		}})
		return
	}

	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
			Code:    codeUnauthenticated,
			Message: "authentication required",
		}})
	case errors.Is(err, core.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorEnvelope{Error: errorBody{
			Code:    codeStorageUnavailable,
			Message: "storage unavailable",
		}})
	default:
		logger.ErrorContext(r.Context(), "request failed",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: errorBody{
			Code:    codeInternal,
			Message: "internal error",
		}})
	}
}
