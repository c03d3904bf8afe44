package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

// handlePreferencesGet returns the stored preference row or null. No
// defaults are materialized on read; callers apply their own fallback.
func (s *Server) handlePreferencesGet(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	prefs, err := s.store.GetPreferences(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type updatePreferencesRequest struct {
	Currency   *string `json:"currency"`
	DateFormat *string `json:"dateFormat"`
}

func (s *Server) handlePreferencesUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := session.UserFromContext(r.Context())

	var req updatePreferencesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if req.Currency != nil {
		if err := core.ValidateCurrencyCode(*req.Currency); err != nil {
			writeError(w, r, s.logger, err)
			return
		}
	}

	if err := s.store.UpsertPreferences(r.Context(), user.ID, core.PreferencePatch{
		Currency:   req.Currency,
		DateFormat: req.DateFormat,
	}); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeSuccess(w)
}
