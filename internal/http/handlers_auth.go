package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

// handleAuthMe returns the authenticated user or null. Public: an
// anonymous caller gets null with 200, never 401.
func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := session.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, (*core.User)(nil))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleAuthLogout expires the session cookie. Public and idempotent.
func (s *Server) handleAuthLogout(w http.ResponseWriter, _ *http.Request) {
	s.sessions.ClearCookie(w)
	writeSuccess(w)
}
