package api

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"gameday/publisher/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK        bool   `json:"ok"`
	CSRFToken string `json:"csrf_token"`
}

// Login checks the shared-secret credentials and starts a session. The
// response carries the session's CSRF token; clients send it back in the
// X-CSRF-Token header on every mutating request.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "Please enter both username and password.")
		return
	}

	if !h.creds.Check(req.Username, req.Password) {
		log.Warn().Msg("Failed login attempt")
		writeError(w, r, http.StatusUnauthorized, "Invalid username or password.")
		return
	}

	session, err := h.sessions.Start()
	if err != nil {
		log.Error().Err(err).Msg("Failed to start session")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, auth.Cookie(session, r.TLS != nil))
	log.Info().Msg("Admin logged in")

	writeJSON(w, r, http.StatusOK, loginResponse{OK: true, CSRFToken: session.CSRFToken})
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := sessionFrom(r); session != nil {
		h.sessions.End(session.ID)
	}

	http.SetCookie(w, auth.ClearCookie(r.TLS != nil))
	hlog.FromRequest(r).Info().Msg("Admin logged out")

	writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}
