// Package api implements the JSON admin surface: login, game management,
// update ingestion, and the manual feed generation trigger. Handlers expect
// an authenticated session on everything except login and health; mutating
// verbs additionally require the session's CSRF token.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"gameday/publisher/internal/auth"
	"gameday/publisher/internal/feed"
	"gameday/publisher/internal/store"
)

// CSRFHeader carries the session's CSRF token on mutating requests.
const CSRFHeader = "X-CSRF-Token"

type contextKey string

const sessionKey contextKey = "session"

// Handler holds dependencies for the admin API.
type Handler struct {
	store     store.GameStore
	sessions  *auth.Manager
	creds     auth.Credentials
	generator *feed.Generator
}

// NewHandler creates a handler instance.
func NewHandler(st store.GameStore, sessions *auth.Manager, creds auth.Credentials, gen *feed.Generator) *Handler {
	return &Handler{
		store:     st,
		sessions:  sessions,
		creds:     creds,
		generator: gen,
	}
}

// errorResponse is the uniform rejection body.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	jsonBytes, err := json.Marshal(body)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error marshaling JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonBytes); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error writing JSON response body")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Invalid request body")
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// sessionFrom returns the authenticated session placed in the request
// context by RequireSession.
func sessionFrom(r *http.Request) *auth.Session {
	s, _ := r.Context().Value(sessionKey).(*auth.Session)
	return s
}

// RequireSession resolves the session cookie and rejects unauthenticated
// requests. Rotation may change the session ID mid-flight, so the cookie is
// re-set from the resolved session on every request.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookie)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		session, err := h.sessions.Resolve(cookie.Value)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		http.SetCookie(w, auth.Cookie(session, r.TLS != nil))

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCSRF validates the CSRF token on mutating verbs. Reads pass
// through untouched.
func (h *Handler) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		session := sessionFrom(r)
		if err := h.sessions.ValidateCSRF(session, r.Header.Get(CSRFHeader)); err != nil {
			hlog.FromRequest(r).Warn().Msg("CSRF validation failed")
			writeError(w, r, http.StatusForbidden, "Invalid security token. Please try again.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
