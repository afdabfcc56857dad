// Package auth implements the admin login gate: shared-secret credential
// checking, an explicit in-memory session store with expiry and ID rotation,
// and per-session CSRF tokens.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionCookie is the name of the admin session cookie.
const SessionCookie = "gameday_session"

var (
	// ErrNoSession indicates the request carries no valid, unexpired session.
	ErrNoSession = errors.New("no valid session")

	// ErrBadCSRF indicates a mutating request with a missing or wrong
	// CSRF token.
	ErrBadCSRF = errors.New("invalid csrf token")
)

// Session is the explicit session state, passed around rather than held in
// ambient globals. The CSRF token is stable for the session's lifetime:
// rotating it per submission breaks concurrent forms on the same page, so
// rotation is limited to the session ID itself.
type Session struct {
	ID            string
	CSRFToken     string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	LastRotatedAt time.Time
}

// Credentials is the configured shared-secret login gate.
type Credentials struct {
	User string
	Pass string
}

// Check compares submitted credentials in constant time.
func (c Credentials) Check(user, pass string) bool {
	if c.User == "" || c.Pass == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(c.User), []byte(user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.Pass), []byte(pass)) == 1
	return userOK && passOK
}

// Manager owns the in-memory session table. Sessions expire after the TTL
// and have their IDs rotated at the configured interval, mirroring periodic
// session-ID regeneration.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl      time.Duration
	rotation time.Duration
	now      func() time.Time
}

// NewManager creates a session manager with the given TTL and rotation
// interval.
func NewManager(ttl, rotation time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		rotation: rotation,
		now:      time.Now,
	}
}

// WithClock substitutes the manager's clock, for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Start creates a new session. Like Resolve it returns a detached copy;
// the manager's own record is only touched under its lock.
func (m *Manager) Start() (*Session, error) {
	token, err := newCSRFToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		ID:            uuid.NewString(),
		CSRFToken:     token,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.ttl),
		LastRotatedAt: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Debug().Str("session_id", s.ID).Time("expires_at", s.ExpiresAt).Msg("Session started")
	out := *s
	return &out, nil
}

// Resolve looks up the session for an ID, expiring and rotating as needed.
// The returned session's ID may differ from the input when rotation
// occurred; callers must re-set the cookie from the returned session.
// The result is a copy: a rotation triggered by one request never mutates
// a Session another request is still reading.
func (m *Manager) Resolve(id string) (*Session, error) {
	if id == "" {
		return nil, ErrNoSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}

	now := m.now()
	if now.After(s.ExpiresAt) {
		delete(m.sessions, id)
		log.Debug().Str("session_id", id).Msg("Session expired")
		return nil, ErrNoSession
	}

	if now.Sub(s.LastRotatedAt) >= m.rotation {
		delete(m.sessions, s.ID)
		s.ID = uuid.NewString()
		s.LastRotatedAt = now
		m.sessions[s.ID] = s
		log.Debug().Str("session_id", s.ID).Msg("Session ID rotated")
	}

	out := *s
	return &out, nil
}

// End destroys a session.
func (m *Manager) End(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// ValidateCSRF compares a submitted token against the session's token in
// constant time. The token is not rotated on use.
func (m *Manager) ValidateCSRF(s *Session, token string) error {
	if s == nil || token == "" {
		return ErrBadCSRF
	}
	if subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(token)) != 1 {
		return ErrBadCSRF
	}
	return nil
}

// Cookie builds the session cookie for s. Secure is set when the request
// arrived over TLS.
func Cookie(s *Session, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	}
}

// ClearCookie builds an expired session cookie.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	}
}

func newCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
