// Package auth implements server-side sessions: opaque tokens delivered in an
// HttpOnly cookie, resolved to a user identity by middleware.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionCookieName is the cookie that carries the opaque session token.
	SessionCookieName = "session_id"

	sweepInterval = time.Minute
)

// Identity is the resolved session user attached to the request context.
type Identity struct {
	UserID   int64
	Username string
}

type contextKey string

const identityKey = contextKey("sessionIdentity")

// Session associates an opaque token with a logged-in user.
type Session struct {
	Token     string
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// SessionStore keeps active sessions in memory, keyed by token. Sessions are
// created at login, destroyed at logout, and swept by a background janitor
// once they expire.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	stopChan chan struct{}
}

// NewSessionStore creates a SessionStore whose sessions live for ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
}

// Create registers a new session for the user and returns it.
func (s *SessionStore) Create(userID int64, username string) Session {
	session := Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()
	return session
}

// Get resolves a token to its session. Expired sessions are treated as
// absent; the janitor removes them later.
func (s *SessionStore) Get(token string) (Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || time.Now().After(session.ExpiresAt) {
		return Session{}, false
	}
	return session, true
}

// Destroy removes a session. Destroying an unknown token is a no-op.
func (s *SessionStore) Destroy(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Run starts the expiry sweep loop and blocks until Stop is called.
func (s *SessionStore) Run() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			return
		}
	}
}

// Stop terminates the sweep loop.
func (s *SessionStore) Stop() {
	close(s.stopChan)
}

func (s *SessionStore) sweep() {
	now := time.Now()
	s.mu.Lock()
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
}

// SetCookie attaches the session token to the response.
func (s *SessionStore) SetCookie(w http.ResponseWriter, session Session) {
	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearCookie expires the session cookie on the client.
func (s *SessionStore) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}

// Middleware creates a middleware for protecting routes. Requests without a
// live session are rejected with 401; otherwise the resolved identity is
// passed down via the request context.
func (s *SessionStore) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				writeNotLoggedIn(w)
				return
			}

			session, ok := s.Get(cookie.Value)
			if !ok {
				writeNotLoggedIn(w)
				return
			}

			identity := Identity{UserID: session.UserID, Username: session.Username}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the identity stored by Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

func writeNotLoggedIn(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: false, Message: "Not logged in."})
}
