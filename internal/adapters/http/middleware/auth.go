package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	domainAccount "academy/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionTTL is how long a login stays valid.
const SessionTTL = 24 * time.Hour

// SecureCookies marks the session cookie Secure. Set in production.
var SecureCookies bool

// Session represents an authenticated user.
type Session struct {
	Token     string
	UserID    string
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
}

// IsAdmin reports whether the session belongs to an admin.
func (s Session) IsAdmin() bool {
	return s.Role == domainAccount.RoleAdmin
}

// SessionStore is an in-memory session store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create stores a new session and returns the token.
// PRE: userID, email, role are non-empty
// POST: Session is stored, token is returned
func (ss *SessionStore) Create(userID, name, email, role string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{
		Token:     token,
		UserID:    userID,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: ss.now(),
	}
	return token, nil
}

// Get retrieves a session by token.
// PRE: token is non-empty
// POST: Returns session if valid and not expired; expired sessions are removed
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if ss.now().Sub(session.CreatedAt) > SessionTTL {
		ss.Delete(token)
		return Session{}, false
	}
	return session, true
}

// Delete removes a session by token.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// DeleteUser removes every session of userID. Used when an account is deleted.
// POST: Returns the number of sessions removed
func (ss *SessionStore) DeleteUser(userID string) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	n := 0
	for token, s := range ss.sessions {
		if s.UserID == userID {
			delete(ss.sessions, token)
			n++
		}
	}
	return n
}

// SessionCookieName is the cookie holding the session token.
const SessionCookieName = "academy_session"

// Auth returns middleware that extracts the session from the cookie and sets it in context.
// It does NOT block unauthenticated requests; handlers check the session themselves.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware that answers 401 without a session and 403 for other roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			if !roleSet[session.Role] {
				slog.Warn("auth_denied", "path", r.URL.Path, "user_id", session.UserID, "role", session.Role)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
