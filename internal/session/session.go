package session

import (
	"context"
	"time"
)

// TokenKey is the fixed name the backend token is stored under.
const TokenKey = "auth_token"

// Store persists values per browser session. Get returns "" for missing keys.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID, key string) error
}

// Session is the explicit session context of one browser. It is handed to the
// API client as its token source.
type Session struct {
	id    string
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// New binds sessionID to store. Tokens live for ttl unless their own expiry is earlier.
func New(sessionID string, store Store, ttl time.Duration) *Session {
	return &Session{id: sessionID, store: store, ttl: ttl, now: time.Now}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Token returns the stored token, or "" when there is none or it has expired.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, s.id, TokenKey)
	if err != nil || token == "" {
		return "", err
	}
	if claims, ok := ParseClaims(token); ok && claims.Expired(s.now()) {
		if err := s.store.Delete(ctx, s.id, TokenKey); err != nil {
			return "", err
		}
		return "", nil
	}
	return token, nil
}

// SetToken stores token for future requests.
func (s *Session) SetToken(ctx context.Context, token string) error {
	ttl := s.ttl
	if claims, ok := ParseClaims(token); ok && !claims.ExpiresAt.IsZero() {
		if remaining := claims.ExpiresAt.Sub(s.now()); remaining > 0 && (ttl <= 0 || remaining < ttl) {
			ttl = remaining
		}
	}
	return s.store.Set(ctx, s.id, TokenKey, token, ttl)
}

// Clear drops the stored token. The backend session is left untouched.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.id, TokenKey)
}

// Authenticated reports whether a usable token is stored.
func (s *Session) Authenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}
