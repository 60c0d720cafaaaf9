package auth

import (
	"time"

	"golang.org/x/oauth2"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

// SessionLoader is anything that can produce the current session.
type SessionLoader interface {
	Load() (domain.Session, error)
}

// SessionFunc adapts a function to SessionLoader.
type SessionFunc func() (domain.Session, error)

// Load implements SessionLoader.
func (f SessionFunc) Load() (domain.Session, error) { return f() }

// Static returns a loader that always yields s.
func Static(s domain.Session) SessionLoader {
	return SessionFunc(func() (domain.Session, error) { return s, nil })
}

// TokenSource turns a session loader into an oauth2.TokenSource. The session
// is re-read on every call so a login in another process is picked up.
type TokenSource struct {
	loader SessionLoader
	now    func() time.Time
}

// NewTokenSource returns a token source over loader.
func NewTokenSource(loader SessionLoader) *TokenSource {
	return &TokenSource{loader: loader, now: time.Now}
}

// Token implements oauth2.TokenSource.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	s, err := ts.loader.Load()
	if err != nil {
		return nil, err
	}
	if s.AccessToken == "" {
		return nil, ErrNoSession
	}
	if !s.Valid(ts.now()) {
		return nil, ErrExpired
	}
	return &oauth2.Token{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		Expiry:      s.ExpiresAt,
	}, nil
}

var _ oauth2.TokenSource = (*TokenSource)(nil)
