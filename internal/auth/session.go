// Package auth keeps the signed-in session on disk and hands it to the API
// client as an oauth2.TokenSource. Nothing else reads the session file.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rgehrsitz/dpesim/internal/domain"
)

var (
	// ErrNoSession is returned when nobody is signed in.
	ErrNoSession = errors.New("not signed in")
	// ErrExpired is returned when the stored session has expired.
	ErrExpired = errors.New("session expired")
)

// FileStore persists one session as JSON.
type FileStore struct {
	path string
}

type storedState struct {
	AuthState *domain.Session `json:"auth_state"`
}

// NewFileStore returns a store backed by path. The file is created on Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the stored session. A missing file or empty state is
// ErrNoSession.
func (s *FileStore) Load() (domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Session{}, ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("read session %s: %w", s.path, err)
	}
	var st storedState
	if err := json.Unmarshal(data, &st); err != nil {
		return domain.Session{}, fmt.Errorf("parse session %s: %w", s.path, err)
	}
	if st.AuthState == nil || st.AuthState.AccessToken == "" {
		return domain.Session{}, ErrNoSession
	}
	return *st.AuthState, nil
}

// Save writes the session, replacing any previous one.
func (s *FileStore) Save(session domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(storedState{AuthState: &session}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an
// error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session %s: %w", s.path, err)
	}
	return nil
}

// DefaultTTL is the lifetime given to tokens that carry no exp claim.
const DefaultTTL = time.Hour

// NewSession builds a session for an access token. When the token is a JWT
// its exp claim becomes the expiry; otherwise it expires DefaultTTL after now.
func NewSession(token string, userInfo map[string]any, now time.Time) domain.Session {
	token = strings.TrimSpace(token)
	s := domain.Session{AccessToken: token, UserInfo: userInfo, ExpiresAt: now.Add(DefaultTTL)}
	if exp, ok := TokenExpiry(token); ok {
		s.ExpiresAt = exp
	}
	return s
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature;
// the backend does the verification.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
