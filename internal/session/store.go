// Package session holds the process-wide auth state: current user, token and
// the authenticated flag. Durable storage is a mirror, not a second owner; all
// mutation goes through the declared operations on Store.
package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"learnhub-web/internal/model"
	"learnhub-web/internal/storage"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

type Store struct {
	mu      sync.RWMutex
	user    *model.UserSummary
	token   string
	loading bool
	storage *storage.Store
}

func New(st *storage.Store) *Store {
	return &Store{storage: st}
}

// Hydrate restores user and token from durable storage. It runs once at
// startup. Restoration is optimistic: the token is not validated against the
// backend, except that a token parseable as a JWT whose exp already passed is
// discarded instead of restored.
func (s *Store) Hydrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.storage.Get(keyToken)
	if !ok || token == "" {
		return nil
	}

	if tokenExpired(token) {
		slog.Info("stored token expired, discarding session")
		return s.storage.Delete(keyToken, keyUser)
	}

	s.token = token

	if raw, ok := s.storage.Get(keyUser); ok && raw != "" {
		var user model.UserSummary
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			s.user = &user
		}
	}

	return nil
}

// SetCredentials replaces user and token and persists both together.
// An empty token is a programmer error and panics.
func (s *Store) SetCredentials(user *model.UserSummary, token string) error {
	if token == "" {
		panic("session: SetCredentials called with empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	s.token = token

	raw := ""
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		raw = string(data)
	}

	return s.storage.SetAll(map[string]string{keyToken: token, keyUser: raw})
}

// SetUser replaces the user only, leaving the token untouched. Used after a
// profile-edit mutation echoes the updated record back.
func (s *Store) SetUser(user *model.UserSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	return s.storage.Set(keyUser, string(data))
}

// Clear drops user and token from memory and durable storage. Idempotent.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.token = ""

	return s.storage.Delete(keyToken, keyUser)
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

func (s *Store) Snapshot() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.Session{
		Token:           s.token,
		IsAuthenticated: s.token != "",
		Loading:         s.loading,
	}
	if s.user != nil {
		user := *s.user
		snap.User = &user
	}

	return snap
}

// Token implements the transport's token source.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.token != ""
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

// tokenExpired reports whether token is a well-formed JWT with an exp claim in
// the past. Opaque tokens are never treated as expired here; the backend is
// the authority for those.
func tokenExpired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(time.Now())
}
