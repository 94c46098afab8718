package sessions

import (
	"encoding/json"
	"sync"

	"github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/storage"
	"github.com/jrsteele09/go-cms-client/token"
	"github.com/jrsteele09/go-cms-client/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Store owns the authenticated identity and its credentials. It is the only
// writer of the persisted access_token, refresh_token and user keys.
type Store struct {
	mu      sync.RWMutex
	storage storage.Store
	user    *users.User
	token   *oauth2.Token
}

func NewStore(st storage.Store) *Store {
	return &Store{storage: st}
}

// Restore loads whatever was persisted by a previous run. A corrupt user record
// is dropped rather than failing startup.
func (s *Store) Restore() error {
	access, _, err := s.storage.Get(storage.KeyAccessToken)
	if err != nil {
		return errors.Wrapf(err, "sessions.Restore access token")
	}
	refresh, _, err := s.storage.Get(storage.KeyRefreshToken)
	if err != nil {
		return errors.Wrapf(err, "sessions.Restore refresh token")
	}
	rawUser, hasUser, err := s.storage.Get(storage.KeyUser)
	if err != nil {
		return errors.Wrapf(err, "sessions.Restore user")
	}

	var user *users.User
	if hasUser {
		user = &users.User{}
		if err := json.Unmarshal([]byte(rawUser), user); err != nil {
			log.Err(err).Msg("sessions: failed to parse saved user")
			user = nil
			if err := s.storage.Remove(storage.KeyUser); err != nil {
				return errors.Wrapf(err, "sessions.Restore remove user")
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = nil
	if access != "" || refresh != "" {
		s.token = token.New(access, refresh)
	}
	return nil
}

// Set replaces the whole session after a successful login and persists it.
func (s *Store) Set(user users.User, accessToken, refreshToken string) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return errors.Wrapf(err, "sessions.Set marshal user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(storage.KeyAccessToken, accessToken); err != nil {
		return errors.Wrapf(err, "sessions.Set access token")
	}
	if err := s.storage.Set(storage.KeyRefreshToken, refreshToken); err != nil {
		return errors.Wrapf(err, "sessions.Set refresh token")
	}
	if err := s.storage.Set(storage.KeyUser, string(rawUser)); err != nil {
		return errors.Wrapf(err, "sessions.Set user")
	}
	s.user = &user
	s.token = token.New(accessToken, refreshToken)
	return nil
}

// SetAccessToken stores a refreshed access token, keeping the refresh token.
func (s *Store) SetAccessToken(accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token.WithAccessToken(s.token, accessToken)
	return s.storage.Set(storage.KeyAccessToken, accessToken)
}

// UpdateUser merges upd into the cached profile and persists it. It is a no-op
// when nobody is logged in.
func (s *Store) UpdateUser(upd users.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	merged := *s.user
	merged.Merge(upd)
	rawUser, err := json.Marshal(merged)
	if err != nil {
		return errors.Wrapf(err, "sessions.UpdateUser marshal")
	}
	if err := s.storage.Set(storage.KeyUser, string(rawUser)); err != nil {
		return errors.Wrapf(err, "sessions.UpdateUser persist")
	}
	s.user = &merged
	return nil
}

// Clear drops user and credentials from memory and storage in one step.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = nil
	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
		if err := s.storage.Remove(key); err != nil {
			return errors.Wrapf(err, "sessions.Clear %s", key)
		}
	}
	return nil
}

// IsAuthenticated holds iff both an access token and a user are present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != nil && s.token.AccessToken != ""
}

// User returns a copy of the cached profile, or nil.
func (s *Store) User() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// UserID is empty when nobody is logged in.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.RefreshToken
}

// Token returns a copy of the credential pair, or nil.
func (s *Store) Token() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil
	}
	t := *s.token
	return &t
}
