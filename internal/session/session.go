// Package session persists the auth token and the cached user profile
// in the system keyring. It performs no network I/O; the HTTP gateway
// reads the token from here on every request and clears the session
// when the backend rejects it.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/mfellner/pinnwand/internal/model"
)

const serviceName = "pinnwand"

// Storage keys. The token and the profile live under fixed names so a
// restarted process finds the same session.
const (
	tokenKey = "token"
	userKey  = "user"
)

// ErrStorage wraps any keyring failure. Callers must treat the session
// as absent when a read returns it.
var ErrStorage = errors.New("session storage error")

// Store holds the session in a keyring. The zero value is not usable;
// construct one with Open or New.
type Store struct {
	ring keyring.Keyring
}

// Open returns a Store backed by the system keyring.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/pinnwand/session",
		FilePasswordFunc:         keyring.FixedStringPrompt("pinnwand-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening keyring: %v", ErrStorage, err)
	}
	return New(ring), nil
}

// New returns a Store backed by the given keyring. Tests pass an
// in-memory keyring here.
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Set persists the token and the user profile. The profile is written
// first and the token last, so a concurrent reader that sees the token
// also sees the profile belonging to it.
func (s *Store) Set(token string, user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: encoding user profile: %v", ErrStorage, err)
	}

	if err := s.ring.Set(keyring.Item{Key: userKey, Data: data}); err != nil {
		return fmt.Errorf("%w: storing user profile: %v", ErrStorage, err)
	}
	if err := s.ring.Set(keyring.Item{Key: tokenKey, Data: []byte(token)}); err != nil {
		return fmt.Errorf("%w: storing token: %v", ErrStorage, err)
	}
	return nil
}

// Token returns the stored auth token, or "" if no session exists.
func (s *Store) Token() (string, error) {
	item, err := s.ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("%w: reading token: %v", ErrStorage, err)
	}
	return string(item.Data), nil
}

// User returns the cached user profile. It never talks to the backend.
func (s *Store) User() (model.User, error) {
	item, err := s.ring.Get(userKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return model.User{}, nil
		}
		return model.User{}, fmt.Errorf("%w: reading user profile: %v", ErrStorage, err)
	}

	var user model.User
	if err := json.Unmarshal(item.Data, &user); err != nil {
		return model.User{}, fmt.Errorf("%w: decoding user profile: %v", ErrStorage, err)
	}
	return user, nil
}

// IsAuthenticated reports whether a token is present. Storage failures
// count as "not authenticated".
func (s *Store) IsAuthenticated() bool {
	token, err := s.Token()
	return err == nil && token != ""
}

// Clear removes the token and the profile. It is idempotent: clearing
// an already-empty session succeeds.
func (s *Store) Clear() error {
	if err := s.ring.Remove(tokenKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("%w: removing token: %v", ErrStorage, err)
	}
	if err := s.ring.Remove(userKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("%w: removing user profile: %v", ErrStorage, err)
	}
	return nil
}
