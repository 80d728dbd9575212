// Package session persists the signed-in user in a browser-scoped
// key-value storage.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orderflow/orderflow/internal/core/domain"
	"github.com/orderflow/orderflow/internal/core/ports"
)

// UserKey is the fixed key the current user is stored under.
const UserKey = "user"

// Store reads and writes the current user of one browser scope.
type Store struct {
	storage ports.SessionStorage
}

func NewStore(storage ports.SessionStorage) *Store {
	return &Store{storage: storage}
}

// SetCurrentUser persists u as the active session, replacing any prior value.
func (s *Store) SetCurrentUser(ctx context.Context, u domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	if err := s.storage.Set(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("store session user: %w", err)
	}
	return nil
}

// GetCurrentUser returns the persisted user. Missing, unreadable and
// malformed values all read as "no session".
func (s *Store) GetCurrentUser(ctx context.Context) (*domain.User, bool) {
	raw, found, err := s.storage.Get(ctx, UserKey)
	if err != nil || !found {
		return nil, false
	}
	u, err := decodeUser(raw)
	if err != nil {
		return nil, false
	}
	return u, true
}

// ClearCurrentUser removes the persisted user.
func (s *Store) ClearCurrentUser(ctx context.Context) error {
	if err := s.storage.Delete(ctx, UserKey); err != nil {
		return fmt.Errorf("clear session user: %w", err)
	}
	return nil
}

func decodeUser(raw string) (*domain.User, error) {
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSession, err)
	}
	if !u.Valid() {
		return nil, domain.ErrMalformedSession
	}
	return &u, nil
}
