// Package session tracks the identity of the user currently logged in to the
// clinic. The identity is mirrored to a persistent store so a restart keeps
// the login.
package session

import (
	"context"
	"fmt"
	"sync"
)

// Store persists the session identity.
type Store interface {
	LoggedInUser(ctx context.Context) (string, bool, error)
	SetLoggedInUser(ctx context.Context, username string) error
	ClearLoggedInUser(ctx context.Context) error
}

// Session holds at most one authenticated username.
type Session struct {
	mu    sync.RWMutex
	user  string
	store Store
}

// Load restores the session persisted in store.
func Load(ctx context.Context, store Store) (*Session, error) {
	user, _, err := store.LoggedInUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return &Session{user: user, store: store}, nil
}

// User returns the logged-in username and whether there is one.
func (s *Session) User() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user != ""
}

// Set persists username as the logged-in user. The in-memory identity only
// changes once the write succeeded.
func (s *Session) Set(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.SetLoggedInUser(ctx, username); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.user = username
	return nil
}

// Clear logs the user out in memory and in the store.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = ""
	if err := s.store.ClearLoggedInUser(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
