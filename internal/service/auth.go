// Package service provides the clinic's business logic: authentication,
// read-only catalog views and the dispensing transaction. Persistence is
// delegated to repository interfaces.
package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/SchoolClinic/internal/models"
)

// AccountRepository defines the persistence operations
// required by the authentication service.
type AccountRepository interface {
	// Accounts returns the whole accounts collection.
	Accounts(ctx context.Context) ([]models.Account, error)
	// SaveAccounts overwrites the accounts collection.
	SaveAccounts(ctx context.Context, accounts []models.Account) error
}

// SessionState is the current-login holder the service updates.
type SessionState interface {
	User() (string, bool)
	Set(ctx context.Context, username string) error
	Clear(ctx context.Context) error
}

// AuthService implements login, signup and logout.
type AuthService struct {
	repo    AccountRepository
	session SessionState
	log     *zap.Logger
	// mu serialises signup's read-modify-write of the accounts collection.
	mu sync.Mutex
}

// NewAuthService constructs an AuthService. A nil logger disables logging.
func NewAuthService(repo AccountRepository, session SessionState, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{repo: repo, session: session, log: log}
}

// Login checks username and password against the stored accounts and, on a
// match, records username as the logged-in user. A failed attempt changes
// nothing.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	accounts, err := s.repo.Accounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.Username == username && a.Password == password {
			if err := s.session.Set(ctx, username); err != nil {
				return err
			}
			s.log.Info("user logged in", zap.String("user", username))
			return nil
		}
	}

	s.log.Info("login rejected", zap.String("user", username))
	return ErrInvalidCredentials
}

// Signup creates a new account. It does not log the new user in.
func (s *AuthService) Signup(ctx context.Context, username, password, confirmPassword string) error {
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	if password != confirmPassword {
		return ErrPasswordMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.Accounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.Username == username {
			return ErrUsernameTaken
		}
	}

	accounts = append(accounts, models.Account{Username: username, Password: password})
	if err := s.repo.SaveAccounts(ctx, accounts); err != nil {
		return err
	}
	s.log.Info("account created", zap.String("user", username))
	return nil
}

// Logout clears the current session.
func (s *AuthService) Logout(ctx context.Context) error {
	user, _ := s.session.User()
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.log.Info("user logged out", zap.String("user", user))
	return nil
}

// CurrentUser returns the logged-in username, if any.
func (s *AuthService) CurrentUser() (string, bool) {
	return s.session.User()
}
