package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/schadensbericht/portal/internal/core/domain"
	"github.com/schadensbericht/portal/internal/core/ports"
)

// AuthService implements login, logout and password changes.
type AuthService struct {
	repo     ports.CredentialStore
	hasher   ports.PasswordHasher
	sessions ports.SessionManager
	log      zerolog.Logger

	// dummyHash is compared against when the username is unknown so that
	// both failure paths spend the same bcrypt work.
	dummyHash string
}

func NewAuthService(repo ports.CredentialStore, hasher ports.PasswordHasher, sessions ports.SessionManager, log zerolog.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash("timing-equaliser-0")
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		sessions:  sessions,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Login verifies the credentials and starts a session. Unknown usernames and
// wrong passwords both return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, *domain.User, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.log.Info().Str("username", username).Msg("login rejected")
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.log.Info().Str("username", username).Msg("login rejected")
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.sessions.Start(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("login succeeded")
	return session, user, nil
}

// Logout ends the session behind token. Safe to call repeatedly.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.End(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ChangePassword replaces the password of user after re-checking current.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, current, next string) error {
	if user == nil {
		return domain.ErrUnauthenticated
	}

	stored, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUnauthenticated
		}
		return fmt.Errorf("change password: %w", err)
	}
	if !s.hasher.Verify(current, stored.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	if err := domain.ValidatePassword(next); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, stored.ID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("user_id", stored.ID).Time("at", time.Now().UTC()).Msg("password changed")
	return nil
}
