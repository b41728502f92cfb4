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

// DefaultBootstrapPassword is used for the first-run admin when no password
// is configured. It is public knowledge and must be rotated immediately.
const DefaultBootstrapPassword = "adminpass"

// BootstrapAccount names the well-known admin created on first run.
type BootstrapAccount struct {
	Username string
	Password string
}

// ProvisioningService creates user accounts. Only admins may register users;
// there is no self-registration path.
type ProvisioningService struct {
	repo      ports.CredentialStore
	hasher    ports.PasswordHasher
	bootstrap BootstrapAccount
	log       zerolog.Logger
}

func NewProvisioningService(repo ports.CredentialStore, hasher ports.PasswordHasher, bootstrap BootstrapAccount, log zerolog.Logger) *ProvisioningService {
	if bootstrap.Username == "" {
		bootstrap.Username = "admin"
	}
	return &ProvisioningService{repo: repo, hasher: hasher, bootstrap: bootstrap, log: log}
}

// Register creates a user on behalf of requester, who must be an admin.
func (s *ProvisioningService) Register(ctx context.Context, requester *domain.User, username, password, role string) (*domain.User, error) {
	if !requester.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	username = domain.NormalizeUsername(username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	created, err := s.create(ctx, username, password, parsedRole)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().
		Str("user_id", created.ID).
		Str("username", created.Username).
		Str("role", created.Role.String()).
		Str("created_by", requester.ID).
		Msg("user registered")
	return created, nil
}

// BootstrapAdmin creates the well-known admin account if it does not exist.
// It reports whether an account was created. Running it again is a no-op.
func (s *ProvisioningService) BootstrapAdmin(ctx context.Context) (bool, error) {
	username := domain.NormalizeUsername(s.bootstrap.Username)

	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		s.log.Info().Str("username", username).Msg("bootstrap admin already exists")
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	password := s.bootstrap.Password
	if password == "" {
		password = DefaultBootstrapPassword
		s.log.Warn().Str("username", username).Msg("bootstrap admin uses the default password; change it immediately")
	} else if domain.ValidatePassword(password) != nil {
		s.log.Warn().Str("username", username).Msg("bootstrap admin password is weak; change it immediately")
	}

	created, err := s.create(ctx, username, password, domain.RoleAdmin)
	if err != nil {
		// Lost a race with a concurrent bootstrap.
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return false, nil
		}
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("bootstrap admin created")
	return true, nil
}

func (s *ProvisioningService) create(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
