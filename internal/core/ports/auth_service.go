package ports

import (
	"context"

	"github.com/schadensbericht/portal/internal/core/domain"
)

// SessionManager issues, resolves and ends sessions.
type SessionManager interface {
	Start(ctx context.Context, userID string) (*domain.Session, error)
	// Resolve returns the user id bound to token, or "" when the token does
	// not identify a live session. Only store faults produce an error.
	Resolve(ctx context.Context, token string) (string, error)
	End(ctx context.Context, token string) error
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.Session, *domain.User, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, user *domain.User, current, next string) error
}

type ProvisioningService interface {
	Register(ctx context.Context, requester *domain.User, username, password, role string) (*domain.User, error)
	BootstrapAdmin(ctx context.Context) (bool, error)
}

// UserLookup resolves a session's user id to the stored record.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
