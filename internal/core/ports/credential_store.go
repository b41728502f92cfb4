package ports

import (
	"context"

	"github.com/schadensbericht/portal/internal/core/domain"
)

// CredentialStore defines persistence of user records. Implementations must
// enforce username uniqueness inside the store itself so that Create is a
// single atomic check-and-insert.
type CredentialStore interface {
	// Create inserts user and returns the stored record with its ID.
	// Returns domain.ErrDuplicateIdentity when the username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// EnsureSchema creates indexes or tables required by the store.
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
}
