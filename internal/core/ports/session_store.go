package ports

import (
	"context"
	"time"
)

// SessionStore keeps the server-side half of a session: a mapping from
// session id to user id that expires after ttl.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	// Touch returns the bound user id and resets the expiry to ttl.
	// Returns domain.ErrSessionNotFound for unknown or expired ids.
	Touch(ctx context.Context, sessionID string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}
