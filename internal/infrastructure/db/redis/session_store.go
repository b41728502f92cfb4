package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/schadensbericht/portal/internal/core/domain"
	"github.com/schadensbericht/portal/internal/core/ports"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps session records in Redis, one key per session.
// Key format: session:<session_id> -> user id, expiring with the idle window.
type SessionStore struct {
	client redis.Cmdable
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client}
}

// Save writes a new session record. An existing record with the same id is
// never overwritten.
func (s *SessionStore) Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, s.key(sessionID), userID, ttl).Result()
	if err != nil {
		return fmt.Errorf("save session: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if !ok {
		return errors.New("save session: id collision")
	}
	return nil
}

// Touch reads the bound user id and resets the expiry in one round trip.
func (s *SessionStore) Touch(ctx context.Context, sessionID string, ttl time.Duration) (string, error) {
	userID, err := s.client.GetEx(ctx, s.key(sessionID), ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrSessionNotFound
		}
		return "", fmt.Errorf("touch session: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return userID, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
