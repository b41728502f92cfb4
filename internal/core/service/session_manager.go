package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/schadensbericht/portal/internal/core/domain"
	"github.com/schadensbericht/portal/internal/core/ports"
)

const sessionIDBytes = 32

// SessionPolicy bounds how long a session lives. A session ends after
// IdleTimeout without requests or MaxLifetime after login, whichever is first.
type SessionPolicy struct {
	IdleTimeout time.Duration
	MaxLifetime time.Duration
}

// SessionManager issues signed session tokens backed by a server-side record.
// The token is an HS256 JWT whose jti names the record in the SessionStore;
// deleting the record revokes the token even before it expires.
type SessionManager struct {
	store  ports.SessionStore
	secret []byte
	policy SessionPolicy
	now    func() time.Time
	log    zerolog.Logger
}

func NewSessionManager(store ports.SessionStore, secret string, policy SessionPolicy, log zerolog.Logger) *SessionManager {
	if policy.IdleTimeout <= 0 {
		policy.IdleTimeout = 30 * time.Minute
	}
	if policy.MaxLifetime <= 0 {
		policy.MaxLifetime = 12 * time.Hour
	}
	return &SessionManager{
		store:  store,
		secret: []byte(secret),
		policy: policy,
		now:    time.Now,
		log:    log,
	}
}

// Start binds a fresh session to userID and returns it with its token.
func (m *SessionManager) Start(ctx context.Context, userID string) (*domain.Session, error) {
	if userID == "" {
		return nil, errors.New("start session: empty user id")
	}

	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.policy.MaxLifetime)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("start session: sign token: %w", err)
	}

	if err := m.store.Save(ctx, id, userID, m.ttl(now, claims.ExpiresAt.Time)); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	return &domain.Session{
		ID:        id,
		Token:     token,
		UserID:    userID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Resolve returns the user id bound to token and extends the idle window.
// Tokens that are malformed, forged, expired or revoked resolve to "".
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", nil
	}

	claims, err := m.parse(token, true)
	if err != nil {
		m.log.Debug().Err(err).Msg("session token rejected")
		return "", nil
	}

	ttl := m.ttl(m.now(), claims.ExpiresAt.Time)
	if ttl <= 0 {
		return "", nil
	}

	userID, err := m.store.Touch(ctx, claims.ID, ttl)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("resolve session: %w", err)
	}

	if userID != claims.Subject {
		m.log.Warn().Str("session_subject", claims.Subject).Str("stored_user_id", userID).Msg("session subject mismatch")
		return "", nil
	}
	return userID, nil
}

// End revokes the session behind token. Ending an unknown, expired or
// already ended session is not an error.
func (m *SessionManager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := m.parse(token, false)
	if err != nil {
		return nil
	}

	if err := m.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (m *SessionManager) parse(token string, validate bool) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if validate {
		opts = append(opts, jwt.WithExpirationRequired(), jwt.WithIssuedAt())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.ID == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ttl is the store expiry for a session at now: the idle window, capped by
// the absolute expiry.
func (m *SessionManager) ttl(now, expiresAt time.Time) time.Duration {
	remaining := expiresAt.Sub(now)
	if remaining < m.policy.IdleTimeout {
		return remaining
	}
	return m.policy.IdleTimeout
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
