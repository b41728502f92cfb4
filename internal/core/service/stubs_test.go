package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/schadensbericht/portal/internal/core/domain"
	"github.com/schadensbericht/portal/internal/infrastructure/password"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubCredentialStore struct {
	mu        sync.Mutex
	byName    map[string]*domain.User
	byID      map[string]*domain.User
	nextID    int
	createErr error
	findErr   error
	creates   int
}

func newStubCredentialStore() *stubCredentialStore {
	return &stubCredentialStore{
		byName: make(map[string]*domain.User),
		byID:   make(map[string]*domain.User),
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubCredentialStore) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.byName[user.Username]; exists {
		return nil, domain.ErrDuplicateIdentity
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = strconv.Itoa(r.nextID)
	r.byName[stored.Username] = stored
	r.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubCredentialStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubCredentialStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubCredentialStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubCredentialStore) EnsureSchema(context.Context) error { return nil }
func (r *stubCredentialStore) Ping(context.Context) error         { return nil }

func (r *stubCredentialStore) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}

type stubSessionRecord struct {
	userID    string
	expiresAt time.Time
}

// stubSessionStore expires records against the same fake clock the manager
// uses, mirroring Redis key TTLs.
type stubSessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	records  map[string]stubSessionRecord
	lastTTL  time.Duration
	touchErr error
}

func newStubSessionStore(now func() time.Time) *stubSessionStore {
	return &stubSessionStore{now: now, records: make(map[string]stubSessionRecord)}
}

func (s *stubSessionStore) Save(_ context.Context, id, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; exists {
		return errors.New("session id collision")
	}
	s.lastTTL = ttl
	s.records[id] = stubSessionRecord{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *stubSessionStore) Touch(_ context.Context, id string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.touchErr != nil {
		return "", s.touchErr
	}
	rec, ok := s.records[id]
	if !ok || !s.now().Before(rec.expiresAt) {
		delete(s.records, id)
		return "", domain.ErrSessionNotFound
	}
	s.lastTTL = ttl
	rec.expiresAt = s.now().Add(ttl)
	s.records[id] = rec
	return rec.userID, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *stubSessionStore) Ping(context.Context) error { return nil }

func (s *stubSessionStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

const testSecret = "0123456789abcdef0123456789abcdef"

func testHasher() *password.BcryptHasher {
	return password.NewBcryptHasher(bcrypt.MinCost)
}

func newTestSessionManager(clock *fakeClock) (*SessionManager, *stubSessionStore) {
	store := newStubSessionStore(clock.Now)
	m := NewSessionManager(store, testSecret, SessionPolicy{
		IdleTimeout: 30 * time.Minute,
		MaxLifetime: 12 * time.Hour,
	}, zerolog.Nop())
	m.now = clock.Now
	return m, store
}
