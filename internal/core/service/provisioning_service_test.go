package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/schadensbericht/portal/internal/core/domain"
)

func TestProvisioningService_Register_Success(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.prov.Register(context.Background(), f.admin, "tech1", "pass1234", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleTechnician {
		t.Fatalf("expected default role %s, got %s", domain.RoleTechnician, user.Role)
	}
	if user.PasswordHash == "" || user.PasswordHash == "pass1234" {
		t.Fatalf("expected password to be hashed")
	}
	if !testHasher().Verify("pass1234", user.PasswordHash) {
		t.Fatalf("stored hash does not match password")
	}
}

func TestProvisioningService_Register_AdminRole(t *testing.T) {
	f := newAuthFixture(t)
	user, err := f.prov.Register(context.Background(), f.admin, "boss", "pass1234", "admin")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !user.IsAdmin() {
		t.Fatalf("expected admin role, got %s", user.Role)
	}
}

func TestProvisioningService_Register_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.prov.Register(ctx, f.admin, "bob", "pass1234", "wrong"); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := f.prov.Register(ctx, f.admin, "", "pass1234", ""); !errors.Is(err, domain.ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
	if _, err := f.prov.Register(ctx, f.admin, "bob", "pass", ""); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if f.repo.count() != 1 {
		t.Fatalf("rejected registrations must not create users")
	}
}

func TestProvisioningService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if _, err := f.prov.Register(ctx, f.admin, "bob", "pass1234", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := f.prov.Register(ctx, f.admin, "bob", "pass5678", ""); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestProvisioningService_Register_Forbidden(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tech, err := f.prov.Register(ctx, f.admin, "tech1", "pass1234", "techniker")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	before := f.repo.count()

	if _, err := f.prov.Register(ctx, tech, "sneaky", "pass1234", "admin"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.prov.Register(ctx, nil, "sneaky", "pass1234", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for anonymous, got %v", err)
	}
	if f.repo.count() != before {
		t.Fatalf("forbidden registration created a user")
	}
}

func TestProvisioningService_Register_Concurrent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.prov.Register(ctx, f.admin, "racer", "pass1234", "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateIdentity):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || dupes != callers-1 {
		t.Fatalf("expected 1 success and %d duplicates, got %d and %d", callers-1, successes, dupes)
	}
	if f.repo.count() != 2 {
		t.Fatalf("expected admin plus one user, got %d records", f.repo.count())
	}
}

func TestProvisioningService_BootstrapAdmin_Idempotent(t *testing.T) {
	repo := newStubCredentialStore()
	prov := NewProvisioningService(repo, testHasher(), BootstrapAccount{}, zerolog.Nop())
	ctx := context.Background()

	created, err := prov.BootstrapAdmin(ctx)
	if err != nil || !created {
		t.Fatalf("first bootstrap: created=%v err=%v", created, err)
	}
	created, err = prov.BootstrapAdmin(ctx)
	if err != nil || created {
		t.Fatalf("second bootstrap: created=%v err=%v", created, err)
	}

	if repo.count() != 1 {
		t.Fatalf("expected exactly one user, got %d", repo.count())
	}
	admin, err := repo.FindByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if !admin.IsAdmin() {
		t.Fatalf("bootstrap user must be admin")
	}
	if !testHasher().Verify(DefaultBootstrapPassword, admin.PasswordHash) {
		t.Fatalf("bootstrap admin should use the default password when none is configured")
	}
}

func TestProvisioningService_BootstrapAdmin_ConfiguredPassword(t *testing.T) {
	repo := newStubCredentialStore()
	prov := NewProvisioningService(repo, testHasher(), BootstrapAccount{Username: "root", Password: "Rotated-2026"}, zerolog.Nop())

	if _, err := prov.BootstrapAdmin(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	admin, err := repo.FindByUsername(context.Background(), "root")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if !testHasher().Verify("Rotated-2026", admin.PasswordHash) {
		t.Fatalf("configured bootstrap password not applied")
	}
}

func TestProvisioningService_BootstrapAdmin_LostRace(t *testing.T) {
	repo := newStubCredentialStore()
	repo.createErr = domain.ErrDuplicateIdentity
	prov := NewProvisioningService(repo, testHasher(), BootstrapAccount{}, zerolog.Nop())

	created, err := prov.BootstrapAdmin(context.Background())
	if err != nil || created {
		t.Fatalf("duplicate on create must count as existing: created=%v err=%v", created, err)
	}
}

func TestProvisioningService_BootstrapAdmin_StoreFault(t *testing.T) {
	repo := newStubCredentialStore()
	repo.findErr = domain.ErrStoreUnavailable
	prov := NewProvisioningService(repo, testHasher(), BootstrapAccount{}, zerolog.Nop())

	if _, err := prov.BootstrapAdmin(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
