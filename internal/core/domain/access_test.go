package domain

import (
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	admin := &User{ID: "1", Username: "admin", Role: RoleAdmin}
	tech := &User{ID: "2", Username: "tech1", Role: RoleTechnician}

	cases := []struct {
		name   string
		user   *User
		level  AccessLevel
		permit bool
		reason error
	}{
		{"anonymous on open route", nil, AccessAnyone, true, nil},
		{"anonymous on authenticated route", nil, AccessAuthenticated, false, ErrUnauthenticated},
		{"anonymous on admin route", nil, AccessAdmin, false, ErrUnauthenticated},
		{"technician on authenticated route", tech, AccessAuthenticated, true, nil},
		{"technician on admin route", tech, AccessAdmin, false, ErrForbidden},
		{"admin on admin route", admin, AccessAdmin, true, nil},
		{"unknown level", admin, AccessLevel(42), false, ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(tc.user, tc.level)
			if d.Permit != tc.permit {
				t.Fatalf("expected permit=%v, got %v", tc.permit, d.Permit)
			}
			if !errors.Is(d.Reason, tc.reason) && !(tc.reason == nil && d.Reason == nil) {
				t.Fatalf("expected reason %v, got %v", tc.reason, d.Reason)
			}
		})
	}
}
