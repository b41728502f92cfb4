package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/schadensbericht/portal/internal/api/handler"
	"github.com/schadensbericht/portal/internal/core/domain"
)

func TestRequire(t *testing.T) {
	admin := &domain.User{ID: "1", Role: domain.RoleAdmin}
	tech := &domain.User{ID: "2", Role: domain.RoleTechnician}

	cases := []struct {
		name         string
		level        domain.AccessLevel
		user         *domain.User
		wantCalled   bool
		wantLocation string
		wantFlash    bool
	}{
		{"anyone anonymous", domain.AccessAnyone, nil, true, "", false},
		{"authenticated anonymous", domain.AccessAuthenticated, nil, false, "/login", false},
		{"authenticated tech", domain.AccessAuthenticated, tech, true, "", false},
		{"admin anonymous", domain.AccessAdmin, nil, false, "/login", false},
		{"admin tech", domain.AccessAdmin, tech, false, "/", true},
		{"admin admin", domain.AccessAdmin, admin, true, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/register", nil), rec)
			handler.SetCurrentUser(c, tc.user)

			called := false
			err := Require(tc.level)(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})(c)
			if err != nil {
				t.Fatalf("middleware error: %v", err)
			}

			if called != tc.wantCalled {
				t.Fatalf("expected called=%v, got %v", tc.wantCalled, called)
			}
			if tc.wantCalled {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d", rec.Code)
				}
				return
			}

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("expected 303, got %d", rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != tc.wantLocation {
				t.Fatalf("expected redirect to %q, got %q", tc.wantLocation, loc)
			}

			hasFlash := false
			for _, ck := range rec.Result().Cookies() {
				if ck.Name == "portal_flash" && ck.MaxAge > 0 {
					hasFlash = true
				}
			}
			if hasFlash != tc.wantFlash {
				t.Fatalf("expected flash=%v, got %v", tc.wantFlash, hasFlash)
			}
		})
	}
}
