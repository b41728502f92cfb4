package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/schadensbericht/portal/internal/core/domain"
)

var adminUser = &domain.User{ID: "1", Username: "admin", Role: domain.RoleAdmin}

func TestRegisterHandler_Page(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/register", nil), rec)
	SetCurrentUser(c, adminUser)

	if err := NewRegisterHandler(&stubProvisioningService{}).Page(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp registerPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Roles) != 2 || resp.Roles[0] != "techniker" || resp.Roles[1] != "admin" {
		t.Fatalf("unexpected roles: %v", resp.Roles)
	}
}

func TestRegisterHandler_Success(t *testing.T) {
	e := newEcho()
	stub := &stubProvisioningService{
		registerFn: func(ctx context.Context, requester *domain.User, username, password, role string) (*domain.User, error) {
			if requester != adminUser {
				t.Fatalf("requester not passed through")
			}
			if username != "tech1" || password != "s3cret-pass" || role != "" {
				t.Fatalf("unexpected args: %s %s %q", username, password, role)
			}
			return &domain.User{ID: "2", Username: username, Role: domain.RoleTechnician, PasswordHash: "$2a$secret"}, nil
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/register", "username=tech1&password=s3cret-pass"), rec)
	SetCurrentUser(c, adminUser)

	if err := NewRegisterHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("password hash leaked into response: %s", rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["notice"] != NoticeUserCreated {
		t.Fatalf("unexpected notice %v", resp["notice"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "tech1" || user["role"] != "techniker" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestRegisterHandler_Failures(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantNotice string
	}{
		{"duplicate", domain.ErrDuplicateIdentity, http.StatusConflict, NoticeUsernameTaken},
		{"invalid username", domain.ErrInvalidUsername, http.StatusUnprocessableEntity, NoticeInvalidUsername},
		{"weak password", domain.ErrWeakPassword, http.StatusUnprocessableEntity, NoticeWeakPassword},
		{"invalid role", domain.ErrInvalidRole, http.StatusUnprocessableEntity, NoticeInvalidRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			stub := &stubProvisioningService{
				registerFn: func(ctx context.Context, requester *domain.User, username, password, role string) (*domain.User, error) {
					return nil, tc.err
				},
			}

			rec := httptest.NewRecorder()
			c := e.NewContext(formRequest(http.MethodPost, "/register", "username=tech1&password=s3cret-pass&role=techniker"), rec)
			SetCurrentUser(c, adminUser)

			if err := NewRegisterHandler(stub).Register(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rec.Code)
			}

			var resp registerResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Notice != tc.wantNotice {
				t.Fatalf("expected notice %q, got %q", tc.wantNotice, resp.Notice)
			}
			if resp.Form == nil || resp.Form.Username != "tech1" || resp.Form.Role != "techniker" {
				t.Fatalf("form not echoed: %+v", resp.Form)
			}
			if strings.Contains(rec.Body.String(), "s3cret-pass") {
				t.Fatalf("password echoed back: %s", rec.Body.String())
			}
		})
	}
}

func TestRegisterHandler_MissingFields(t *testing.T) {
	e := newEcho()
	stub := &stubProvisioningService{
		registerFn: func(ctx context.Context, requester *domain.User, username, password, role string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/register", "username=tech1"), rec)
	SetCurrentUser(c, adminUser)

	if err := NewRegisterHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestRegisterHandler_ForbiddenRedirects(t *testing.T) {
	e := newEcho()
	stub := &stubProvisioningService{
		registerFn: func(ctx context.Context, requester *domain.User, username, password, role string) (*domain.User, error) {
			return nil, domain.ErrForbidden
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/register", "username=x&password=y"), rec)
	SetCurrentUser(c, &domain.User{ID: "2", Role: domain.RoleTechnician})

	if err := NewRegisterHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if findCookie(rec, flashCookieName) == nil {
		t.Fatalf("expected a flash notice")
	}
}
