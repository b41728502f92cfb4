package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/schadensbericht/portal/internal/core/domain"
)

type stubAuthService struct {
	loginFn          func(ctx context.Context, username, password string) (*domain.Session, *domain.User, error)
	logoutFn         func(ctx context.Context, token string) error
	changePasswordFn func(ctx context.Context, user *domain.User, current, next string) error
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.Session, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, user *domain.User, current, next string) error {
	return s.changePasswordFn(ctx, user, current, next)
}

type stubProvisioningService struct {
	registerFn func(ctx context.Context, requester *domain.User, username, password, role string) (*domain.User, error)
}

func (s *stubProvisioningService) Register(ctx context.Context, requester *domain.User, username, password, role string) (*domain.User, error) {
	return s.registerFn(ctx, requester, username, password, role)
}

func (s *stubProvisioningService) BootstrapAdmin(ctx context.Context) (bool, error) {
	return false, nil
}

type stubExporter struct {
	body string
	err  error
}

func (s *stubExporter) Write(ctx context.Context, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, s.body)
	return err
}

var testCookie = SessionCookie{Name: "portal_session"}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func formRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
