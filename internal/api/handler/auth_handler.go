package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/schadensbericht/portal/internal/api/metrics"
	"github.com/schadensbericht/portal/internal/core/domain"
	"github.com/schadensbericht/portal/internal/core/ports"
)

const (
	NoticeLoginFailed     = "Login failed"
	NoticePasswordChanged = "Password changed"
	NoticeWrongPassword   = "Current password is incorrect"
	NoticeWeakPassword    = "New password must be 8 to 72 bytes and contain a letter and a non-letter"
)

type AuthHandler struct {
	authService ports.AuthService
	cookie      SessionCookie
}

func NewAuthHandler(authService ports.AuthService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     form:"new_password"     validate:"required"`
}

type noticeResponse struct {
	Notice string `json:"notice,omitempty"`
}

// LoginPage returns the login page model.
//
// @Summary      Login page
// @Tags         auth
// @Produce      json
// @Success      200  {object}  noticeResponse
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, noticeResponse{Notice: PopFlash(c)})
}

// Login authenticates a user and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body  loginRequest  true  "Login credentials"
// @Success      303
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  noticeResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	start := time.Now()
	sess, _, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			observeLogin("invalid_credentials", start)
			return c.JSON(http.StatusUnauthorized, noticeResponse{Notice: NoticeLoginFailed})
		}
		observeLogin("error", start)
		return err
	}
	observeLogin("success", start)
	metrics.SessionsStartedTotal.Inc()

	h.cookie.Set(c, sess)
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout ends the current session.
//
// @Summary      Logout
// @Tags         auth
// @Success      303
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := h.cookie.Token(c); token != "" {
		if err := h.authService.Logout(c.Request().Context(), token); err != nil {
			return err
		}
		metrics.SessionsEndedTotal.Inc()
	}
	h.cookie.Clear(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// ChangePassword replaces the password of the signed-in user.
//
// @Summary      Change own password
// @Tags         auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  noticeResponse
// @Success      303
// @Failure      422   {object}  noticeResponse
// @Router       /password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, noticeResponse{Notice: err.Error()})
	}

	err := h.authService.ChangePassword(c.Request().Context(), CurrentUser(c), req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, noticeResponse{Notice: NoticePasswordChanged})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnprocessableEntity, noticeResponse{Notice: NoticeWrongPassword})
	case errors.Is(err, domain.ErrWeakPassword):
		return c.JSON(http.StatusUnprocessableEntity, noticeResponse{Notice: NoticeWeakPassword})
	case errors.Is(err, domain.ErrUnauthenticated):
		// The account vanished after the session was resolved.
		h.cookie.Clear(c)
		return c.Redirect(http.StatusSeeOther, "/login")
	default:
		return err
	}
}

func observeLogin(outcome string, start time.Time) {
	metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
	metrics.LoginDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
