package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schadensbericht/portal/internal/api/metrics"
	"github.com/schadensbericht/portal/internal/core/domain"
	"github.com/schadensbericht/portal/internal/core/ports"
)

const (
	NoticeUserCreated     = "User created successfully"
	NoticeUsernameTaken   = "Username already exists"
	NoticeInvalidUsername = "Username must be 3 to 64 characters without surrounding spaces"
	NoticeInvalidRole     = "Unknown role"
)

// RegisterHandler serves the admin-only account provisioning page.
type RegisterHandler struct {
	service ports.ProvisioningService
}

func NewRegisterHandler(service ports.ProvisioningService) *RegisterHandler {
	return &RegisterHandler{service: service}
}

type registerRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role"     form:"role"`
}

// registerForm echoes the submitted form without the password.
type registerForm struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type registerPageResponse struct {
	Notice string   `json:"notice,omitempty"`
	Roles  []string `json:"roles"`
}

type registerResponse struct {
	Notice string        `json:"notice"`
	User   *domain.User  `json:"user,omitempty"`
	Form   *registerForm `json:"form,omitempty"`
}

// Page returns the registration page model.
//
// @Summary      Registration page
// @Tags         users
// @Produce      json
// @Success      200  {object}  registerPageResponse
// @Router       /register [get]
func (h *RegisterHandler) Page(c echo.Context) error {
	roles := domain.Roles()
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return c.JSON(http.StatusOK, registerPageResponse{Notice: PopFlash(c), Roles: names})
}

// Register creates a new user account on behalf of the signed-in admin.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      409   {object}  registerResponse
// @Failure      422   {object}  registerResponse
// @Router       /register [post]
func (h *RegisterHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	form := &registerForm{Username: req.Username, Role: req.Role}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, registerResponse{Notice: err.Error(), Form: form})
	}

	user, err := h.service.Register(c.Request().Context(), CurrentUser(c), req.Username, req.Password, req.Role)
	if err != nil {
		return h.fail(c, err, form)
	}

	metrics.UsersProvisionedTotal.WithLabelValues(user.Role.String(), "register").Inc()
	return c.JSON(http.StatusCreated, registerResponse{Notice: NoticeUserCreated, User: user})
}

func (h *RegisterHandler) fail(c echo.Context, err error, form *registerForm) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return c.JSON(http.StatusConflict, registerResponse{Notice: NoticeUsernameTaken, Form: form})
	case errors.Is(err, domain.ErrInvalidUsername):
		return c.JSON(http.StatusUnprocessableEntity, registerResponse{Notice: NoticeInvalidUsername, Form: form})
	case errors.Is(err, domain.ErrWeakPassword):
		return c.JSON(http.StatusUnprocessableEntity, registerResponse{Notice: NoticeWeakPassword, Form: form})
	case errors.Is(err, domain.ErrInvalidRole):
		return c.JSON(http.StatusUnprocessableEntity, registerResponse{Notice: NoticeInvalidRole, Form: form})
	case errors.Is(err, domain.ErrForbidden):
		SetFlash(c, NoticeAdminsOnly)
		return c.Redirect(http.StatusSeeOther, "/")
	default:
		return err
	}
}
