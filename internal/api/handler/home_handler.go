package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schadensbericht/portal/internal/core/domain"
)

const NoticeAdminsOnly = "This page is restricted to admins"

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

type homeResponse struct {
	User   *domain.User `json:"user"`
	Notice string       `json:"notice,omitempty"`
}

// Home returns the landing page model for the signed-in user.
//
// @Summary      Landing page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  homeResponse
// @Router       / [get]
func (h *HomeHandler) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, homeResponse{User: CurrentUser(c), Notice: PopFlash(c)})
}
