package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schadensbericht/portal/internal/api/handler"
	"github.com/schadensbericht/portal/internal/api/metrics"
	"github.com/schadensbericht/portal/internal/core/domain"
)

const (
	LoginPath   = "/login"
	LandingPath = "/"
)

// Require gates a route behind level. Anonymous callers are sent to the
// login page; signed-in callers without the admin role are sent back to the
// landing page with a notice.
func Require(level domain.AccessLevel) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := domain.Authorize(handler.CurrentUser(c), level)
			if decision.Permit {
				return next(c)
			}

			if errors.Is(decision.Reason, domain.ErrUnauthenticated) {
				metrics.GuardDenialsTotal.WithLabelValues(level.String(), "unauthenticated").Inc()
				return c.Redirect(http.StatusSeeOther, LoginPath)
			}

			metrics.GuardDenialsTotal.WithLabelValues(level.String(), "forbidden").Inc()
			handler.SetFlash(c, handler.NoticeAdminsOnly)
			return c.Redirect(http.StatusSeeOther, LandingPath)
		}
	}
}
