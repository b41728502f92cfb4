package middleware

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/schadensbericht/portal/internal/api/handler"
	"github.com/schadensbericht/portal/internal/core/domain"
	"github.com/schadensbericht/portal/internal/core/ports"
)

// Session resolves the session cookie into the current user. Requests with a
// missing, stale or forged cookie continue as anonymous; only store faults
// abort the request.
func Session(cookie handler.SessionCookie, sessions ports.SessionManager, users ports.UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			handler.SetCurrentUser(c, nil)

			token := cookie.Token(c)
			if token == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			userID, err := sessions.Resolve(ctx, token)
			if err != nil {
				return fmt.Errorf("resolve session: %w", err)
			}
			if userID == "" {
				cookie.Clear(c)
				return next(c)
			}

			user, err := users.FindByID(ctx, userID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					cookie.Clear(c)
					return next(c)
				}
				return fmt.Errorf("load session user: %w", err)
			}

			handler.SetCurrentUser(c, user)
			return next(c)
		}
	}
}
