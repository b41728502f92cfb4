package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/schadensbericht/portal/internal/core/domain"
)

const currentUserKey = "current_user"

// SetCurrentUser stores the identity resolved for this request. Passing nil
// marks the request as anonymous.
func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(currentUserKey, user)
}

// CurrentUser returns the identity resolved by the session middleware, or
// nil for anonymous requests.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(currentUserKey).(*domain.User)
	return user
}

func currentUserID(c echo.Context) string {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}
