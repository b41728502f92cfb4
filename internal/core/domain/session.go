package domain

import "time"

// Session is the binding of a client to a user id. Token is the value the
// client presents; ID is the server-side key it resolves through.
type Session struct {
	ID        string
	Token     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
