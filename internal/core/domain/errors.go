package domain

import "errors"

// Authentication and authorization outcomes. These are expected control
// flow and always resolve to a redirect or a notice.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
)

// Provisioning outcomes.
var (
	ErrDuplicateIdentity = errors.New("username already exists")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrWeakPassword      = errors.New("password does not meet policy")
)

// Lookup misses inside the stores.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Infrastructure faults; the only errors allowed to surface as hard failures.
var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrExportFailed     = errors.New("export failed")
)
