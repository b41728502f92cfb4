package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Role is the coarse authorization attribute of a user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "techniker"
)

// DefaultRole is assigned when provisioning omits a role.
const DefaultRole = RoleTechnician

const (
	minUsernameLen = 3
	maxUsernameLen = 64
)

// ParseRole maps a submitted role onto the closed role set. An empty value
// yields DefaultRole; anything unrecognised is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(s)) {
	case "":
		return DefaultRole, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTechnician:
		return RoleTechnician, nil
	}
	return "", ErrInvalidRole
}

// Roles lists every assignable role in display order.
func Roles() []Role {
	return []Role{RoleTechnician, RoleAdmin}
}

func (r Role) String() string { return string(r) }

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NormalizeUsername applies NFKC normalisation so visually identical names
// collapse to one identity. Comparison after normalisation is case-sensitive.
func NormalizeUsername(s string) string {
	return norm.NFKC.String(s)
}

// ValidateUsername checks an already normalised username.
func ValidateUsername(s string) error {
	n := utf8.RuneCountInString(s)
	if n < minUsernameLen || n > maxUsernameLen {
		return ErrInvalidUsername
	}
	if strings.TrimSpace(s) != s {
		return ErrInvalidUsername
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return ErrInvalidUsername
		}
	}
	return nil
}
