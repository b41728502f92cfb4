package domain

// AccessLevel is the state a caller must be in to reach an operation.
type AccessLevel int

const (
	AccessAnyone AccessLevel = iota
	AccessAuthenticated
	AccessAdmin
)

func (l AccessLevel) String() string {
	switch l {
	case AccessAnyone:
		return "anyone"
	case AccessAuthenticated:
		return "authenticated"
	case AccessAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Decision is the outcome of an authorization check. Reason is
// ErrUnauthenticated or ErrForbidden when Permit is false.
type Decision struct {
	Permit bool
	Reason error
}

// Authorize decides whether user (nil for anonymous) may reach an operation
// that requires level.
func Authorize(user *User, level AccessLevel) Decision {
	switch level {
	case AccessAnyone:
		return Decision{Permit: true}
	case AccessAuthenticated:
		if user == nil {
			return Decision{Reason: ErrUnauthenticated}
		}
		return Decision{Permit: true}
	case AccessAdmin:
		if user == nil {
			return Decision{Reason: ErrUnauthenticated}
		}
		if !user.IsAdmin() {
			return Decision{Reason: ErrForbidden}
		}
		return Decision{Permit: true}
	}
	return Decision{Reason: ErrForbidden}
}
