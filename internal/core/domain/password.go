package domain

import "unicode"

const (
	MinPasswordBytes = 8
	// MaxPasswordBytes matches the bcrypt input limit; longer inputs would be
	// silently truncated by the hash.
	MaxPasswordBytes = 72
)

// ValidatePassword enforces the minimum password policy: 8 to 72 bytes with
// at least one letter and at least one non-letter.
func ValidatePassword(p string) error {
	if len(p) < MinPasswordBytes || len(p) > MaxPasswordBytes {
		return ErrWeakPassword
	}
	var letter, other bool
	for _, r := range p {
		if unicode.IsLetter(r) {
			letter = true
		} else {
			other = true
		}
	}
	if !letter || !other {
		return ErrWeakPassword
	}
	return nil
}
