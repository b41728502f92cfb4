// Package password implements the one-way password transform with bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/schadensbericht/portal/internal/core/domain"
)

// BcryptHasher hashes passwords with a tunable work factor. The salt is
// embedded in the produced hash.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, clamped to bcrypt's valid range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > domain.MaxPasswordBytes {
		return "", domain.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext produced hash. The comparison inside
// bcrypt runs in constant time. Input longer than the bcrypt limit never
// verifies, since bcrypt would otherwise compare only its first 72 bytes.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if len(plaintext) > domain.MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
