package ports

// PasswordHasher is a one-way, salted password transform.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
