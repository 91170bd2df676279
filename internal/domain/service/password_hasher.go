// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash. Any failure, including a
	// malformed or empty hash, is reported as a mismatch.
	Check(password, hash string) bool

	// CompareDummy spends the time of one Check without a stored hash, for
	// login paths that must not reveal whether an account exists.
	CompareDummy(password string)

	// IsDigest reports whether a stored value was produced by this hasher.
	// Anything else is treated as a legacy plaintext credential.
	IsDigest(value string) bool

	// ValidatePasswordStrength returns domainerrors.ErrPasswordStrength with a
	// specific message when the password violates the complexity policy.
	ValidatePasswordStrength(password string) error
}
