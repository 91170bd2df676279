// Package entity contains the core business objects of the authentication core.
package entity

import "time"

// Account is one login identity. The same email may appear on several accounts
// with different roles; see policy.ResolveAccount.
type Account struct {
	ID                 int64
	Username           string
	Email              string
	PasswordHash       string // bcrypt digest, empty, or a legacy plaintext value
	Role               string
	Status             string
	VerificationStatus string
	PhoneNumber        string

	// FailedLoginAttempts and LockoutEnd are owned by policy.Lockout.
	FailedLoginAttempts int
	LockoutEnd          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenRole returns the role placed in issued tokens.
func (a *Account) TokenRole() string {
	if a.Role == "" {
		return DefaultTokenRole
	}

	return a.Role
}

// HasPassword reports whether any credential value is stored.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}
