package entity

import "time"

// PasswordResetToken stores the bcrypt hash of a reset secret, never the secret itself.
type PasswordResetToken struct {
	ID        int64
	AccountID int64
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// IsActive reports whether the token may still be redeemed at now.
func (t *PasswordResetToken) IsActive(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
