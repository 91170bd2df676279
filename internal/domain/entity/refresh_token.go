package entity

import "time"

// RefreshToken represents a long-lived session secret. Only a SHA-256 hash of
// the raw secret is stored.
type RefreshToken struct {
	ID        int64
	AccountID int64
	TokenHash string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// IsExpired reports whether the token is no longer usable at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
