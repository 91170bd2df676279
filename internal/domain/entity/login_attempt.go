package entity

import "time"

// AttemptOutcome classifies why a login attempt ended the way it did.
type AttemptOutcome string

const (
	AttemptSucceeded       AttemptOutcome = "success"
	AttemptUnknownAccount  AttemptOutcome = "unknown_account"
	AttemptAccountLocked   AttemptOutcome = "locked"
	AttemptLegacyPassword  AttemptOutcome = "legacy_password"
	AttemptInvalidPassword AttemptOutcome = "invalid_password"
)

// LoginAttempt is an immutable audit record of one login call.
type LoginAttempt struct {
	ID         int64
	AccountID  *int64 // nil when the identifier did not resolve to an account
	Identifier string
	Success    bool
	Outcome    AttemptOutcome
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}
