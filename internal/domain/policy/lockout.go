package policy

import (
	"math"
	"time"

	"jobportal/internal/domain/entity"
)

// Lockout is the per-account failed-login state machine. It is the only code
// allowed to change Account.FailedLoginAttempts and Account.LockoutEnd.
type Lockout struct {
	Threshold int
	Duration  time.Duration
}

// NewLockout builds a policy, falling back to 5 attempts and 30 minutes.
func NewLockout(threshold int, duration time.Duration) Lockout {
	if threshold <= 0 {
		threshold = 5
	}
	if duration <= 0 {
		duration = 30 * time.Minute
	}

	return Lockout{Threshold: threshold, Duration: duration}
}

// IsLocked reports whether the lockout deadline is still in the future.
func (p Lockout) IsLocked(acc *entity.Account, now time.Time) bool {
	return acc.LockoutEnd != nil && acc.LockoutEnd.After(now)
}

// Remaining returns the time left on an active lockout, or zero.
func (p Lockout) Remaining(acc *entity.Account, now time.Time) time.Duration {
	if !p.IsLocked(acc, now) {
		return 0
	}

	return acc.LockoutEnd.Sub(now)
}

// RemainingMinutes rounds the remaining lockout up to whole minutes.
func (p Lockout) RemainingMinutes(acc *entity.Account, now time.Time) int {
	return int(math.Ceil(p.Remaining(acc, now).Minutes()))
}

// RegisterFailure records one failed verification and reports whether it
// locked the account. Reaching the threshold sets the deadline and zeroes the
// counter.
func (p Lockout) RegisterFailure(acc *entity.Account, now time.Time) bool {
	acc.UpdatedAt = now

	if acc.FailedLoginAttempts+1 >= p.Threshold {
		end := now.Add(p.Duration)
		acc.LockoutEnd = &end
		acc.FailedLoginAttempts = 0

		return true
	}

	acc.FailedLoginAttempts++

	return false
}

// RegisterSuccess clears all lockout state.
func (p Lockout) RegisterSuccess(acc *entity.Account, now time.Time) {
	acc.FailedLoginAttempts = 0
	acc.LockoutEnd = nil
	acc.UpdatedAt = now
}

// NeedsReset reports whether RegisterSuccess would change anything, letting
// callers skip a write on the common clean-login path.
func (p Lockout) NeedsReset(acc *entity.Account) bool {
	return acc.FailedLoginAttempts != 0 || acc.LockoutEnd != nil
}
