package service

import "context"

// AccountLocker serializes work on a single account across concurrent requests.
type AccountLocker interface {
	// Lock blocks until the account lock is held or ctx is done. The returned
	// function releases the lock and is safe to call once.
	Lock(ctx context.Context, accountID int64) (unlock func(), err error)
}
