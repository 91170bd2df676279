// Package lock implements service.AccountLocker for a single process and for
// a fleet sharing one Redis.
package lock

import (
	"context"
	"sync"

	"jobportal/internal/domain/service"
	"jobportal/internal/errors"
)

type memoryEntry struct {
	ch   chan struct{}
	refs int
}

// memoryLocker is a keyed mutex that honours context cancellation.
type memoryLocker struct {
	mu      sync.Mutex
	entries map[int64]*memoryEntry
}

// NewMemoryLocker returns an in-process AccountLocker.
func NewMemoryLocker() service.AccountLocker {
	return &memoryLocker{entries: make(map[int64]*memoryEntry)}
}

func (l *memoryLocker) Lock(ctx context.Context, accountID int64) (func(), error) {
	l.mu.Lock()
	entry, ok := l.entries[accountID]
	if !ok {
		entry = &memoryEntry{ch: make(chan struct{}, 1)}
		l.entries[accountID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(accountID, entry)

		return nil, errors.Wrap(ctx.Err(), "wait for account lock")
	}

	var once sync.Once

	return func() {
		once.Do(func() {
			<-entry.ch
			l.release(accountID, entry)
		})
	}, nil
}

func (l *memoryLocker) release(accountID int64, entry *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, accountID)
	}
}
