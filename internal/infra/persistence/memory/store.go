// Package memory is an in-process persistence backend. It keeps the same
// contracts as the postgres package and is used for local runs and tests.
package memory

import (
	"sync"

	"jobportal/internal/domain/entity"
)

// Store holds every table behind one mutex.
type Store struct {
	mu    sync.Mutex
	state *tables
}

type tables struct {
	seq      int64
	accounts map[int64]*entity.Account
	attempts []*entity.LoginAttempt
	resets   map[int64]*entity.PasswordResetToken
	refresh  map[int64]*entity.RefreshToken
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newTables()}
}

func newTables() *tables {
	return &tables{
		accounts: make(map[int64]*entity.Account),
		resets:   make(map[int64]*entity.PasswordResetToken),
		refresh:  make(map[int64]*entity.RefreshToken),
	}
}

func (t *tables) nextID() int64 {
	t.seq++

	return t.seq
}

func (t *tables) clone() *tables {
	c := newTables()
	c.seq = t.seq
	for id, a := range t.accounts {
		c.accounts[id] = copyAccount(a)
	}
	// Attempts are append-only, so sharing the records is safe.
	c.attempts = append(make([]*entity.LoginAttempt, 0, len(t.attempts)), t.attempts...)
	for id, r := range t.resets {
		c.resets[id] = copyReset(r)
	}
	for id, r := range t.refresh {
		cp := *r
		c.refresh[id] = &cp
	}

	return c
}

// view runs fn against a table set. The store view locks, the transaction
// view is already inside the lock.
type view interface {
	with(fn func(t *tables) error) error
}

func (s *Store) with(fn func(t *tables) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.state)
}

type txView struct {
	state *tables
}

func (v *txView) with(fn func(t *tables) error) error {
	return fn(v.state)
}

func copyAccount(a *entity.Account) *entity.Account {
	cp := *a
	if a.LockoutEnd != nil {
		end := *a.LockoutEnd
		cp.LockoutEnd = &end
	}

	return &cp
}

func copyReset(r *entity.PasswordResetToken) *entity.PasswordResetToken {
	cp := *r
	if r.UsedAt != nil {
		at := *r.UsedAt
		cp.UsedAt = &at
	}

	return &cp
}
