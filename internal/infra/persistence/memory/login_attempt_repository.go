package memory

import (
	"context"
	"time"

	"jobportal/internal/domain/entity"
	"jobportal/internal/domain/repository"
)

type loginAttemptRepository struct {
	v view
}

func NewLoginAttemptRepository(store *Store) repository.LoginAttemptRepository {
	return &loginAttemptRepository{v: store}
}

func (repo *loginAttemptRepository) Create(_ context.Context, attempt *entity.LoginAttempt) error {
	return repo.v.with(func(t *tables) error {
		attempt.ID = t.nextID()
		if attempt.CreatedAt.IsZero() {
			attempt.CreatedAt = time.Now()
		}
		cp := *attempt
		if attempt.AccountID != nil {
			id := *attempt.AccountID
			cp.AccountID = &id
		}
		t.attempts = append(t.attempts, &cp)

		return nil
	})
}

// Attempts returns every recorded attempt in insertion order.
func (s *Store) Attempts() []entity.LoginAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.LoginAttempt, 0, len(s.state.attempts))
	for _, a := range s.state.attempts {
		out = append(out, *a)
	}

	return out
}
