package memory

import (
	"context"
	"sort"
	"time"

	"jobportal/internal/domain/entity"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/repository"
)

type passwordResetRepository struct {
	v view
}

func NewPasswordResetRepository(store *Store) repository.PasswordResetRepository {
	return &passwordResetRepository{v: store}
}

func (repo *passwordResetRepository) Create(_ context.Context, token *entity.PasswordResetToken) error {
	return repo.v.with(func(t *tables) error {
		if _, ok := t.accounts[token.AccountID]; !ok {
			return domainerrors.ErrAccountNotFound.WrapMessage("reset token references a missing account")
		}
		token.ID = t.nextID()
		if token.CreatedAt.IsZero() {
			token.CreatedAt = time.Now()
		}
		t.resets[token.ID] = copyReset(token)

		return nil
	})
}

func (repo *passwordResetRepository) FindActive(_ context.Context, now time.Time) ([]*entity.PasswordResetToken, error) {
	var found []*entity.PasswordResetToken
	err := repo.v.with(func(t *tables) error {
		for _, r := range t.resets {
			if r.IsActive(now) {
				found = append(found, copyReset(r))
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].ID > found[j].ID })

	return found, nil
}

func (repo *passwordResetRepository) MarkUsed(_ context.Context, id int64, usedAt time.Time) error {
	return repo.v.with(func(t *tables) error {
		r, ok := t.resets[id]
		if !ok || r.Used {
			return domainerrors.ErrInvalidResetToken
		}
		r.Used = true
		at := usedAt
		r.UsedAt = &at

		return nil
	})
}

func (repo *passwordResetRepository) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	var n int64
	err := repo.v.with(func(t *tables) error {
		for id, r := range t.resets {
			if r.Used || r.ExpiresAt.Before(before) {
				delete(t.resets, id)
				n++
			}
		}

		return nil
	})

	return n, err
}
