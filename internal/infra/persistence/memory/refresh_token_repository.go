package memory

import (
	"context"
	"time"

	"jobportal/internal/domain/entity"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/repository"
)

type refreshTokenRepository struct {
	v view
}

func NewRefreshTokenRepository(store *Store) repository.RefreshTokenRepository {
	return &refreshTokenRepository{v: store}
}

func (repo *refreshTokenRepository) Create(_ context.Context, token *entity.RefreshToken) error {
	return repo.v.with(func(t *tables) error {
		token.ID = t.nextID()
		if token.CreatedAt.IsZero() {
			token.CreatedAt = time.Now()
		}
		cp := *token
		t.refresh[token.ID] = &cp

		return nil
	})
}

func (repo *refreshTokenRepository) FindByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	var found *entity.RefreshToken
	err := repo.v.with(func(t *tables) error {
		for _, r := range t.refresh {
			if r.TokenHash == tokenHash {
				cp := *r
				found = &cp

				return nil
			}
		}

		return domainerrors.ErrRefreshTokenInvalid
	})

	return found, err
}

func (repo *refreshTokenRepository) DeleteByAccountID(_ context.Context, accountID int64) error {
	return repo.v.with(func(t *tables) error {
		for id, r := range t.refresh {
			if r.AccountID == accountID {
				delete(t.refresh, id)
			}
		}

		return nil
	})
}

func (repo *refreshTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	err := repo.v.with(func(t *tables) error {
		for id, r := range t.refresh {
			if r.IsExpired(now) {
				delete(t.refresh, id)
				n++
			}
		}

		return nil
	})

	return n, err
}
