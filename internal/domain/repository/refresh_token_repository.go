package repository

import (
	"context"
	"time"

	"jobportal/internal/domain/entity"
)

// RefreshTokenRepository stores hashed refresh secrets.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByHash returns domainerrors.ErrRefreshTokenInvalid when no row exists.
	FindByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	DeleteByAccountID(ctx context.Context, accountID int64) error

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
