package repository

import (
	"context"
	"time"

	"jobportal/internal/domain/entity"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, token *entity.PasswordResetToken) error

	// FindActive returns every unused token whose expiry is after now.
	FindActive(ctx context.Context, now time.Time) ([]*entity.PasswordResetToken, error)

	// MarkUsed flips the used flag once. It returns domainerrors.ErrInvalidResetToken
	// when the token was already used, so concurrent redemptions cannot both win.
	MarkUsed(ctx context.Context, id int64, usedAt time.Time) error

	// DeleteStale removes used tokens and tokens that expired before the cutoff.
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
