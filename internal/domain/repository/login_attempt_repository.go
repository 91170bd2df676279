package repository

import (
	"context"

	"jobportal/internal/domain/entity"
)

// LoginAttemptRepository is append-only.
type LoginAttemptRepository interface {
	Create(ctx context.Context, attempt *entity.LoginAttempt) error
}
