package postgres

import (
	"context"

	"jobportal/internal/domain/entity"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/repository"
	"jobportal/internal/infra/persistence/model"

	"gorm.io/gorm"
)

type loginAttemptRepository struct {
	db *gorm.DB
}

func NewLoginAttemptRepository(db *gorm.DB) repository.LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

func (repo *loginAttemptRepository) Create(ctx context.Context, attempt *entity.LoginAttempt) error {
	m := &model.LoginAttemptModel{
		AccountID:  attempt.AccountID,
		Identifier: attempt.Identifier,
		Success:    attempt.Success,
		Outcome:    string(attempt.Outcome),
		IPAddress:  attempt.IPAddress,
		UserAgent:  attempt.UserAgent,
		CreatedAt:  attempt.CreatedAt,
	}

	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to record login attempt")
	}

	attempt.ID = m.ID
	attempt.CreatedAt = m.CreatedAt

	return nil
}
