package postgres

import (
	"context"
	"time"

	"jobportal/internal/domain/entity"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/repository"
	"jobportal/internal/infra/persistence/model"

	"gorm.io/gorm"
)

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) repository.PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (repo *passwordResetRepository) Create(ctx context.Context, token *entity.PasswordResetToken) error {
	m := &model.PasswordResetTokenModel{
		AccountID: token.AccountID,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		IPAddress: token.IPAddress,
		UserAgent: token.UserAgent,
		CreatedAt: token.CreatedAt,
	}

	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrAccountNotFound.WrapMessage("reset token references a missing account")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create password reset token")
	}

	token.ID = m.ID
	token.CreatedAt = m.CreatedAt

	return nil
}

func (repo *passwordResetRepository) FindActive(ctx context.Context, now time.Time) ([]*entity.PasswordResetToken, error) {
	var models []*model.PasswordResetTokenModel

	err := repo.db.WithContext(ctx).
		Where("used = ? AND expires_at > ?", false, now).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to load active reset tokens")
	}

	tokens := make([]*entity.PasswordResetToken, 0, len(models))
	for _, m := range models {
		tokens = append(tokens, &entity.PasswordResetToken{
			ID:        m.ID,
			AccountID: m.AccountID,
			TokenHash: m.TokenHash,
			ExpiresAt: m.ExpiresAt,
			Used:      m.Used,
			UsedAt:    m.UsedAt,
			IPAddress: m.IPAddress,
			UserAgent: m.UserAgent,
			CreatedAt: m.CreatedAt,
		})
	}

	return tokens, nil
}

// MarkUsed is a conditional update, so only one concurrent redemption can flip the flag.
func (repo *passwordResetRepository) MarkUsed(ctx context.Context, id int64, usedAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PasswordResetTokenModel{}).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]any{
			"used":    true,
			"used_at": usedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark reset token used")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidResetToken
	}

	return nil
}

func (repo *passwordResetRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("used = ? OR expires_at < ?", true, before).
		Delete(&model.PasswordResetTokenModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to purge reset tokens")
	}

	return result.RowsAffected, nil
}
