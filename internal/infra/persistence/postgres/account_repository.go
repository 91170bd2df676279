package postgres

import (
	"context"
	"time"

	"jobportal/internal/domain/entity"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/repository"
	"jobportal/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	m := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrAccountAlreadyExists.WrapMessage(account.Email)
		}
		if isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid account data")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	account.ID = m.ID
	account.CreatedAt = m.CreatedAt
	account.UpdatedAt = m.UpdatedAt

	return nil
}

// FindByEmail matches case-insensitively and returns every role's account.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) ([]*entity.Account, error) {
	var models []*model.AccountModel

	err := repo.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Find(&models).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find accounts by email")
	}

	accounts := make([]*entity.Account, 0, len(models))
	for _, m := range models {
		accounts = append(accounts, toAccountDomain(m))
	}

	return accounts, nil
}

func (repo *accountRepository) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	var m model.AccountModel

	err := repo.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account by id")
	}

	return toAccountDomain(&m), nil
}

func (repo *accountRepository) UpdateSecurityState(ctx context.Context, account *entity.Account) error {
	return repo.update(ctx, account.ID, map[string]any{
		"failed_login_attempts": account.FailedLoginAttempts,
		"lockout_end":           account.LockoutEnd,
		"updated_at":            updatedAt(account),
	})
}

func (repo *accountRepository) UpdatePassword(ctx context.Context, account *entity.Account) error {
	return repo.update(ctx, account.ID, map[string]any{
		"password":              account.PasswordHash,
		"failed_login_attempts": account.FailedLoginAttempts,
		"lockout_end":           account.LockoutEnd,
		"updated_at":            updatedAt(account),
	})
}

func (repo *accountRepository) update(ctx context.Context, id int64, fields map[string]any) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update account")
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAccountNotFound
	}

	return nil
}

func updatedAt(account *entity.Account) time.Time {
	if account.UpdatedAt.IsZero() {
		return time.Now()
	}

	return account.UpdatedAt
}

func toAccountDomain(m *model.AccountModel) *entity.Account {
	return &entity.Account{
		ID:                  m.ID,
		Username:            m.Username,
		Email:               m.Email,
		PasswordHash:        m.Password,
		Role:                m.Role,
		Status:              m.Status,
		VerificationStatus:  m.VerificationStatus,
		PhoneNumber:         m.PhoneNumber,
		FailedLoginAttempts: m.FailedLoginAttempts,
		LockoutEnd:          m.LockoutEnd,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func fromAccountDomain(a *entity.Account) *model.AccountModel {
	return &model.AccountModel{
		ID:                  a.ID,
		Username:            a.Username,
		Email:               a.Email,
		Password:            a.PasswordHash,
		Role:                a.Role,
		Status:              a.Status,
		VerificationStatus:  a.VerificationStatus,
		PhoneNumber:         a.PhoneNumber,
		FailedLoginAttempts: a.FailedLoginAttempts,
		LockoutEnd:          a.LockoutEnd,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}
