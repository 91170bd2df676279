package memory

import (
	"context"
	"strings"
	"time"

	"jobportal/internal/domain/entity"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/repository"
)

type accountRepository struct {
	v view
}

func NewAccountRepository(store *Store) repository.AccountRepository {
	return &accountRepository{v: store}
}

func (repo *accountRepository) Create(_ context.Context, account *entity.Account) error {
	return repo.v.with(func(t *tables) error {
		for _, existing := range t.accounts {
			if strings.EqualFold(existing.Email, account.Email) && strings.EqualFold(existing.Role, account.Role) {
				return domainerrors.ErrAccountAlreadyExists.WrapMessage(account.Email)
			}
		}

		now := time.Now()
		account.ID = t.nextID()
		if account.CreatedAt.IsZero() {
			account.CreatedAt = now
		}
		if account.UpdatedAt.IsZero() {
			account.UpdatedAt = now
		}
		t.accounts[account.ID] = copyAccount(account)

		return nil
	})
}

func (repo *accountRepository) FindByEmail(_ context.Context, email string) ([]*entity.Account, error) {
	var found []*entity.Account
	err := repo.v.with(func(t *tables) error {
		for _, a := range t.accounts {
			if strings.EqualFold(a.Email, email) {
				found = append(found, copyAccount(a))
			}
		}

		return nil
	})

	return found, err
}

func (repo *accountRepository) FindByID(_ context.Context, id int64) (*entity.Account, error) {
	var found *entity.Account
	err := repo.v.with(func(t *tables) error {
		a, ok := t.accounts[id]
		if !ok {
			return domainerrors.ErrAccountNotFound
		}
		found = copyAccount(a)

		return nil
	})

	return found, err
}

func (repo *accountRepository) UpdateSecurityState(_ context.Context, account *entity.Account) error {
	return repo.update(account, func(stored *entity.Account) {
		stored.FailedLoginAttempts = account.FailedLoginAttempts
		stored.LockoutEnd = copyAccount(account).LockoutEnd
	})
}

func (repo *accountRepository) UpdatePassword(_ context.Context, account *entity.Account) error {
	return repo.update(account, func(stored *entity.Account) {
		stored.PasswordHash = account.PasswordHash
		stored.FailedLoginAttempts = account.FailedLoginAttempts
		stored.LockoutEnd = copyAccount(account).LockoutEnd
	})
}

func (repo *accountRepository) update(account *entity.Account, apply func(stored *entity.Account)) error {
	return repo.v.with(func(t *tables) error {
		stored, ok := t.accounts[account.ID]
		if !ok {
			return domainerrors.ErrAccountNotFound
		}
		apply(stored)
		stored.UpdatedAt = account.UpdatedAt
		if stored.UpdatedAt.IsZero() {
			stored.UpdatedAt = time.Now()
		}

		return nil
	})
}
