// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"jobportal/internal/domain/entity"
)

// AccountRepository is the credential store. Email is not unique across the
// store, so lookups by email return every matching account.
type AccountRepository interface {
	// Create persists a new account and fills its ID and timestamps.
	Create(ctx context.Context, account *entity.Account) error

	// FindByEmail returns all accounts whose email matches case-insensitively.
	FindByEmail(ctx context.Context, email string) ([]*entity.Account, error)

	// FindByID returns domainerrors.ErrAccountNotFound when no row exists.
	FindByID(ctx context.Context, id int64) (*entity.Account, error)

	// UpdateSecurityState saves FailedLoginAttempts, LockoutEnd and UpdatedAt.
	UpdateSecurityState(ctx context.Context, account *entity.Account) error

	// UpdatePassword saves PasswordHash together with the lockout fields and UpdatedAt.
	UpdatePassword(ctx context.Context, account *entity.Account) error
}
