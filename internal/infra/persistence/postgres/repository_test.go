package postgres

import (
	"context"
	"testing"
	"time"

	"jobportal/internal/domain/entity"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/repository"
	"jobportal/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormpg.New(gormpg.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	return db, mock
}

func TestAccountRepository_FindByEmailIsCaseInsensitive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	updated := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Jane@Example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password", "role", "failed_login_attempts", "updated_at"}).
			AddRow(1, "jane@example.com", "$2a$10$abc", "Admin", 2, updated).
			AddRow(2, "JANE@example.com", "", "Candidate", 0, updated))

	accounts, err := repo.FindByEmail(context.Background(), "Jane@Example.com")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(1), accounts[0].ID)
	assert.Equal(t, "$2a$10$abc", accounts[0].PasswordHash)
	assert.Equal(t, 2, accounts[0].FailedLoginAttempts)
	assert.Equal(t, "Candidate", accounts[1].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_FindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_UpdateSecurityState(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	end := time.Now().Add(30 * time.Minute)

	mock.ExpectExec(`UPDATE "users" SET .*"failed_login_attempts"=.*"lockout_end"=.*WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateSecurityState(context.Background(), &entity.Account{ID: 1, LockoutEnd: &end}))

	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateSecurityState(context.Background(), &entity.Account{ID: 2})
	assert.True(t, errors.Is(err, domainerrors.ErrAccountNotFound))

	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnError(errors.New("connection reset"))
	err = repo.UpdatePassword(context.Background(), &entity.Account{ID: 3, PasswordHash: "$2a$10$x"})
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", appErr.ErrorCode())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRepository_MarkUsedOnlyOnce(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPasswordResetRepository(db)
	now := time.Now()

	mock.ExpectExec(`UPDATE "password_reset_tokens" SET .*WHERE id = \$\d+ AND used = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkUsed(context.Background(), 5, now))

	mock.ExpectExec(`UPDATE "password_reset_tokens" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkUsed(context.Background(), 5, now)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidResetToken))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRepository_FindActiveFiltersUsedAndExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPasswordResetRepository(db)
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "password_reset_tokens" WHERE used = \$1 AND expires_at > \$2 ORDER BY created_at DESC`).
		WithArgs(false, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "token_hash", "expires_at", "used"}).
			AddRow(3, 10, "$2a$10$hash", now.Add(time.Hour), false))

	tokens, err := repo.FindActive(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, int64(10), tokens[0].AccountID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginAttemptRepository_CreateUnknownAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoginAttemptRepository(db)

	mock.ExpectQuery(`INSERT INTO "login_attempts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))

	attempt := &entity.LoginAttempt{
		Identifier: "ghost@example.com",
		Outcome:    entity.AttemptUnknownAccount,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), attempt))
	assert.Equal(t, int64(77), attempt.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_CommitAndRollback(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "password_reset_tokens" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tm.Execute(context.Background(), func(f repository.RepositoryFactory) error {
		if err := f.NewPasswordResetRepository().MarkUsed(context.Background(), 1, time.Now()); err != nil {
			return err
		}

		return f.NewAccountRepository().UpdatePassword(context.Background(), &entity.Account{ID: 1, PasswordHash: "$2a$10$x"})
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "password_reset_tokens" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err = tm.Execute(context.Background(), func(f repository.RepositoryFactory) error {
		return f.NewPasswordResetRepository().MarkUsed(context.Background(), 1, time.Now())
	})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidResetToken))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraintHelpers(t *testing.T) {
	assert.True(t, isUniqueConstraintViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email_role" (SQLSTATE 23505)`)))
	assert.True(t, isForeignKeyConstraintViolation(errors.New("(SQLSTATE 23503)")))
	assert.True(t, isNotNullConstraintViolation(errors.New(`null value in column "email" violates not-null constraint`)))
	assert.False(t, isCheckConstraintViolation(nil))
}
