// Package persistence selects the credential store backend.
package persistence

import (
	"log/slog"

	"jobportal/config"
	"jobportal/internal/domain/repository"
	"jobportal/internal/errors"
	"jobportal/internal/infra/persistence/memory"
	"jobportal/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params holds dependencies for the repositories, injected by Fx.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// Repositories exposes every repository of the selected backend to Fx.
type Repositories struct {
	fx.Out

	TxManager     repository.TransactionManager
	Accounts      repository.AccountRepository
	LoginAttempts repository.LoginAttemptRepository
	Resets        repository.PasswordResetRepository
	RefreshTokens repository.RefreshTokenRepository
}

// NewRepositories builds the repositories named by storage.driver.
func NewRepositories(params Params) (Repositories, error) {
	switch params.Config.Storage.Driver {
	case config.StorageDriverMemory:
		params.Logger.Warn("Using in-memory credential store, data is lost on restart")
		store := memory.NewStore()

		return Repositories{
			TxManager:     memory.NewTransactionManager(store),
			Accounts:      memory.NewAccountRepository(store),
			LoginAttempts: memory.NewLoginAttemptRepository(store),
			Resets:        memory.NewPasswordResetRepository(store),
			RefreshTokens: memory.NewRefreshTokenRepository(store),
		}, nil

	case "", config.StorageDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Repositories{}, err
		}

		return Repositories{
			TxManager:     postgres.NewTransactionManager(db),
			Accounts:      postgres.NewAccountRepository(db),
			LoginAttempts: postgres.NewLoginAttemptRepository(db),
			Resets:        postgres.NewPasswordResetRepository(db),
			RefreshTokens: postgres.NewRefreshTokenRepository(db),
		}, nil

	default:
		return Repositories{}, errors.Errorf("unknown storage driver: %s", params.Config.Storage.Driver)
	}
}
