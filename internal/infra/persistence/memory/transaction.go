package memory

import (
	"context"

	"jobportal/internal/domain/repository"
)

type transactionManager struct {
	store *Store
}

type repositoryFactory struct {
	v view
}

func (f *repositoryFactory) NewAccountRepository() repository.AccountRepository {
	return &accountRepository{v: f.v}
}

func (f *repositoryFactory) NewLoginAttemptRepository() repository.LoginAttemptRepository {
	return &loginAttemptRepository{v: f.v}
}

func (f *repositoryFactory) NewPasswordResetRepository() repository.PasswordResetRepository {
	return &passwordResetRepository{v: f.v}
}

func (f *repositoryFactory) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return &refreshTokenRepository{v: f.v}
}

// NewTransactionManager returns a TransactionManager that works on a copy of
// the store and swaps it in only when fn succeeds. Transactions are serialized
// with every other store access, so fn must only use the factory it is given.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

func (tm *transactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()

	snapshot := tm.store.state.clone()
	if err := fn(&repositoryFactory{v: &txView{state: snapshot}}); err != nil {
		return err
	}
	tm.store.state = snapshot

	return nil
}
