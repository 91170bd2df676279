package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"jobportal/config"
	"jobportal/internal/domain/entity"
	"jobportal/internal/domain/repository"
	"jobportal/internal/domain/service"
	"jobportal/internal/infra/auth"
	"jobportal/internal/infra/lock"
	"jobportal/internal/infra/persistence/memory"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.PasswordResetEvent
}

func (p *recordingPublisher) PublishPasswordReset(_ context.Context, event *service.PasswordResetEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []*service.PasswordResetEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*service.PasswordResetEvent(nil), p.events...)
}

type authFixture struct {
	cfg       *config.Config
	store     *memory.Store
	accounts  repository.AccountRepository
	hasher    service.PasswordHasher
	tokens    service.TokenService
	clock     *testClock
	publisher *recordingPublisher
	auth      *authService
	passwords *passwordService
}

type fixtureOption func(cfg *config.Config)

func withProduction() fixtureOption {
	return func(cfg *config.Config) { cfg.Env.Env = config.EnvProduction }
}

func withRefreshTokens() fixtureOption {
	return func(cfg *config.Config) { cfg.Auth.RefreshToken.Enabled = true }
}

func newAuthFixture(t *testing.T, opts ...fixtureOption) *authFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.SigningKey = testSigningKey
	cfg.ApplyDefaults()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	for _, opt := range opts {
		opt(cfg)
	}

	logger := newTestLogger()
	store := memory.NewStore()
	hasher := auth.NewBcryptHasher(cfg)
	tokens, err := auth.NewJWTService(cfg, logger)
	require.NoError(t, err)

	f := &authFixture{
		cfg:       cfg,
		store:     store,
		accounts:  memory.NewAccountRepository(store),
		hasher:    hasher,
		tokens:    tokens,
		clock:     &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		publisher: &recordingPublisher{},
	}
	locker := lock.NewMemoryLocker()
	secrets := auth.NewSecretGenerator()

	f.auth = NewAuthService(AuthServiceParams{
		AccountRepo:      f.accounts,
		LoginAttemptRepo: memory.NewLoginAttemptRepository(store),
		RefreshTokenRepo: memory.NewRefreshTokenRepository(store),
		Hasher:           hasher,
		TokenService:     tokens,
		Locker:           locker,
		Secrets:          secrets,
		Config:           cfg,
		Logger:           logger,
	}).(*authService)
	f.auth.now = f.clock.Now
	f.auth.auditor.now = f.clock.Now

	f.passwords = NewPasswordService(PasswordServiceParams{
		TxManager:   memory.NewTransactionManager(store),
		AccountRepo: f.accounts,
		ResetRepo:   memory.NewPasswordResetRepository(store),
		Hasher:      hasher,
		Locker:      locker,
		Secrets:     secrets,
		Publisher:   f.publisher,
		Config:      cfg,
		Logger:      logger,
	}).(*passwordService)
	f.passwords.now = f.clock.Now

	return f
}

// seedAccount stores an account whose password is hashed unless raw is set.
func (f *authFixture) seedAccount(t *testing.T, email, role, password string, raw bool) *entity.Account {
	t.Helper()

	stored := password
	if !raw && password != "" {
		var err error
		stored, err = f.hasher.Hash(password)
		require.NoError(t, err)
	}

	account := &entity.Account{
		Username:     email,
		Email:        email,
		PasswordHash: stored,
		Role:         role,
		Status:       "Active",
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.accounts.Create(context.Background(), account))

	return account
}

func (f *authFixture) reload(t *testing.T, id int64) *entity.Account {
	t.Helper()

	account, err := f.accounts.FindByID(context.Background(), id)
	require.NoError(t, err)

	return account
}
