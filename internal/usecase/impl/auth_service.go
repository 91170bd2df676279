// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"jobportal/config"
	deliverycontext "jobportal/internal/delivery/context"
	"jobportal/internal/domain/constants"
	"jobportal/internal/domain/entity"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/policy"
	"jobportal/internal/domain/repository"
	"jobportal/internal/domain/service"
	"jobportal/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	accountRepo    repository.AccountRepository
	refreshRepo    repository.RefreshTokenRepository
	auditor        *loginAuditor
	hasher         service.PasswordHasher
	tokenService   service.TokenService
	locker         service.AccountLocker
	secrets        service.SecretGenerator
	lockout        policy.Lockout
	refreshEnabled bool
	refreshTTL     time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	AccountRepo      repository.AccountRepository
	LoginAttemptRepo repository.LoginAttemptRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Locker           service.AccountLocker
	Secrets          service.SecretGenerator
	Config           *config.Config
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	srv := &authService{
		accountRepo:  params.AccountRepo,
		refreshRepo:  params.RefreshTokenRepo,
		auditor:      newLoginAuditor(params.LoginAttemptRepo, params.Logger),
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		locker:       params.Locker,
		secrets:      params.Secrets,
		lockout:      policy.NewLockout(0, 0),
		now:          time.Now,
		logger:       params.Logger,
	}

	if params.Config != nil && params.Config.Auth != nil {
		auth := params.Config.Auth
		srv.lockout = policy.NewLockout(auth.Lockout.MaxFailedAttempts, auth.Lockout.Duration)
		srv.refreshEnabled = auth.RefreshToken.Enabled
		srv.refreshTTL = auth.RefreshToken.TTL
	}
	if srv.refreshTTL <= 0 {
		srv.refreshTTL = 7 * 24 * time.Hour
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerFrom(ctx, srv.logger)
}

// Login authenticates by email and password. The account is resolved across
// roles, then re-read and evaluated while holding its lock so concurrent
// failures cannot lose counter updates.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	candidates, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		srv.log(ctx).Error("Failed to look up account", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to look up account")
	}

	resolved := policy.ResolveAccount(candidates)
	if resolved == nil {
		srv.hasher.CompareDummy(input.Password)
		srv.log(ctx).Info("Login failed: no account for identifier")
		srv.auditor.Record(ctx, nil, input.Email, entity.AttemptUnknownAccount, input.Client)

		return nil, domainerrors.ErrInvalidCredentials
	}

	unlock, err := srv.locker.Lock(ctx, resolved.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to acquire account lock", slog.Int64("accountID", resolved.ID), slog.Any("error", err))

		return nil, domainerrors.ErrAccountLockUnavailable.WrapMessage(err.Error())
	}
	defer unlock()

	account, err := srv.accountRepo.FindByID(ctx, resolved.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload account")
	}

	now := srv.now()
	accountID := account.ID

	if srv.lockout.IsLocked(account, now) {
		srv.log(ctx).Info("Login rejected: account locked", slog.Int64("accountID", accountID))
		srv.auditor.Record(ctx, &accountID, input.Email, entity.AttemptAccountLocked, input.Client)

		return nil, domainerrors.NewAccountLockedError(srv.lockout.RemainingMinutes(account, now))
	}

	if !account.HasPassword() {
		srv.hasher.CompareDummy(input.Password)
		srv.log(ctx).Info("Login failed: no password set", slog.Int64("accountID", accountID))
		srv.auditor.Record(ctx, &accountID, input.Email, entity.AttemptInvalidPassword, input.Client)

		return nil, domainerrors.ErrInvalidCredentials
	}

	if !srv.hasher.IsDigest(account.PasswordHash) {
		srv.log(ctx).Warn("Login rejected: stored password is not hashed", slog.Int64("accountID", accountID))
		srv.auditor.Record(ctx, &accountID, input.Email, entity.AttemptLegacyPassword, input.Client)

		return nil, domainerrors.ErrPasswordResetRequired
	}

	if !srv.hasher.Check(input.Password, account.PasswordHash) {
		return nil, srv.handleFailedPassword(ctx, account, input, now)
	}

	if srv.lockout.NeedsReset(account) {
		srv.lockout.RegisterSuccess(account, now)
		if err := srv.accountRepo.UpdateSecurityState(ctx, account); err != nil {
			srv.log(ctx).Error("Failed to clear lockout state", slog.Int64("accountID", accountID), slog.Any("error", err))

			return nil, errors.Wrap(err, "failed to clear lockout state")
		}
	}

	srv.auditor.Record(ctx, &accountID, input.Email, entity.AttemptSucceeded, input.Client)

	output, err := srv.issue(account)
	if err != nil {
		return nil, err
	}

	if srv.refreshEnabled {
		secret, err := srv.createRefreshToken(ctx, account, input.Client, now)
		if err != nil {
			srv.log(ctx).Error("Failed to create refresh token", slog.Int64("accountID", accountID), slog.Any("error", err))

			return nil, err
		}
		output.RefreshToken = secret
	}

	srv.log(ctx).Info("Login succeeded", slog.Int64("accountID", accountID), slog.String("role", account.TokenRole()))

	return output, nil
}

// handleFailedPassword advances the lockout state machine. A failed write
// still rejects the login.
func (srv *authService) handleFailedPassword(ctx context.Context, account *entity.Account, input *usecase.LoginInput, now time.Time) error {
	accountID := account.ID
	locked := srv.lockout.RegisterFailure(account, now)

	if err := srv.accountRepo.UpdateSecurityState(ctx, account); err != nil {
		srv.log(ctx).Error("Failed to persist lockout state", slog.Int64("accountID", accountID), slog.Any("error", err))
		srv.auditor.Record(ctx, &accountID, input.Email, entity.AttemptInvalidPassword, input.Client)

		return errors.Wrap(err, "failed to persist lockout state")
	}

	srv.auditor.Record(ctx, &accountID, input.Email, entity.AttemptInvalidPassword, input.Client)

	if locked {
		srv.log(ctx).Warn("Account locked after repeated failures",
			slog.Int64("accountID", accountID),
			slog.Time("lockoutEnd", *account.LockoutEnd),
		)
	} else {
		srv.log(ctx).Info("Login failed: invalid password",
			slog.Int64("accountID", accountID),
			slog.Int("failedAttempts", account.FailedLoginAttempts),
		)
	}

	return domainerrors.ErrInvalidCredentials
}

// Refresh exchanges a refresh secret for a new access token. The secret is
// not rotated.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.LoginOutput, error) {
	if !srv.refreshEnabled || input.RefreshToken == "" {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	stored, err := srv.refreshRepo.FindByHash(ctx, srv.secrets.Fingerprint(input.RefreshToken))
	if err != nil {
		if errors.Is(err, domainerrors.ErrRefreshTokenInvalid) {
			return nil, domainerrors.ErrRefreshTokenInvalid
		}

		return nil, errors.Wrap(err, "failed to find refresh token")
	}

	now := srv.now()
	if stored.IsExpired(now) {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	account, err := srv.accountRepo.FindByID(ctx, stored.AccountID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountNotFound) {
			return nil, domainerrors.ErrRefreshTokenInvalid
		}

		return nil, errors.Wrap(err, "failed to load account")
	}

	if srv.lockout.IsLocked(account, now) {
		return nil, domainerrors.NewAccountLockedError(srv.lockout.RemainingMinutes(account, now))
	}

	output, err := srv.issue(account)
	if err != nil {
		return nil, err
	}
	output.RefreshToken = input.RefreshToken

	srv.log(ctx).Debug("Access token refreshed", slog.Int64("accountID", account.ID))

	return output, nil
}

func (srv *authService) issue(account *entity.Account) (*usecase.LoginOutput, error) {
	issued, err := srv.tokenService.Issue(account)
	if err != nil {
		srv.logger.Error("Failed to issue access token", slog.Int64("accountID", account.ID), slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage(err.Error())
	}

	public := *account
	public.PasswordHash = ""

	return &usecase.LoginOutput{
		AccessToken: issued.Token,
		TokenID:     issued.TokenID,
		ExpiresAt:   issued.ExpiresAt,
		Account:     &public,
	}, nil
}

func (srv *authService) createRefreshToken(ctx context.Context, account *entity.Account, client usecase.ClientInfo, now time.Time) (string, error) {
	secret, err := srv.secrets.NewSecret()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate refresh token")
	}

	token := &entity.RefreshToken{
		AccountID: account.ID,
		TokenHash: srv.secrets.Fingerprint(secret),
		ExpiresAt: now.Add(srv.refreshTTL),
		IPAddress: truncate(client.IPAddress, constants.MaxIPAddressLength),
		UserAgent: truncate(client.UserAgent, constants.MaxUserAgentLength),
		CreatedAt: now,
	}
	if err := srv.refreshRepo.Create(ctx, token); err != nil {
		return "", errors.Wrap(err, "failed to store refresh token")
	}

	return secret, nil
}
