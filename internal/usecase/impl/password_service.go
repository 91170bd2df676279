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

// passwordService implements the PasswordUsecase interface.
type passwordService struct {
	txManager    repository.TransactionManager
	accountRepo  repository.AccountRepository
	resetRepo    repository.PasswordResetRepository
	hasher       service.PasswordHasher
	locker       service.AccountLocker
	secrets      service.SecretGenerator
	publisher    service.EventPublisher
	lockout      policy.Lockout
	tokenTTL     time.Duration
	exposeSecret bool
	now          func() time.Time
	logger       *slog.Logger
}

// PasswordServiceParams holds dependencies for PasswordService, injected by Fx.
type PasswordServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	AccountRepo repository.AccountRepository
	ResetRepo   repository.PasswordResetRepository
	Hasher      service.PasswordHasher
	Locker      service.AccountLocker
	Secrets     service.SecretGenerator
	Publisher   service.EventPublisher
	Config      *config.Config
	Logger      *slog.Logger
}

// NewPasswordService is the constructor for passwordService.
func NewPasswordService(params PasswordServiceParams) usecase.PasswordUsecase {
	srv := &passwordService{
		txManager:   params.TxManager,
		accountRepo: params.AccountRepo,
		resetRepo:   params.ResetRepo,
		hasher:      params.Hasher,
		locker:      params.Locker,
		secrets:     params.Secrets,
		publisher:   params.Publisher,
		lockout:     policy.NewLockout(0, 0),
		tokenTTL:    24 * time.Hour,
		now:         time.Now,
		logger:      params.Logger,
	}

	if params.Config != nil {
		srv.exposeSecret = !params.Config.IsProduction()
		if auth := params.Config.Auth; auth != nil {
			srv.lockout = policy.NewLockout(auth.Lockout.MaxFailedAttempts, auth.Lockout.Duration)
			if auth.Reset.TokenTTL > 0 {
				srv.tokenTTL = auth.Reset.TokenTTL
			}
		}
	}

	return srv
}

func (srv *passwordService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerFrom(ctx, srv.logger)
}

// ForgotPassword issues a reset secret when the email resolves to an account.
// The response is the same whether or not it does.
func (srv *passwordService) ForgotPassword(ctx context.Context, input *usecase.ForgotPasswordInput) (*usecase.ForgotPasswordOutput, error) {
	output := &usecase.ForgotPasswordOutput{Message: usecase.ForgotPasswordMessage}

	candidates, err := srv.accountRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		srv.log(ctx).Error("Failed to look up account for reset", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to look up account")
	}

	account := policy.ResolveAccount(candidates)
	if account == nil {
		srv.log(ctx).Info("Password reset requested for unknown identifier")

		return output, nil
	}

	secret, err := srv.secrets.NewSecret()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate reset secret")
	}

	digest, err := srv.hasher.Hash(secret)
	if err != nil {
		return nil, err
	}

	now := srv.now()
	token := &entity.PasswordResetToken{
		AccountID: account.ID,
		TokenHash: digest,
		ExpiresAt: now.Add(srv.tokenTTL),
		IPAddress: truncate(input.Client.IPAddress, constants.MaxIPAddressLength),
		UserAgent: truncate(input.Client.UserAgent, constants.MaxUserAgentLength),
		CreatedAt: now,
	}
	if err := srv.resetRepo.Create(ctx, token); err != nil {
		srv.log(ctx).Error("Failed to store reset token", slog.Int64("accountID", account.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store reset token")
	}

	event := &service.PasswordResetEvent{
		RequestID: deliverycontext.RequestIDFromContext(ctx),
		AccountID: account.ID,
		Email:     account.Email,
		Username:  account.Username,
		Secret:    secret,
		ExpiresAt: token.ExpiresAt,
	}
	if err := srv.publisher.PublishPasswordReset(ctx, event); err != nil {
		// The token stays valid; the user can ask again.
		srv.log(ctx).Warn("Failed to deliver reset notification", slog.Int64("accountID", account.ID), slog.Any("error", err))
	}

	srv.log(ctx).Info("Password reset token issued", slog.Int64("accountID", account.ID), slog.Time("expiresAt", token.ExpiresAt))

	if srv.exposeSecret {
		output.ResetToken = secret
	}

	return output, nil
}

// ResetPassword redeems a reset secret. Every failure to match is reported
// as the same invalid-token error.
func (srv *passwordService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	if err := srv.hasher.ValidatePasswordStrength(input.NewPassword); err != nil {
		return err
	}
	if input.Token == "" {
		return domainerrors.ErrInvalidResetToken
	}

	now := srv.now()
	active, err := srv.resetRepo.FindActive(ctx, now)
	if err != nil {
		return errors.Wrap(err, "failed to load reset tokens")
	}

	var match *entity.PasswordResetToken
	for _, candidate := range active {
		if srv.hasher.Check(input.Token, candidate.TokenHash) {
			match = candidate

			break
		}
	}
	if match == nil {
		srv.log(ctx).Info("Password reset rejected: no matching token")

		return domainerrors.ErrInvalidResetToken
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	unlock, err := srv.locker.Lock(ctx, match.AccountID)
	if err != nil {
		return domainerrors.ErrAccountLockUnavailable.WrapMessage(err.Error())
	}
	defer unlock()

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewPasswordResetRepository().MarkUsed(ctx, match.ID, now); err != nil {
			return err
		}

		accountRepo := repoFactory.NewAccountRepository()
		account, err := accountRepo.FindByID(ctx, match.AccountID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrAccountNotFound) {
				return domainerrors.ErrInvalidResetToken
			}

			return err
		}

		account.PasswordHash = newHash
		srv.lockout.RegisterSuccess(account, now)

		return accountRepo.UpdatePassword(ctx, account)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidResetToken) {
			return domainerrors.ErrInvalidResetToken
		}
		srv.log(ctx).Error("Failed to reset password", slog.Int64("accountID", match.AccountID), slog.Any("error", err))

		return errors.Wrap(err, "failed to reset password")
	}

	srv.log(ctx).Info("Password reset completed", slog.Int64("accountID", match.AccountID))

	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (srv *passwordService) ChangePassword(ctx context.Context, accountID int64, input *usecase.ChangePasswordInput) error {
	unlock, err := srv.locker.Lock(ctx, accountID)
	if err != nil {
		return domainerrors.ErrAccountLockUnavailable.WrapMessage(err.Error())
	}
	defer unlock()

	account, err := srv.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !srv.hasher.Check(input.CurrentPassword, account.PasswordHash) {
		srv.log(ctx).Info("Change password rejected: current password incorrect", slog.Int64("accountID", accountID))

		return domainerrors.ErrCurrentPasswordIncorrect
	}

	if err := srv.hasher.ValidatePasswordStrength(input.NewPassword); err != nil {
		return err
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	account.PasswordHash = newHash
	account.UpdatedAt = srv.now()
	if err := srv.accountRepo.UpdatePassword(ctx, account); err != nil {
		srv.log(ctx).Error("Failed to change password", slog.Int64("accountID", accountID), slog.Any("error", err))

		return errors.Wrap(err, "failed to change password")
	}

	srv.log(ctx).Info("Password changed", slog.Int64("accountID", accountID))

	return nil
}

// PurgeExpired deletes used reset tokens and tokens that expired before the cutoff.
func (srv *passwordService) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	deleted, err := srv.resetRepo.DeleteStale(ctx, before)
	if err != nil {
		srv.log(ctx).Error("Failed to purge reset tokens", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to purge reset tokens")
	}

	if deleted > 0 {
		srv.log(ctx).Info("Purged reset tokens", slog.Int64("deleted", deleted))
	}

	return deleted, nil
}
