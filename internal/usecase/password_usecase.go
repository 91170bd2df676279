package usecase

import (
	"context"
	"time"
)

// ForgotPasswordMessage is returned for every forgot-password request.
const ForgotPasswordMessage = "If the email exists, a password reset link has been sent."

// ForgotPasswordInput starts a reset for the account behind Email.
type ForgotPasswordInput struct {
	Email  string
	Client ClientInfo
}

// ForgotPasswordOutput carries the generic message. ResetToken is only set
// outside production and only when an account was found.
type ForgotPasswordOutput struct {
	Message    string
	ResetToken string
}

// ResetPasswordInput redeems a reset secret.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ChangePasswordInput replaces the password of an authenticated account.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// PasswordUsecase defines the password reset and change operations.
type PasswordUsecase interface {
	ForgotPassword(ctx context.Context, input *ForgotPasswordInput) (*ForgotPasswordOutput, error)
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
	ChangePassword(ctx context.Context, accountID int64, input *ChangePasswordInput) error

	// PurgeExpired removes used reset tokens and those that expired before the cutoff.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
