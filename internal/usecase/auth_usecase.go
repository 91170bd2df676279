// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"jobportal/internal/domain/entity"
)

// --- Input DTOs ---

// ClientInfo identifies the caller for audit records.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
	Client   ClientInfo
}

// RefreshInput exchanges a refresh secret for a new access token.
type RefreshInput struct {
	RefreshToken string
	Client       ClientInfo
}

// --- Output DTOs ---

// LoginOutput returns the signed access token after a successful login.
// RefreshToken is empty unless refresh tokens are enabled.
type LoginOutput struct {
	AccessToken  string
	TokenID      string
	ExpiresAt    time.Time
	RefreshToken string
	Account      *entity.Account
}

// AuthUsecase defines the credential login operations.
type AuthUsecase interface {
	// Login authenticates by email and password. Expected failures are
	// domain errors: ErrInvalidCredentials, ErrAccountLocked and
	// ErrPasswordResetRequired.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Refresh issues a new access token for a valid refresh secret. It fails
	// with ErrRefreshTokenInvalid when refresh tokens are disabled.
	Refresh(ctx context.Context, input *RefreshInput) (*LoginOutput, error)
}
