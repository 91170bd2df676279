// Package handler contains the HTTP handlers for the authentication API.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"jobportal/internal/delivery/api/response"
	deliverycontext "jobportal/internal/delivery/context"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	passwordResetMessage   = "Password has been reset successfully"
	passwordChangedMessage = "Password changed successfully"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                 int64  `json:"id"`
	Username           string `json:"username"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	Status             string `json:"status,omitempty"`
	VerificationStatus string `json:"verificationStatus,omitempty"`
	PhoneNumber        string `json:"phoneNumber,omitempty"`
}

// LoginResponse is returned by login and refresh.
type LoginResponse struct {
	Token        string        `json:"token"`
	ExpiresAt    time.Time     `json:"expiresAt"`
	Role         string        `json:"role"`
	UserID       int64         `json:"userId"`
	Email        string        `json:"email"`
	User         *UserResponse `json:"user"`
	RefreshToken string        `json:"refreshToken,omitempty"`
}

// ForgotPasswordResponse carries the generic message. ResetToken is only
// present outside production.
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	authUC     usecase.AuthUsecase
	passwordUC usecase.PasswordUsecase
	logger     *slog.Logger
}

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC     usecase.AuthUsecase
	PasswordUC usecase.PasswordUsecase
	Logger     *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC:     params.AuthUC,
		passwordUC: params.PasswordUC,
		logger:     params.Logger,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toLoginResponse(output))
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.authUC.Refresh(c.Request().Context(), &usecase.RefreshInput{
		RefreshToken: req.RefreshToken,
		Client:       clientInfo(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toLoginResponse(output))
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.passwordUC.ForgotPassword(c.Request().Context(), &usecase.ForgotPasswordInput{
		Email:  req.Email,
		Client: clientInfo(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, ForgotPasswordResponse{
		Message:    output.Message,
		ResetToken: output.ResetToken,
	})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.passwordUC.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, passwordResetMessage)
}

// ChangePassword handles POST /auth/change-password. It requires Authenticate.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	claims := deliverycontext.Claims(c)
	if claims == nil {
		return domainerrors.ErrUnauthorized
	}

	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	err := h.passwordUC.ChangePassword(c.Request().Context(), claims.UserID, &usecase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, passwordChangedMessage)
}

// Me handles GET /auth/me. It requires Authenticate.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := deliverycontext.Claims(c)
	if claims == nil {
		return domainerrors.ErrUnauthorized
	}

	me := MeResponse{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		me.ExpiresAt = claims.ExpiresAt.Time
	}

	return response.Success(c, http.StatusOK, me)
}

// HealthCheck handles GET /healthz.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("request body is not valid JSON")
	}

	return c.Validate(req)
}

func clientInfo(c echo.Context) usecase.ClientInfo {
	return usecase.ClientInfo{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func toLoginResponse(output *usecase.LoginOutput) *LoginResponse {
	account := output.Account
	role := account.TokenRole()

	return &LoginResponse{
		Token:     output.AccessToken,
		ExpiresAt: output.ExpiresAt,
		Role:      role,
		UserID:    account.ID,
		Email:     account.Email,
		User: &UserResponse{
			ID:                 account.ID,
			Username:           account.Username,
			Email:              account.Email,
			Role:               role,
			Status:             account.Status,
			VerificationStatus: account.VerificationStatus,
			PhoneNumber:        account.PhoneNumber,
		},
		RefreshToken: output.RefreshToken,
	}
}
