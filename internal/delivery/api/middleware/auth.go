package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "jobportal/internal/delivery/context"
	domainerrors "jobportal/internal/domain/errors"
	"jobportal/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware authenticates requests carrying a Bearer access token.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, logger: logger}
}

// Authenticate validates the access token and stores its claims on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return domainerrors.ErrUnauthorized
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			return domainerrors.ErrUnauthorized.WithDetails("authorization header must use the Bearer scheme")
		}

		claims, err := m.tokenSvc.Validate(strings.TrimSpace(tokenString))
		if err != nil {
			deliverycontext.LoggerFrom(c.Request().Context(), m.logger).
				Debug("Rejected access token", slog.Any("error", err))

			return domainerrors.ErrTokenInvalid
		}

		deliverycontext.SetClaims(c, claims)

		return next(c)
	}
}
