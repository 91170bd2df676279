package middleware

import (
	"log/slog"
	"net/http"

	"jobportal/config"
	"jobportal/internal/delivery/api/response"
	deliverycontext "jobportal/internal/delivery/context"
	domainerrors "jobportal/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger      *slog.Logger
	showDetails bool
}

// NewErrorMiddleware creates a new error handling middleware. Internal error
// details are only written to responses outside production.
func NewErrorMiddleware(logger *slog.Logger, cfg *config.Config) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger:      logger,
		showDetails: cfg != nil && !cfg.IsProduction(),
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := deliverycontext.LoggerFrom(c.Request().Context(), m.logger)

	// Attempt to parse as AppError
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		info := &response.ErrorInfo{
			Code:                  appErr.ErrorCode(),
			Message:               appErr.Message(),
			RequiresPasswordReset: errors.Is(err, domainerrors.ErrPasswordResetRequired),
		}

		status := appErr.HTTPCode()
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Request failed",
				slog.String("code", appErr.ErrorCode()),
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
			)
			if m.showDetails {
				info.Details = err.Error()
			}
		case status != http.StatusUnauthorized && status != http.StatusForbidden && appErr.Details() != "":
			info.Details = appErr.Details()
		}

		_ = response.ErrorWithInfo(c, status, info)

		return
	}

	// Check if it is an Echo HTTPError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}

		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, nil)

		return
	}

	// Default to internal error, log the error but return a generic message
	logger.Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	info := &response.ErrorInfo{
		Code:    domainerrors.ErrInternalError.ErrorCode(),
		Message: domainerrors.ErrInternalError.Message(),
	}
	if m.showDetails {
		info.Details = err.Error()
	}
	_ = response.ErrorWithInfo(c, http.StatusInternalServerError, info)
}
