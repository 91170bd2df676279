package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"jobportal/config"
	deliverycontext "jobportal/internal/delivery/context"
	"jobportal/internal/domain/service"
	"jobportal/internal/infra/pubsub"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// TokenValidator checks the OIDC token attached to a push request.
type TokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler turns password reset events pushed by Pub/Sub into emails.
type PushHandler struct {
	verifyPushAuth bool
	audience       string
	validate       TokenValidator
	logger         *slog.Logger
	mailer         service.Mailer
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Mailer service.Mailer
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	h := &PushHandler{
		validate: idtoken.Validate,
		logger:   params.Logger,
		mailer:   params.Mailer,
	}
	if w := params.Config.Worker; w != nil {
		h.verifyPushAuth = w.VerifyPushToken
		h.audience = w.PushAudience
	}

	return h
}

// WithTokenValidator replaces the Google ID token validator.
func (h *PushHandler) WithTokenValidator(v TokenValidator) *PushHandler {
	h.validate = v

	return h
}

// HandlePush handles incoming Pub/Sub push messages.
//
// Any 2xx acknowledges the message. Payloads that can never be processed are
// acknowledged with 204 so Pub/Sub stops redelivering them, while mail
// failures return 503 to trigger a retry.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg pubsub.PushEnvelope
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	event, err := pubsub.DecodePasswordReset(&pushMsg)
	if errors.Is(err, pubsub.ErrUnsupportedEvent) {
		h.logger.Info("[Worker] Ignoring unsupported event", slog.Any("reason", err))

		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		h.logger.Error("[Worker] Dropping malformed password reset event",
			slog.String("message_id", pushMsg.Message.MessageID),
			slog.Any("error", err),
		)

		return c.NoContent(http.StatusNoContent)
	}

	// Priority: message attributes > event field > existing context
	requestID := h.extractRequestID(ctx, &pushMsg, event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	if err := h.mailer.SendPasswordReset(ctx, event); err != nil {
		reqLogger.Error("[Worker] Failed to send password reset mail",
			slog.Int64("account_id", event.AccountID),
			slog.Any("error", err),
		)

		return c.NoContent(http.StatusServiceUnavailable)
	}

	reqLogger.Info("[Worker] Password reset mail delivered",
		slog.Int64("account_id", event.AccountID),
		slog.String("message_id", pushMsg.Message.MessageID),
	)

	return c.NoContent(http.StatusNoContent)
}

// extractRequestID extracts request_id from message attributes, event, or generates a new one
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *pubsub.PushEnvelope, event *service.PasswordResetEvent) string {
	if requestID := deliverycontext.SanitizeRequestID(pushMsg.Message.Attributes["request_id"]); requestID != "" {
		return requestID
	}

	if requestID := deliverycontext.SanitizeRequestID(event.RequestID); requestID != "" {
		return requestID
	}

	if requestID := deliverycontext.RequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	audience := h.audience
	if audience == "" {
		scheme := "https"
		if req.TLS == nil {
			scheme = "http" // For local development
		}
		audience = fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)
	}

	payload, err := h.validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
