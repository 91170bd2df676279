package pubsub

import (
	"context"
	"log/slog"

	"jobportal/config"
	"jobportal/internal/domain/constants"
	"jobportal/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// logPublisher records that a reset secret was issued without sending it anywhere.
type logPublisher struct {
	logger *slog.Logger
}

func (p *logPublisher) PublishPasswordReset(ctx context.Context, event *service.PasswordResetEvent) error {
	p.logger.Info("[LogPublisher] Password reset secret issued, delivery disabled",
		slog.Int64("account_id", event.AccountID),
		slog.Time("expires_at", event.ExpiresAt),
	)

	return nil
}

func (p *logPublisher) Close() error {
	return nil
}

// mailPublisher sends the reset mail synchronously inside the request.
type mailPublisher struct {
	mailer service.Mailer
}

func (p *mailPublisher) PublishPasswordReset(ctx context.Context, event *service.PasswordResetEvent) error {
	return p.mailer.SendPasswordReset(ctx, event)
}

func (p *mailPublisher) Close() error {
	return nil
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
	Mailer service.Mailer `optional:"true"`
}

// NewEventPublisher picks the reset delivery channel from notification.channel.
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	logger := params.Logger

	channel := config.NotificationChannelLog
	if params.Config.Notification != nil && params.Config.Notification.Channel != "" {
		channel = params.Config.Notification.Channel
	}

	var publisher service.EventPublisher
	var err error

	switch channel {
	case config.NotificationChannelLog:
		logger.Info("Reset notifications are only logged")

		return &logPublisher{logger: logger}, nil

	case config.NotificationChannelMail:
		if params.Mailer == nil {
			return nil, errors.New("mailer is required for the mail channel")
		}
		logger.Info("Reset notifications are mailed directly")

		return &mailPublisher{mailer: params.Mailer}, nil

	case config.NotificationChannelPubSub:
		publisher, err = newPubSubPublisher(params.Ctx, params.Config.PubSub, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown notification channel: %s", channel)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing EventPublisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

func newPubSubPublisher(ctx context.Context, cfg *config.PubSubConfig, logger *slog.Logger) (service.EventPublisher, error) {
	if cfg == nil {
		return nil, errors.New("pubsub configuration is required")
	}

	switch cfg.Provider {
	case constants.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Using local HTTP publisher for Pub/Sub",
			slog.String("endpoint", cfg.LocalEndpoint),
		)

		return NewLocalHTTPPublisher(cfg.LocalEndpoint, logger), nil

	case constants.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("Using Google Pub/Sub publisher",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)

		return NewGooglePubSubPublisher(ctx, cfg.ProjectID, cfg.TopicID, logger)

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}
}
