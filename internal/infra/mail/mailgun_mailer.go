// Package mail delivers password reset secrets by email.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"jobportal/config"
	"jobportal/internal/domain/service"
	"jobportal/internal/errors"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/fx"
)

var apiVersionSuffix = regexp.MustCompile(`/v[1-4]$`)

const (
	resetSubject = "Reset your Job Portal password"
	sendTimeout  = 10 * time.Second
)

type mailgunMailer struct {
	client   *mailgun.MailgunImpl
	from     string
	resetURL string
	template string
	logger   *slog.Logger
}

// Params holds dependencies for the mailer, injected by Fx.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewMailer returns a Mailgun mailer when credentials are configured and a
// logging mailer otherwise.
func NewMailer(params Params) service.Mailer {
	cfg := params.Config.Mail
	if cfg == nil || cfg.Domain == "" || cfg.APIKey == "" {
		params.Logger.Info("Mailgun not configured, reset mails are only logged")

		return &logMailer{logger: params.Logger}
	}

	return NewMailgunMailer(cfg, params.Logger)
}

// NewMailgunMailer builds a mailer bound to one Mailgun domain.
func NewMailgunMailer(cfg *config.MailConfig, logger *slog.Logger) service.Mailer {
	client := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.APIBase != "" {
		client.SetAPIBase(APIBase(cfg.APIBase))
	}

	return &mailgunMailer{
		client:   client,
		from:     cfg.From,
		resetURL: cfg.ResetURL,
		template: cfg.Template,
		logger:   logger,
	}
}

// APIBase appends the default /v3 version segment when the configured base
// carries none. mailgun-go rejects unversioned bases on every send.
func APIBase(raw string) string {
	base := strings.TrimRight(strings.TrimSpace(raw), "/")
	if apiVersionSuffix.MatchString(base) {
		return base
	}

	return base + "/v3"
}

func (m *mailgunMailer) SendPasswordReset(ctx context.Context, event *service.PasswordResetEvent) error {
	link, err := ResetLink(m.resetURL, event)
	if err != nil {
		return err
	}

	var message *mailgun.Message
	if m.template != "" {
		message = mailgun.NewMessage(m.from, resetSubject, "", event.Email)
		message.SetTemplate(m.template)
		for k, v := range map[string]any{
			"username":   event.Username,
			"reset_link": link,
			"expires_at": event.ExpiresAt.UTC().Format(time.RFC1123),
		} {
			if err := message.AddTemplateVariable(k, v); err != nil {
				return errors.Wrapf(err, "add template variable %s", k)
			}
		}
	} else {
		message = mailgun.NewMessage(m.from, resetSubject, ResetBody(event, link), event.Email)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, id, err := m.client.Send(ctx, message)
	if err != nil {
		return errors.Wrap(err, "mailgun send")
	}

	m.logger.Info("Password reset mail sent",
		slog.Int64("account_id", event.AccountID),
		slog.String("message_id", id),
	)

	return nil
}

// ResetLink appends the secret and email to the frontend reset page URL.
func ResetLink(base string, event *service.PasswordResetEvent) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrap(err, "parse reset url")
	}

	q := u.Query()
	q.Set("token", event.Secret)
	q.Set("email", event.Email)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// ResetBody renders the plain text reset mail.
func ResetBody(event *service.PasswordResetEvent, link string) string {
	name := event.Username
	if name == "" {
		name = event.Email
	}

	return fmt.Sprintf(
		"Hello %s,\n\nWe received a request to reset your password. Use the link below to choose a new one:\n\n%s\n\n"+
			"The link expires at %s. If you did not request a reset you can ignore this email.\n",
		name, link, event.ExpiresAt.UTC().Format(time.RFC1123),
	)
}

// logMailer is used when no mail provider is configured.
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) SendPasswordReset(_ context.Context, event *service.PasswordResetEvent) error {
	m.logger.Info("Password reset mail skipped, no provider configured",
		slog.Int64("account_id", event.AccountID),
	)

	return nil
}
