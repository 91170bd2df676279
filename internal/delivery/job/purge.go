// Package job runs periodic maintenance inside the API process.
package job

import (
	"context"
	"log/slog"
	"time"

	"jobportal/config"
	"jobportal/internal/delivery"
	"jobportal/internal/usecase"

	"go.uber.org/fx"
)

type resetPurger struct {
	interval  time.Duration
	passwords usecase.PasswordUsecase
	logger    *slog.Logger
	now       func() time.Time
	done      chan struct{}
}

// PurgeParams holds dependencies for the reset token purger, injected by Fx.
type PurgeParams struct {
	fx.In

	Lc         fx.Lifecycle
	Config     *config.Config
	Logger     *slog.Logger
	PasswordUC usecase.PasswordUsecase
}

// NewResetPurger deletes used and expired reset tokens every
// auth.reset.purgeInterval. A zero interval disables the job.
func NewResetPurger(params PurgeParams) delivery.Delivery {
	p := newResetPurger(params.Config.Auth.Reset.PurgeInterval, params.PasswordUC, params.Logger)

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			close(p.done)

			return nil
		},
	})

	return p
}

func newResetPurger(interval time.Duration, passwords usecase.PasswordUsecase, logger *slog.Logger) *resetPurger {
	return &resetPurger{
		interval:  interval,
		passwords: passwords,
		logger:    logger,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Serve blocks until the process stops or ctx is cancelled.
func (p *resetPurger) Serve(ctx context.Context) error {
	if p.interval <= 0 {
		p.logger.Info("Reset token purge disabled")

		return nil
	}

	p.logger.Info("Starting reset token purge", slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.done:
			return nil
		case <-ticker.C:
			p.purge(ctx)
		}
	}
}

func (p *resetPurger) purge(ctx context.Context) {
	removed, err := p.passwords.PurgeExpired(ctx, p.now())
	if err != nil {
		p.logger.Warn("Reset token purge failed", slog.Any("error", err))

		return
	}
	if removed > 0 {
		p.logger.Info("Purged reset tokens", slog.Int64("removed", removed))
	}
}
