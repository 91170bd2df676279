package lock

import (
	"context"
	"log/slog"

	"jobportal/config"
	"jobportal/internal/domain/lifecycle"
	"jobportal/internal/domain/service"
	"jobportal/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Params holds dependencies for the account locker, injected by Fx.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewAccountLocker selects the locker named by auth.lockout.locker.
func NewAccountLocker(params Params) (service.AccountLocker, error) {
	lockout := params.Config.Auth.Lockout

	switch lockout.Locker {
	case "", config.LockerMemory:
		params.Logger.Info("Using in-process account locker")

		return NewMemoryLocker(), nil

	case config.LockerRedis:
		client := NewRedisClient(params.Config.Redis)
		params.Lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				pingCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
				defer cancel()

				return errors.Wrap(client.Ping(pingCtx).Err(), "ping redis")
			},
			OnStop: func(context.Context) error {
				return errors.WithStack(client.Close())
			},
		})
		params.Logger.Info("Using Redis account locker", slog.String("addr", params.Config.Redis.Addr))

		return NewRedisLocker(client, lockout.LockTTL, params.Logger), nil

	default:
		return nil, errors.Errorf("unknown account locker: %s", lockout.Locker)
	}
}

// NewRedisClient builds a client from configuration without connecting.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
