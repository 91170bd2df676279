package lock

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"jobportal/internal/domain/service"
	"jobportal/internal/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix     = "jobportal:login-lock:"
	redisRetryInterval = 20 * time.Millisecond
	redisReleaseWait   = 2 * time.Second
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisLocker returns an AccountLocker backed by SET NX PX leases. The
// lease expires after ttl so a crashed holder cannot block an account forever.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) service.AccountLocker {
	return &redisLocker{client: client, ttl: ttl, logger: logger}
}

func (l *redisLocker) Lock(ctx context.Context, accountID int64) (func(), error) {
	key := redisKeyPrefix + strconv.FormatInt(accountID, 10)
	token := uuid.NewString()

	ticker := time.NewTicker(redisRetryInterval)
	defer ticker.Stop()

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrap(err, "acquire account lock")
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "wait for account lock")
		case <-ticker.C:
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), redisReleaseWait)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release account lock",
				slog.Int64("account_id", accountID),
				slog.Any("error", err),
			)
		}
	}, nil
}
