package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "jobportal/internal/delivery/context"
	"jobportal/internal/domain/constants"
	"jobportal/internal/domain/entity"
	"jobportal/internal/domain/repository"
	"jobportal/internal/usecase"
)

// loginAuditor appends one LoginAttempt per login call. Write failures are
// logged and never change the authentication result.
type loginAuditor struct {
	repo   repository.LoginAttemptRepository
	logger *slog.Logger
	now    func() time.Time
}

func newLoginAuditor(repo repository.LoginAttemptRepository, logger *slog.Logger) *loginAuditor {
	return &loginAuditor{repo: repo, logger: logger, now: time.Now}
}

// Record stores the attempt. accountID is nil when the identifier did not
// resolve to an account.
func (a *loginAuditor) Record(
	ctx context.Context,
	accountID *int64,
	identifier string,
	outcome entity.AttemptOutcome,
	client usecase.ClientInfo,
) {
	attempt := &entity.LoginAttempt{
		AccountID:  accountID,
		Identifier: identifier,
		Success:    outcome == entity.AttemptSucceeded,
		Outcome:    outcome,
		IPAddress:  truncate(client.IPAddress, constants.MaxIPAddressLength),
		UserAgent:  truncate(client.UserAgent, constants.MaxUserAgentLength),
		CreatedAt:  a.now(),
	}

	if err := a.repo.Create(ctx, attempt); err != nil {
		deliverycontext.LoggerFrom(ctx, a.logger).Warn("Failed to record login attempt",
			slog.String("outcome", string(outcome)),
			slog.Any("error", err),
		)
	}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}

	// Cut on a rune boundary so the column never receives invalid UTF-8.
	cut := value[:limit]
	for len(cut) > 0 && !isRuneStart(value[len(cut)]) {
		cut = cut[:len(cut)-1]
	}

	return cut
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
