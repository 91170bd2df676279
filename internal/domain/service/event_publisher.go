package service

import (
	"context"
	"time"
)

// PasswordResetEvent carries a freshly issued reset secret to the delivery channel.
type PasswordResetEvent struct {
	RequestID string    `json:"request_id,omitempty"` // For distributed tracing
	AccountID int64     `json:"account_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	Secret    string    `json:"secret"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EventPublisher hands reset events to an out-of-band delivery mechanism.
type EventPublisher interface {
	PublishPasswordReset(ctx context.Context, event *PasswordResetEvent) error

	// Close releases any resources held by the publisher
	Close() error
}

// Mailer delivers reset secrets by email.
type Mailer interface {
	SendPasswordReset(ctx context.Context, event *PasswordResetEvent) error
}
