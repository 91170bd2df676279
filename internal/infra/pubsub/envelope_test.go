package pubsub

import (
	"encoding/base64"
	"testing"
	"time"

	"jobportal/internal/domain/service"
	"jobportal/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeFor(t *testing.T, event *service.PasswordResetEvent) *PushEnvelope {
	t.Helper()

	data, attributes, err := encodeEvent(event)
	require.NoError(t, err)

	var envelope PushEnvelope
	envelope.Message.Data = base64.StdEncoding.EncodeToString(data)
	envelope.Message.Attributes = attributes

	return &envelope
}

func TestEncodeEvent_Attributes(t *testing.T) {
	_, attributes, err := encodeEvent(&service.PasswordResetEvent{Email: "a@b.c", Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"event_type": EventTypePasswordReset}, attributes)

	_, attributes, err = encodeEvent(&service.PasswordResetEvent{RequestID: "r-1"})
	require.NoError(t, err)
	assert.Equal(t, "r-1", attributes["request_id"])
}

func TestDecodePasswordReset(t *testing.T) {
	event := &service.PasswordResetEvent{
		AccountID: 3,
		Email:     "jane@example.com",
		Secret:    "s3cret",
		ExpiresAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("round trip", func(t *testing.T) {
		got, err := DecodePasswordReset(envelopeFor(t, event))
		require.NoError(t, err)
		assert.Equal(t, event, got)
	})

	t.Run("missing event type is accepted", func(t *testing.T) {
		envelope := envelopeFor(t, event)
		envelope.Message.Attributes = nil

		_, err := DecodePasswordReset(envelope)
		assert.NoError(t, err)
	})

	t.Run("other event type", func(t *testing.T) {
		envelope := envelopeFor(t, event)
		envelope.Message.Attributes["event_type"] = "account_created"

		_, err := DecodePasswordReset(envelope)
		assert.True(t, errors.Is(err, ErrUnsupportedEvent))
	})

	t.Run("bad base64", func(t *testing.T) {
		envelope := envelopeFor(t, event)
		envelope.Message.Data = "%%%"

		_, err := DecodePasswordReset(envelope)
		assert.True(t, errors.Is(err, ErrMalformedEvent))
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := DecodePasswordReset(envelopeFor(t, &service.PasswordResetEvent{Email: "jane@example.com"}))
		assert.True(t, errors.Is(err, ErrMalformedEvent))
	})
}
