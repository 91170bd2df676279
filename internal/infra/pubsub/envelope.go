package pubsub

import (
	"encoding/base64"
	"encoding/json"

	"jobportal/internal/domain/service"
	"jobportal/internal/errors"
)

// EventTypePasswordReset tags reset messages on the topic.
const EventTypePasswordReset = "password_reset_requested"

var (
	// ErrUnsupportedEvent marks messages of another event type on a shared topic.
	ErrUnsupportedEvent = errors.New("unsupported event type")
	// ErrMalformedEvent marks payloads that can never be processed.
	ErrMalformedEvent = errors.New("malformed password reset event")
)

// PushEnvelope is the body Pub/Sub posts to push subscriptions. The local
// publisher produces the same shape.
type PushEnvelope struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// encodeEvent returns the message data and attributes shared by both transports.
func encodeEvent(event *service.PasswordResetEvent) ([]byte, map[string]string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	attributes := map[string]string{
		"event_type": EventTypePasswordReset,
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return data, attributes, nil
}

// DecodePasswordReset extracts the reset event from a push envelope. A
// missing event_type attribute is accepted.
func DecodePasswordReset(envelope *PushEnvelope) (*service.PasswordResetEvent, error) {
	if eventType := envelope.Message.Attributes["event_type"]; eventType != "" && eventType != EventTypePasswordReset {
		return nil, errors.Wrap(ErrUnsupportedEvent, eventType)
	}

	data, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedEvent, err.Error())
	}

	var event service.PasswordResetEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, errors.Wrap(ErrMalformedEvent, err.Error())
	}
	if event.Email == "" || event.Secret == "" {
		return nil, errors.Wrap(ErrMalformedEvent, "email and secret are required")
	}

	return &event, nil
}
