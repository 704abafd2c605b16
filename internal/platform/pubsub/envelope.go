// Package pubsub provides the message-channel plumbing: the push-delivery
// envelope codec, the publisher port, and Kafka plus in-memory adapters.
package pubsub

import (
	"encoding/json"
	"errors"
)

var (
	// ErrBadEnvelope marks a push body that is not a valid channel envelope.
	ErrBadEnvelope = errors.New("invalid push message envelope")
	// ErrEmptyEnvelope marks a push body with no message at all.
	ErrEmptyEnvelope = errors.New("no push message received")
)

// PushMessage is the inner message of a push delivery. Data is the raw event
// payload; encoding/json carries []byte as base64 on the wire, matching the
// channel's push contract.
type PushMessage struct {
	Data       []byte            `json:"data"`
	MessageID  string            `json:"messageId,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// PushEnvelope wraps a message pushed over HTTP by the channel.
type PushEnvelope struct {
	Message      *PushMessage `json:"message"`
	Subscription string       `json:"subscription,omitempty"`
}

// DecodePush unwraps a push envelope body and returns the decoded payload
// bytes. Missing message or data fields yield ErrBadEnvelope; an empty body
// yields ErrEmptyEnvelope.
func DecodePush(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return nil, ErrEmptyEnvelope
	}
	var envelope PushEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, ErrBadEnvelope
	}
	if envelope.Message == nil {
		return nil, ErrEmptyEnvelope
	}
	if len(envelope.Message.Data) == 0 {
		return nil, ErrBadEnvelope
	}
	return envelope.Message.Data, nil
}

// EncodePush wraps a payload in a push envelope, mirroring what the channel
// does on delivery. Used by tests and the memory channel.
func EncodePush(payload []byte, messageID string) ([]byte, error) {
	return json.Marshal(PushEnvelope{Message: &PushMessage{Data: payload, MessageID: messageID}})
}
