package pubsub

import "context"

// Publisher hands a payload to the message channel. Publish returns once the
// channel has acknowledged the hand-off, never once consumers have processed
// the message.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}
