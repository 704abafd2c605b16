package pubsub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
)

var _ Publisher = (*KafkaPublisher)(nil)

// KafkaPublisher publishes payloads to Kafka topics, one lazily created
// writer per topic.
type KafkaPublisher struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaPublisher wires a publisher against the given brokers.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{brokers: brokers, writers: map[string]*kafka.Writer{}}
}

func (p *KafkaPublisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
	p.writers[topic] = w
	return w
}

// Publish writes one message and waits for broker acknowledgment.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	msg := kafka.Message{Value: payload}
	if key != "" {
		msg.Key = []byte(key)
	}
	return p.writer(topic).WriteMessages(ctx, msg)
}

// Close flushes and closes all topic writers.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var closeErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil {
			closeErr = err
		}
	}
	p.writers = map[string]*kafka.Writer{}
	return closeErr
}

// HandlerFunc processes one raw event payload pulled from the channel.
type HandlerFunc func(ctx context.Context, payload []byte) error

// NewReader builds a consumer-group reader for one topic.
func NewReader(brokers []string, groupID, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
}

// RunReader pulls messages and feeds them to handle until ctx is cancelled.
// Offsets are committed when the handler succeeds or fails permanently;
// transient failures retry the same message with backoff so the channel's
// at-least-once contract holds.
func RunReader(ctx context.Context, reader *kafka.Reader, handle HandlerFunc, logger *slog.Logger) error {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		for {
			err = handle(ctx, msg.Value)
			if err == nil || apperrors.Permanent(err) {
				break
			}
			logger.Warn("transient handler failure, retrying message",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(2 * time.Second):
			}
		}
		if err != nil {
			logger.Error("message dropped after permanent failure",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()))
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
