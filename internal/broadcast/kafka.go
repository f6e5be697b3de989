// Package broadcast pushes live-location updates to downstream
// consumers. Delivery is best-effort: ingestion never fails because a
// broadcast did.
package broadcast

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

// Publisher is the notification sink consumed by the ingestion
// pipeline. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, payload []byte) error
	Close() error
}

// KafkaPublisher lazily manages one writer per topic.
type KafkaPublisher struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaPublisher creates a KafkaPublisher for the given brokers.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// Publish writes one message to the topic, creating a writer if necessary.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, key, payload []byte) error {
	writer := p.writerForTopic(topic)
	return writer.WriteMessages(ctx, kafka.Message{Key: key, Value: payload})
}

func (p *KafkaPublisher) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	p.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}

// NopPublisher discards every message. Used when no brokers are
// configured, e.g. in development.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte, []byte) error { return nil }
func (NopPublisher) Close() error                                          { return nil }
