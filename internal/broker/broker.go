// Package broker is the messaging glue: point-to-point and publish/subscribe
// delivery over Kafka topics. Queue semantics come from all consumers sharing
// one group; pub/sub from each durable subscriber using its own group.
// Delivery is at-least-once: a message is committed only after the consumer
// reports it handled.
package broker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/segmentio/kafka-go"
)

// Message is one delivered record plus the commit handle for it.
type Message struct {
	Key   []byte
	Value []byte

	km kafka.Message
}

// Publisher delivers messages to one named channel.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Subscriber streams messages from one channel for one durable group.
type Subscriber interface {
	Fetch(ctx context.Context) (Message, error)
	Commit(ctx context.Context, m Message) error
}

// messageWriter abstracts kafka.Writer for testability.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publishes to a single topic with full acks; writes are
// synchronous so a broker outage surfaces as an error on the failed publish
// instead of buffering in memory.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher for topic. bootstrap can be a
// comma-separated list of host:port.
func NewKafkaPublisher(bootstrap string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(splitBrokers(bootstrap)...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}}
}

// NewKafkaPublisherWith is only for tests to inject a fake writer.
func NewKafkaPublisherWith(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key, value []byte) error {
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if c, ok := p.writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// KafkaSubscriber consumes a topic as one member of a durable group.
type KafkaSubscriber struct {
	reader *kafka.Reader
}

func NewKafkaSubscriber(bootstrap string, topic string, group string) *KafkaSubscriber {
	return &KafkaSubscriber{reader: kafka.NewReader(kafka.ReaderConfig{
		Brokers:  splitBrokers(bootstrap),
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})}
}

// Fetch blocks until a message is available or ctx is done. The message is
// not committed until Commit is called with it.
func (s *KafkaSubscriber) Fetch(ctx context.Context) (Message, error) {
	m, err := s.reader.FetchMessage(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("fetch: %w", err)
	}
	return Message{Key: m.Key, Value: m.Value, km: m}, nil
}

func (s *KafkaSubscriber) Commit(ctx context.Context, m Message) error {
	if err := s.reader.CommitMessages(ctx, m.km); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *KafkaSubscriber) Close() error { return s.reader.Close() }

// MultiPublisher fans one publish out to several publishers in order.
type MultiPublisher struct {
	pubs []Publisher
}

func NewMultiPublisher(pubs ...Publisher) *MultiPublisher {
	return &MultiPublisher{pubs: pubs}
}

func (m *MultiPublisher) Publish(ctx context.Context, key, value []byte) error {
	for _, p := range m.pubs {
		if err := p.Publish(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func splitBrokers(bootstrap string) []string {
	var brokers []string
	for _, a := range strings.Split(bootstrap, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			brokers = append(brokers, a)
		}
	}
	return brokers
}
