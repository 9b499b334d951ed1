package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shashiranjanraj/planty/pkg/logger"
)

// AMQPSink publishes events as persistent JSON messages to a durable
// RabbitMQ queue through the default exchange. The connection is opened
// lazily and re-dialled after a failure.
type AMQPSink struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQP(url, queue string) *AMQPSink {
	return &AMQPSink{url: url, queue: queue}
}

func (s *AMQPSink) Publish(ctx context.Context, event string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", s.queue, false, false, pub); err != nil {
		s.reset()
		return fmt.Errorf("queue/amqp: publish %s: %w", event, err)
	}
	return nil
}

// channel returns the open channel, dialling and declaring the queue when
// needed. Callers hold s.mu.
func (s *AMQPSink) channel() (*amqp.Channel, error) {
	if s.conn != nil && !s.conn.IsClosed() && s.ch != nil && !s.ch.IsClosed() {
		return s.ch, nil
	}
	s.reset()

	conn, err := amqp.Dial(s.url)
	if err != nil {
		return nil, fmt.Errorf("queue/amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue/amqp: channel: %w", err)
	}
	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue/amqp: declare %s: %w", s.queue, err)
	}

	s.conn, s.ch = conn, ch
	logger.Info("queue/amqp: connected", "queue", s.queue)
	return ch, nil
}

func (s *AMQPSink) reset() {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn, s.ch = nil, nil
}

// Close shuts the connection down.
func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// LogSink logs events instead of publishing them. Used when no broker is
// configured.
type LogSink struct{}

func (LogSink) Publish(ctx context.Context, event string, body []byte) error {
	logger.WithCtx(ctx).Info("event", "name", event, "payload", string(body))
	return nil
}
