// Package queue relays domain events to the message broker.
//
// Events are pushed onto a Driver (Redis list, or memory when Redis is
// down) and drained by workers that hand them to a Sink (RabbitMQ in
// production). A publish that keeps failing after the retries is saved to
// the failed store instead of being lost.
//
//	q := queue.New(queue.NewRedisDriver(rdb), queue.NewAMQP(url, "order_events"),
//	    queue.WithFailedStore(queue.NewMongoFailedStore(db)))
//	q.Start(ctx, 4)
//	q.Dispatch(ctx, event.OrderCreated, payload)
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/planty/pkg/logger"
	"github.com/shashiranjanraj/planty/pkg/metrics"
	"github.com/shashiranjanraj/planty/pkg/workerpool"
)

// Driver stores queued messages.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a message is available. A nil payload with a nil
	// error means the wait timed out.
	Pop(ctx context.Context) ([]byte, error)
}

// Sink is where events end up.
type Sink interface {
	Publish(ctx context.Context, event string, body []byte) error
}

// Message is the queued envelope.
type Message struct {
	Event    string          `json:"event"`
	Payload  json.RawMessage `json:"payload"`
	QueuedAt time.Time       `json:"queued_at"`
}

// Manager dispatches and processes messages.
type Manager struct {
	driver   Driver
	sink     Sink
	failed   FailedStore
	maxRetry int
	backoff  func(attempt int) time.Duration

	mu     sync.RWMutex
	recent []FailedMessage
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxRetry sets how many publish attempts a message gets.
func WithMaxRetry(n int) Option { return func(m *Manager) { m.maxRetry = n } }

// WithFailedStore persists messages that exhausted their retries.
func WithFailedStore(fs FailedStore) Option { return func(m *Manager) { m.failed = fs } }

// WithBackoff replaces the linear one-second-per-attempt backoff.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(m *Manager) { m.backoff = fn }
}

func New(driver Driver, sink Sink, opts ...Option) *Manager {
	m := &Manager{
		driver:   driver,
		sink:     sink,
		maxRetry: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ------------------- Dispatch -------------------

// Dispatch queues event with payload marshalled as JSON.
func (m *Manager) Dispatch(ctx context.Context, event string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue: marshal %s: %w", event, err)
	}
	raw, err := json.Marshal(Message{Event: event, Payload: body, QueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}
	return m.driver.Push(ctx, raw)
}

// ------------------- Worker -------------------

// Start pops messages until ctx is cancelled and processes them on a pool
// of n workers. It returns at once.
func (m *Manager) Start(ctx context.Context, n int) {
	pool := workerpool.New(n)
	go func() {
		defer pool.Shutdown()
		for {
			raw, err := m.driver.Pop(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("queue: pop failed", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(500 * time.Millisecond):
				}
				continue
			}
			if raw == nil {
				continue
			}
			if err := pool.SubmitWait(ctx, func() { m.process(ctx, raw) }); err != nil {
				return
			}
		}
	}()
	logger.Info("queue: workers started", "count", n)
}

func (m *Manager) process(ctx context.Context, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= m.maxRetry; attempt++ {
		lastErr = m.sink.Publish(ctx, msg.Event, msg.Payload)
		if lastErr == nil {
			metrics.EventsPublished.WithLabelValues(msg.Event, "ok").Inc()
			logger.Debug("queue: event published", "event", msg.Event)
			return
		}
		logger.Warn("queue: publish failed, retrying", "event", msg.Event, "attempt", attempt, "error", lastErr)
		if attempt == m.maxRetry {
			break
		}
		select {
		case <-ctx.Done():
			attempt = m.maxRetry
		case <-time.After(m.backoff(attempt)):
		}
	}

	metrics.EventsPublished.WithLabelValues(msg.Event, "failed").Inc()
	m.persistFailed(msg, lastErr)
}

func (m *Manager) persistFailed(msg Message, lastErr error) {
	errText := ""
	if lastErr != nil {
		errText = lastErr.Error()
	}
	f := FailedMessage{
		Event:    msg.Event,
		Payload:  string(msg.Payload),
		Error:    errText,
		Attempts: m.maxRetry,
		FailedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.recent = append(m.recent, f)
	m.mu.Unlock()

	logger.Error("queue: event exhausted retries", "event", msg.Event, "error", lastErr)

	if m.failed == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.failed.Save(ctx, f); err != nil {
		logger.Error("queue: could not persist failed event", "event", msg.Event, "error", err)
	}
}

// Failed returns the messages that exhausted their retries since boot.
func (m *Manager) Failed() []FailedMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FailedMessage, len(m.recent))
	copy(out, m.recent)
	return out
}
