package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/planty/pkg/queue"
)

type recordingSink struct {
	mu    sync.Mutex
	fails int
	calls int
	got   []string
	done  chan struct{}
}

func (s *recordingSink) Publish(_ context.Context, event string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.fails {
		return errors.New("broker unreachable")
	}
	s.got = append(s.got, event+" "+string(body))
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	return nil
}

type memFailed struct {
	mu    sync.Mutex
	saved []queue.FailedMessage
	done  chan struct{}
}

func (m *memFailed) Save(_ context.Context, f queue.FailedMessage) error {
	m.mu.Lock()
	m.saved = append(m.saved, f)
	m.mu.Unlock()
	close(m.done)
	return nil
}

func noBackoff(int) time.Duration { return 0 }

func waitFor(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestDispatchedEventReachesSink(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{done: make(chan struct{})}
	q := queue.New(queue.NewMemoryDriver(10), sink, queue.WithBackoff(noBackoff))
	q.Start(ctx, 2)

	require.NoError(t, q.Dispatch(ctx, "order.created", map[string]any{"id": "o1", "total": 25}))
	waitFor(t, sink.done)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.got, 1)
	assert.Equal(t, `order.created {"id":"o1","total":25}`, sink.got[0])
}

func TestRetriesThenSucceeds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{fails: 2, done: make(chan struct{})}
	q := queue.New(queue.NewMemoryDriver(10), sink, queue.WithBackoff(noBackoff), queue.WithMaxRetry(3))
	q.Start(ctx, 1)

	require.NoError(t, q.Dispatch(ctx, "order.updated", "x"))
	waitFor(t, sink.done)

	sink.mu.Lock()
	assert.Equal(t, 3, sink.calls)
	sink.mu.Unlock()
	assert.Empty(t, q.Failed())
}

func TestExhaustedRetriesArePersisted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failed := &memFailed{done: make(chan struct{})}
	sink := &recordingSink{fails: 100}
	q := queue.New(queue.NewMemoryDriver(10), sink,
		queue.WithBackoff(noBackoff), queue.WithMaxRetry(2), queue.WithFailedStore(failed))
	q.Start(ctx, 1)

	require.NoError(t, q.Dispatch(ctx, "order.created", map[string]string{"id": "o9"}))
	waitFor(t, failed.done)

	failed.mu.Lock()
	defer failed.mu.Unlock()
	require.Len(t, failed.saved, 1)
	f := failed.saved[0]
	assert.Equal(t, "order.created", f.Event)
	assert.Equal(t, 2, f.Attempts)
	assert.Equal(t, "broker unreachable", f.Error)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(f.Payload), &payload))
	assert.Equal(t, "o9", payload["id"])
	assert.Len(t, q.Failed(), 1)
}

func TestMemoryDriverFull(t *testing.T) {
	d := queue.NewMemoryDriver(1)
	require.NoError(t, d.Push(context.Background(), []byte("a")))
	assert.ErrorIs(t, d.Push(context.Background(), []byte("b")), queue.ErrQueueFull)
}
