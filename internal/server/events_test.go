package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/planty/app/models"
	"github.com/shashiranjanraj/planty/app/resources"
	"github.com/shashiranjanraj/planty/pkg/event"
	"github.com/shashiranjanraj/planty/pkg/queue"
	"github.com/shashiranjanraj/planty/pkg/ws"
)

type recordingFeed struct{ events []string }

func (f *recordingFeed) Publish(name string, _ interface{}) { f.events = append(f.events, name) }

type failingQueue struct{ calls int }

func (q *failingQueue) Dispatch(context.Context, string, interface{}) error {
	q.calls++
	return errors.New("redis down")
}

func TestWireEventsFansOut(t *testing.T) {
	bus := event.NewBus()
	feed := &recordingFeed{}
	driver := queue.NewMemoryDriver(10)
	q := queue.New(driver, queue.LogSink{})

	wireEvents(bus, feed, q)
	bus.Fire(event.OrderCreated, map[string]string{"id": "o1"})
	bus.Fire(event.OrderDeleted, map[string]string{"id": "o1"})
	bus.Fire("plant.created", nil)

	assert.Equal(t, []string{event.OrderCreated, event.OrderDeleted}, feed.events)

	raw, err := driver.Pop(context.Background())
	require.NoError(t, err)
	var msg queue.Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, event.OrderCreated, msg.Event)
	assert.JSONEq(t, `{"id":"o1"}`, string(msg.Payload))
}

func TestWireEventsSurvivesQueueFailure(t *testing.T) {
	bus := event.NewBus()
	q := &failingQueue{}

	wireEvents(bus, nil, q)

	assert.NotPanics(t, func() { bus.Fire(event.OrderUpdated, struct{}{}) })
	assert.Equal(t, 1, q.calls)
}

func TestOrderFrameNamesCustomerByID(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	bus := event.NewBus()
	wireEvents(bus, hub, nil)

	o := models.Order{
		ID:       primitive.NewObjectID(),
		Customer: primitive.NewObjectID(),
		Products: primitive.NewObjectID(),
		Quantity: 2,
		Total:    25,
		Status:   models.OrderPending,
	}
	bus.Fire(event.OrderCreated, resources.OrderEvent(o))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var f struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &f))
	assert.Equal(t, event.OrderCreated, f.Event)
	assert.Equal(t, o.ID.Hex(), f.Data["id"])
	assert.Equal(t, o.Customer.Hex(), f.Data["customer"])
	assert.Equal(t, o.Products.Hex(), f.Data["products"])
	assert.ElementsMatch(t,
		[]string{"id", "customer", "products", "quantity", "total", "status", "createdAt", "updatedAt"},
		keys(f.Data))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
