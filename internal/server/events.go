package server

import (
	"context"
	"time"

	"github.com/shashiranjanraj/planty/pkg/event"
	"github.com/shashiranjanraj/planty/pkg/logger"
)

// Publisher receives order events for live clients.
type Publisher interface {
	Publish(event string, data interface{})
}

// Dispatcher queues order events for the broker.
type Dispatcher interface {
	Dispatch(ctx context.Context, event string, payload interface{}) error
}

const dispatchTimeout = 2 * time.Second

// OrderEvents lists the events relayed off the bus.
var OrderEvents = []string{event.OrderCreated, event.OrderUpdated, event.OrderDeleted}

// wireEvents relays every order event to the websocket feed and the broker
// queue. Either side may be nil. A queue failure is logged; it never fails
// the request that fired the event.
func wireEvents(bus *event.Bus, feed Publisher, q Dispatcher) {
	for _, name := range OrderEvents {
		name := name
		if feed != nil {
			bus.Listen(name, func(p interface{}) { feed.Publish(name, p) })
		}
		if q != nil {
			bus.Listen(name, func(p interface{}) {
				ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
				defer cancel()
				if err := q.Dispatch(ctx, name, p); err != nil {
					logger.Warn("event: queue dispatch failed", "event", name, "error", err)
				}
			})
		}
	}
}
