// Package event is an in-process publish/subscribe bus for domain events.
//
// The order service fires events; the websocket feed and the broker
// publisher listen:
//
//	bus.Listen(event.OrderCreated, func(p any) { hub.Publish(event.OrderCreated, p) })
//	bus.Fire(event.OrderCreated, order)
package event

import (
	"sync"
)

// Event names.
const (
	OrderCreated = "order.created"
	OrderUpdated = "order.updated"
	OrderDeleted = "order.deleted"
)

// Handler receives an event payload.
type Handler func(payload interface{})

// Dispatcher is what services depend on.
type Dispatcher interface {
	Fire(event string, payload interface{})
}

// Bus holds listeners by event name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers handler for event.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Fire calls every listener of event in registration order.
func (b *Bus) Fire(event string, payload interface{}) {
	for _, h := range b.snapshot(event) {
		h(payload)
	}
}

func (b *Bus) snapshot(event string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	return hs
}
