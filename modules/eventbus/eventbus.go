// Package eventbus carries persistence outcome events from the cache
// and the sync queue to their logging consumers.
package eventbus

import (
	"context"
	"log"
	"sync"

	"github.com/ProyectoSpoon/SPOON-sub000/domain/menu"
)

// Handler consumes one persistence event.
type Handler func(event menu.Event)

// Bus fans persistence events out to their subscribers. Delivery is
// synchronous: events carry logging-only outcomes and never feed back
// into editor state, so a handler must not block on the editor.
type Bus struct {
	mu       sync.RWMutex
	handlers map[menu.EventType][]Handler
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		handlers: make(map[menu.EventType][]Handler),
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType menu.EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler for every persistence event type.
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, eventType := range menu.EventTypes() {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
}

// Publish delivers the event to every handler subscribed to its type.
// A panicking handler is logged and does not stop delivery.
func (b *Bus) Publish(_ context.Context, event menu.Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(handler, event)
	}
}

func (b *Bus) deliver(handler Handler, event menu.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[eventbus] Handler panic for %s: %v", event.Type, r)
		}
	}()
	handler(event)
}

// HandlerCount returns the number of handlers for one event type.
func (b *Bus) HandlerCount(eventType menu.EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}
