package events

import (
	"context"
	"sync"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	// Publish hands the event to subscribers without blocking the caller.
	// Handler outcomes never reach the publisher.
	Publish(ctx context.Context, event Event)
	Subscribe(eventType EventType, handler EventHandler)
	// Wait blocks until all in-flight handlers have finished.
	Wait()
}

// inMemoryDispatcher runs handlers on detached goroutines so a slow or
// failing side channel cannot delay the response path.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	wg        sync.WaitGroup
	listeners map[EventType][]EventHandler
	onError   func(Event, error)
}

// NewInMemoryDispatcher creates a dispatcher instance. onError observes
// handler failures; pass nil to discard them.
func NewInMemoryDispatcher(onError func(Event, error)) Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		onError:   onError,
	}
}

// Publish invokes handlers asynchronously. The request context may be gone
// by the time a handler runs, so handlers receive a fresh background context.
func (d *inMemoryDispatcher) Publish(_ context.Context, event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		d.wg.Add(1)
		go func(h EventHandler) {
			defer d.wg.Done()
			if err := h(context.Background(), event); err != nil && d.onError != nil {
				d.onError(event, err)
			}
		}(handler)
	}
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Wait blocks until in-flight handlers complete. Used on shutdown and in tests.
func (d *inMemoryDispatcher) Wait() {
	d.wg.Wait()
}
