package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spec-kit/account-security/internal/domain"
)

// Handler handles a published event.
type Handler func(context.Context, domain.Event) error

// Bus publishes domain events to whoever is interested.
type Bus interface {
	Publish(ctx context.Context, event domain.Event) error
}

// InMemoryBus is a synchronous subscriber bus keyed by event name.
type InMemoryBus struct {
	mu        sync.RWMutex
	listeners map[string][]Handler
	wildcard  []Handler
}

// NewInMemoryBus creates a bus with no subscribers.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		listeners: make(map[string][]Handler),
	}
}

// Publish invokes every handler subscribed to the event's name and every
// catch-all handler. All handlers run; their failures are joined.
func (b *InMemoryBus) Publish(ctx context.Context, event domain.Event) error {
	b.mu.RLock()
	handlers := append([]Handler{}, b.listeners[event.EventName()]...)
	handlers = append(handlers, b.wildcard...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("handle %s: %w", event.EventName(), err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for one event name.
func (b *InMemoryBus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[name] = append(b.listeners[name], handler)
}

// SubscribeAll registers a handler for every event.
func (b *InMemoryBus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

// Fanout publishes to several buses in order.
type Fanout []Bus

func (f Fanout) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, bus := range f {
		if bus == nil {
			continue
		}
		if err := bus.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishObserver is told about every publish attempt.
type PublishObserver interface {
	ObservePublish(name string, err error)
}

type observedBus struct {
	next     Bus
	observer PublishObserver
}

// Observed wraps bus so that observer sees each outcome.
func Observed(bus Bus, observer PublishObserver) Bus {
	if observer == nil {
		return bus
	}
	return &observedBus{next: bus, observer: observer}
}

func (b *observedBus) Publish(ctx context.Context, event domain.Event) error {
	err := b.next.Publish(ctx, event)
	b.observer.ObservePublish(event.EventName(), err)
	return err
}
