package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/eventbus"
)

// MemoryEventBus dispatches events synchronously to in-process handlers.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit records the event and runs every handler registered for its type.
// Handler failures are joined into the returned error.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[event.Type()]...)
	b.mu.Unlock()

	return dispatch(ctx, b.logger, event, handlers)
}

// Published returns a copy of every event emitted so far.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event(nil), b.published...)
}

// Close is a no-op.
func (b *MemoryEventBus) Close() error { return nil }

var _ eventbus.Bus = (*MemoryEventBus)(nil)
