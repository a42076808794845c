package eventbus

import (
	"context"

	"github.com/amirasaad/ledger/pkg/domain/events"
)

// HandlerFunc handles a single event. Returned errors are logged by the bus.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus defines the contract for emitting domain events and registering handlers.
type Bus interface {
	Emit(ctx context.Context, event events.Event) error
	Register(eventType string, handler HandlerFunc)
}
