package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/eventbus"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encodeEnvelope(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("event bus: marshal %s: %w", event.Type(), err)
	}
	return json.Marshal(envelope{Type: event.Type(), Payload: data})
}

// decodeEnvelope rebuilds the typed event from raw using events.EventTypes.
func decodeEnvelope(raw []byte) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("event bus: unmarshal envelope: %w", err)
	}
	constructor, ok := events.EventTypes[env.Type]
	if !ok {
		return nil, fmt.Errorf("event bus: unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("event bus: unmarshal %s payload: %w", env.Type, err)
	}
	return evt, nil
}

// dispatch runs handlers in registration order. A panicking handler is
// recovered and reported like a returned error.
func dispatch(
	ctx context.Context,
	logger *slog.Logger,
	evt events.Event,
	handlers []eventbus.HandlerFunc,
) error {
	var errs []error
	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					errs = append(errs, fmt.Errorf("handler panic: %v", r))
				}
			}()
			if err := h(ctx, evt); err != nil {
				errs = append(errs, err)
			}
		}()
	}
	err := errors.Join(errs...)
	if err != nil {
		logger.Error("event handler failed", "event_type", evt.Type(), "error", err)
	}
	return err
}

// channelName turns "Transaction.Recorded" into "<prefix>:transaction:recorded".
func channelName(prefix, sep, eventType string) string {
	parts := strings.Split(strings.ToLower(eventType), ".")
	return prefix + sep + strings.Join(parts, sep)
}
