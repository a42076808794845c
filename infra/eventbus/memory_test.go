package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecorded() *events.TransactionRecorded {
	return events.NewTransactionRecorded(account.NewTransactionFromData(
		uuid.New(), uuid.New(), account.KindDeposit,
		decimal.RequireFromString("12.34"), decimal.RequireFromString("12.34"),
		1, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	))
}

func TestMemoryEventBus_DispatchesByType(t *testing.T) {
	bus := NewWithMemory(testutils.DiscardLogger())

	var got []events.Event
	bus.Register(events.EventTypeTransactionRecorded.String(), func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})

	evt := sampleRecorded()
	require.NoError(t, bus.Emit(context.Background(), evt))
	require.NoError(t, bus.Emit(context.Background(), &events.AccountCreated{AccountID: uuid.New()}))

	require.Len(t, got, 1)
	assert.Same(t, evt, got[0])
	assert.Len(t, bus.Published(), 2)
}

func TestMemoryEventBus_HandlerFailures(t *testing.T) {
	bus := NewWithMemory(testutils.DiscardLogger())
	typ := events.EventTypeAccountCreated.String()

	calls := 0
	bus.Register(typ, func(context.Context, events.Event) error { return errors.New("boom") })
	bus.Register(typ, func(context.Context, events.Event) error { panic("kaboom") })
	bus.Register(typ, func(context.Context, events.Event) error { calls++; return nil })

	err := bus.Emit(context.Background(), &events.AccountCreated{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "kaboom")
	assert.Equal(t, 1, calls, "later handlers still run")
}

func TestEnvelopeRoundTrip(t *testing.T) {
	evt := sampleRecorded()
	raw, err := encodeEnvelope(evt)
	require.NoError(t, err)

	decoded, err := decodeEnvelope(raw)
	require.NoError(t, err)
	got, ok := decoded.(*events.TransactionRecorded)
	require.True(t, ok)
	assert.Equal(t, evt.TransactionID, got.TransactionID)
	assert.True(t, evt.Amount.Equal(got.Amount))
	assert.True(t, evt.OccurredAt.Equal(got.OccurredAt))

	_, err = decodeEnvelope([]byte(`{"type":"Nope.Unknown","payload":{}}`))
	assert.Error(t, err)
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "ledger.events:transaction:recorded", channelName("ledger.events", ":", "Transaction.Recorded"))
	assert.Equal(t, "p.account.created", channelName("p", ".", "Account.Created"))
}
