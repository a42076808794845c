package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/ledger/infra/eventbus"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/lock"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WiresServicesAndAuditSubscriber(t *testing.T) {
	_, uow := testutils.NewSQLiteUoW(t)
	logger := testutils.DiscardLogger()
	bus := infraeventbus.NewWithMemory(logger)

	a := app.New(&app.Deps{
		Uow:      uow,
		Locker:   lock.NewKeyed(),
		EventBus: bus,
		Logger:   logger,
	}, &config.App{Ledger: &config.Ledger{OperationTimeout: 5 * time.Second}})

	ctx := context.Background()
	u, err := a.UserService.CreateUser(ctx, "ana@example.com", "Ana")
	require.NoError(t, err)
	acc, err := a.AccountService.CreateAccount(ctx, "Ana", u.ID)
	require.NoError(t, err)
	_, err = a.AccountService.Deposit(ctx, acc.ID, decimal.NewFromInt(10))
	require.NoError(t, err)

	st, err := a.StatementReader.Statement(ctx, acc.ID)
	require.NoError(t, err)
	assert.Len(t, st.Transactions, 1)

	published := bus.Published()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventTypeAccountCreated.String(), published[0].Type())
	assert.Equal(t, events.EventTypeTransactionRecorded.String(), published[1].Type())
}

func TestDeps_CloseRunsInReverse(t *testing.T) {
	var order []int
	d := &app.Deps{Closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return errors.New("second") },
	}}
	err := d.Close()
	require.Error(t, err)
	assert.Equal(t, []int{2, 1}, order)
}

func TestDeps_CloseNil(t *testing.T) {
	var d *app.Deps
	assert.NoError(t, d.Close())
}
