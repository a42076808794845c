package statement_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/lock"
	"github.com/amirasaad/ledger/pkg/repository"
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/pkg/service/statement"
	usersvc "github.com/amirasaad/ledger/pkg/service/user"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	uow      repository.UnitOfWork
	accounts *accountsvc.Service
	reader   *statement.Reader
	acc      *account.Account
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	_, uow := testutils.NewSQLiteUoW(t)
	logger := testutils.DiscardLogger()
	users := usersvc.New(uow, logger)
	owner, err := users.CreateUser(ctx, "ana@example.com", "Ana")
	require.NoError(t, err)

	accounts := accountsvc.NewService(accountsvc.Deps{
		Uow:    uow,
		Users:  users,
		Locker: lock.NewKeyed(),
		Logger: logger,
	})
	acc, err := accounts.CreateAccount(ctx, "Ana", owner.ID)
	require.NoError(t, err)

	return fixture{
		uow:      uow,
		accounts: accounts,
		reader:   statement.NewReader(uow, logger, 5*time.Second),
		acc:      acc,
	}
}

func TestTransactions_EmptyForUnknownAccount(t *testing.T) {
	f := setup(t)
	txs, err := f.reader.Transactions(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestTransactions_Ordered(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	amounts := []string{"100", "30", "5.5"}
	_, err := f.accounts.Deposit(ctx, f.acc.ID, decimal.RequireFromString(amounts[0]))
	require.NoError(t, err)
	_, err = f.accounts.Withdraw(ctx, f.acc.ID, decimal.RequireFromString(amounts[1]))
	require.NoError(t, err)
	_, err = f.accounts.Deposit(ctx, f.acc.ID, decimal.RequireFromString(amounts[2]))
	require.NoError(t, err)
	// A rejected withdrawal leaves no entry.
	_, err = f.accounts.Withdraw(ctx, f.acc.ID, decimal.RequireFromString("1000"))
	require.Error(t, err)

	txs, err := f.reader.Transactions(ctx, f.acc.ID)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	for i, tx := range txs {
		assert.Equal(t, int64(i+1), tx.Sequence)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString(amounts[i])))
		if i > 0 {
			assert.False(t, tx.OccurredAt.Before(txs[i-1].OccurredAt))
		}
	}
	assert.True(t, account.Sum(txs).Equal(decimal.RequireFromString("75.5")))
}

func TestTransactions_ConcurrentReadsAgree(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for range 5 {
		_, err := f.accounts.Deposit(ctx, f.acc.ID, decimal.NewFromInt(1))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			txs, err := f.reader.Transactions(ctx, f.acc.ID)
			if !assert.NoError(t, err) || !assert.Len(t, txs, 5) {
				return
			}
			for _, tx := range txs {
				assert.True(t, tx.Amount.Equal(decimal.NewFromInt(1)))
			}
			// Entries belong to this caller alone.
			txs[0].Amount = decimal.Zero
		}()
	}
	wg.Wait()
}

// gatedUoW holds the first read-only unit of work until released.
type gatedUoW struct {
	repository.UnitOfWork
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedUoW) ReadOnly(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.UnitOfWork.ReadOnly(ctx, fn)
}

func TestTransactions_LateCallerSeesCommittedEntries(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.accounts.Deposit(ctx, f.acc.ID, decimal.NewFromInt(1))
	require.NoError(t, err)

	gate := &gatedUoW{
		UnitOfWork: f.uow,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	reader := statement.NewReader(gate, testutils.DiscardLogger(), 5*time.Second)

	early := make(chan []*account.Transaction, 1)
	go func() {
		txs, err := reader.Transactions(ctx, f.acc.ID)
		assert.NoError(t, err)
		early <- txs
	}()
	<-gate.entered

	_, err = f.accounts.Deposit(ctx, f.acc.ID, decimal.NewFromInt(2))
	require.NoError(t, err)

	late := make(chan []*account.Transaction, 1)
	go func() {
		txs, err := reader.Transactions(ctx, f.acc.ID)
		assert.NoError(t, err)
		late <- txs
	}()

	select {
	case txs := <-late:
		assert.Len(t, txs, 2)
	case <-time.After(3 * time.Second):
		t.Fatal("late reader waited on a read that started before it")
	}

	close(gate.release)
	assert.Len(t, <-early, 2)
}

func TestStatement(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.accounts.Deposit(ctx, f.acc.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = f.accounts.Withdraw(ctx, f.acc.ID, decimal.NewFromInt(30))
	require.NoError(t, err)

	st, err := f.reader.Statement(ctx, f.acc.ID)
	require.NoError(t, err)
	assert.Equal(t, f.acc.ID, st.Account.ID)
	assert.True(t, st.Account.Balance.Equal(decimal.NewFromInt(70)))
	assert.Len(t, st.Transactions, 2)
	assert.True(t, st.TotalDeposits.Equal(decimal.NewFromInt(100)))
	assert.True(t, st.TotalWithdrawals.Equal(decimal.NewFromInt(30)))
	assert.True(t, st.TotalDeposits.Sub(st.TotalWithdrawals).Equal(st.Account.Balance))
}

func TestStatement_UnknownAccount(t *testing.T) {
	f := setup(t)
	_, err := f.reader.Statement(context.Background(), uuid.New())
	require.ErrorIs(t, err, account.ErrAccountNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
