package account_test

import (
	"context"
	"testing"

	"github.com/amirasaad/ledger/pkg/lock"
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	usersvc "github.com/amirasaad/ledger/pkg/service/user"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/shopspring/decimal"
)

func newBenchService(b *testing.B) (*accountsvc.Service, *usersvc.Service) {
	b.Helper()
	_, uow := testutils.NewSQLiteUoW(b)
	logger := testutils.DiscardLogger()
	users := usersvc.New(uow, logger)
	return accountsvc.NewService(accountsvc.Deps{
		Uow:    uow,
		Users:  users,
		Locker: lock.NewKeyed(),
		Logger: logger,
	}), users
}

func BenchmarkCreateAccount(b *testing.B) {
	svc, users := newBenchService(b)
	ctx := context.Background()
	u, err := users.CreateUser(ctx, "bench@example.com", "Bench")
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for b.Loop() {
		if _, err := svc.CreateAccount(ctx, "Bench", u.ID); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDeposit(b *testing.B) {
	svc, users := newBenchService(b)
	ctx := context.Background()
	u, err := users.CreateUser(ctx, "bench@example.com", "Bench")
	if err != nil {
		b.Fatal(err)
	}
	acc, err := svc.CreateAccount(ctx, "Bench", u.ID)
	if err != nil {
		b.Fatal(err)
	}
	amount := decimal.RequireFromString("1.01")
	b.ResetTimer()
	for b.Loop() {
		if _, err := svc.Deposit(ctx, acc.ID, amount); err != nil {
			b.Fatal(err)
		}
	}
}
