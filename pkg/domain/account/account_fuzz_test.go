package account_test

import (
	"testing"
	"time"

	domainaccount "github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FuzzAccountWithdraw tests Account.Withdraw invariants with random input.
func FuzzAccountWithdraw(f *testing.F) {
	f.Add("100", "50")
	f.Add("100", "100.01")
	f.Add("0", "-5")
	f.Add("1e6", "0")
	f.Add("0.1", "0.10000000000000000001")
	f.Fuzz(func(t *testing.T, balance, amount string) {
		b, err := decimal.NewFromString(balance)
		if err != nil || b.IsNegative() {
			t.Skip()
		}
		a, err := decimal.NewFromString(amount)
		if err != nil {
			t.Skip()
		}
		acc, err := domainaccount.New().
			WithUserID(uuid.New()).
			WithHolderName("Fuzz").
			WithBalance(b).
			Build()
		if err != nil {
			t.Skip()
		}

		tx, err := acc.Withdraw(a, time.Now())
		// Invariant: balance should never be negative
		if acc.Balance.IsNegative() {
			t.Errorf("Account balance is negative after withdraw: %v (balance=%q, amount=%q)", acc.Balance, balance, amount)
		}
		if err != nil {
			if !acc.Balance.Equal(b) || acc.Sequence != 0 {
				t.Errorf("rejected withdraw changed state: balance=%v sequence=%d", acc.Balance, acc.Sequence)
			}
			return
		}
		if !b.Sub(a).Equal(acc.Balance) || !tx.BalanceAfter.Equal(acc.Balance) {
			t.Errorf("balance mismatch: %v - %v != %v", b, a, acc.Balance)
		}
	})
}

// FuzzAccountDeposit tests Account.Deposit invariants with random input.
func FuzzAccountDeposit(f *testing.F) {
	f.Add("100")
	f.Add("-50")
	f.Add("0")
	f.Add("0.000000000000000001")
	f.Fuzz(func(t *testing.T, amount string) {
		a, err := decimal.NewFromString(amount)
		if err != nil {
			t.Skip()
		}
		acc, err := domainaccount.New().WithUserID(uuid.New()).WithHolderName("Fuzz").Build()
		if err != nil {
			t.Skip()
		}
		tx, err := acc.Deposit(a, time.Now())
		if err != nil {
			if !acc.Balance.IsZero() {
				t.Errorf("rejected deposit changed the balance: %v", acc.Balance)
			}
			return
		}
		if !acc.Balance.Equal(a) || !domainaccount.Sum([]*domainaccount.Transaction{tx}).Equal(acc.Balance) {
			t.Errorf("balance %v does not match ledger for deposit %v", acc.Balance, a)
		}
	})
}
