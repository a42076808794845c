package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the direction of a ledger entry.
type Kind string

// Transaction kinds.
const (
	KindDeposit    Kind = "DEPOSIT"
	KindWithdrawal Kind = "WITHDRAWAL"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindDeposit || k == KindWithdrawal
}

func (k Kind) String() string { return string(k) }

// Transaction is an immutable ledger entry. It is created once, right after
// the balance mutation it records, and never updated or deleted.
type Transaction struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	Kind         Kind
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal // Account balance snapshot
	Sequence     int64           // 1-based insertion order within the account
	OccurredAt   time.Time
}

// NewTransactionFromData creates a Transaction from stored data (repository hydration or fixtures).
// It bypasses invariants.
func NewTransactionFromData(
	id, accountID uuid.UUID,
	kind Kind,
	amount, balanceAfter decimal.Decimal,
	sequence int64,
	occurredAt time.Time,
) *Transaction {
	return &Transaction{
		ID:           id,
		AccountID:    accountID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Sequence:     sequence,
		OccurredAt:   occurredAt,
	}
}

// Signed returns the amount with the sign of its effect on the balance.
func (t *Transaction) Signed() decimal.Decimal {
	if t.Kind == KindWithdrawal {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Sum returns the signed sum of txs.
func Sum(txs []*Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Signed())
	}
	return total
}
