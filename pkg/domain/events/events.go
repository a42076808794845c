// Package events defines the notifications emitted after a ledger change has
// been committed. They are informational: the ledger tables remain the
// source of truth and events may be lost if the process dies after commit.
package events

import (
	"time"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is implemented by every domain event.
type Event interface {
	Type() string
}

// AccountCreated is emitted once an account has been persisted.
type AccountCreated struct {
	AccountID  uuid.UUID `json:"account_id"`
	UserID     uuid.UUID `json:"user_id"`
	HolderName string    `json:"holder_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func (e *AccountCreated) Type() string { return EventTypeAccountCreated.String() }

// AccountStatusChanged is emitted when an account is activated or deactivated.
type AccountStatusChanged struct {
	AccountID uuid.UUID `json:"account_id"`
	Active    bool      `json:"active"`
	ChangedAt time.Time `json:"changed_at"`
}

func (e *AccountStatusChanged) Type() string { return EventTypeAccountStatusChanged.String() }

// TransactionRecorded is emitted after a balance mutation and its ledger
// entry have been committed together.
type TransactionRecorded struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Kind          account.Kind    `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Sequence      int64           `json:"sequence"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func (e *TransactionRecorded) Type() string { return EventTypeTransactionRecorded.String() }

// NewTransactionRecorded builds the event for a committed ledger entry.
func NewTransactionRecorded(tx *account.Transaction) *TransactionRecorded {
	return &TransactionRecorded{
		TransactionID: tx.ID,
		AccountID:     tx.AccountID,
		Kind:          tx.Kind,
		Amount:        tx.Amount,
		BalanceAfter:  tx.BalanceAfter,
		Sequence:      tx.Sequence,
		OccurredAt:    tx.OccurredAt,
	}
}
