package account

import (
	"strings"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrHolderNameRequired is returned when the holder name is empty after trimming.
	ErrHolderNameRequired = domain.NewValidationError("holder name is required")

	// ErrUserIDRequired is returned when an account is built without an owner.
	ErrUserIDRequired = domain.NewValidationError("owner user id is required")

	// ErrAmountMustBePositive is returned when a transaction amount is missing, zero or negative.
	ErrAmountMustBePositive = domain.NewValidationError("amount must be greater than zero")

	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = domain.NewNotFoundError("account not found")

	// ErrInactiveAccount is returned when a mutation targets a deactivated account.
	ErrInactiveAccount = domain.NewBusinessError("inactive account")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the balance.
	ErrInsufficientFunds = domain.NewBusinessError("insufficient funds")
)

// Account is a holder's balance and the aggregate root for its ledger entries.
//
// Invariants:
//   - HolderName is non-empty and trimmed.
//   - Balance is never negative and always equals the signed sum of the
//     account's transactions.
//   - Sequence is the number of transactions recorded so far.
type Account struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	HolderName string
	Balance    decimal.Decimal
	Active     bool
	Sequence   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id         uuid.UUID
	userID     uuid.UUID
	holderName string
	balance    decimal.Decimal
	active     bool
	sequence   int64
	createdAt  time.Time
	updatedAt  time.Time
}

// New creates a Builder for a fresh, active account with a zero balance.
func New() *Builder {
	now := time.Now().UTC()
	return &Builder{
		id:        uuid.New(),
		active:    true,
		createdAt: now,
		updatedAt: now,
	}
}

// WithID sets the account ID.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithUserID sets the owning user. Mandatory.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

// WithHolderName sets the holder name; surrounding whitespace is trimmed. Mandatory.
func (b *Builder) WithHolderName(name string) *Builder {
	b.holderName = strings.TrimSpace(name)
	return b
}

// WithBalance sets the balance. Only for hydrating stored accounts and tests.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

// WithActive sets the activity flag. Only for hydration.
func (b *Builder) WithActive(active bool) *Builder {
	b.active = active
	return b
}

// WithSequence sets the number of recorded transactions. Only for hydration.
func (b *Builder) WithSequence(seq int64) *Builder {
	b.sequence = seq
	return b
}

// WithCreatedAt sets the creation timestamp.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-mutation timestamp.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the invariants and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.holderName == "" {
		return nil, ErrHolderNameRequired
	}
	if b.userID == uuid.Nil {
		return nil, ErrUserIDRequired
	}
	if b.balance.IsNegative() {
		return nil, domain.NewValidationError("balance cannot be negative")
	}
	return &Account{
		ID:         b.id,
		UserID:     b.userID,
		HolderName: b.holderName,
		Balance:    b.balance,
		Active:     b.active,
		Sequence:   b.sequence,
		CreatedAt:  b.createdAt,
		UpdatedAt:  b.updatedAt,
	}, nil
}

// ValidateAmount rejects missing (zero), zero and negative amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	return nil
}

// ValidateDeposit checks the invariants of a deposit without applying it.
func (a *Account) ValidateDeposit(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if !a.Active {
		return ErrInactiveAccount
	}
	return nil
}

// ValidateWithdraw checks the invariants of a withdrawal without applying it.
func (a *Account) ValidateWithdraw(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if !a.Active {
		return ErrInactiveAccount
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// Deposit credits amount and returns the ledger entry recording it.
func (a *Account) Deposit(amount decimal.Decimal, at time.Time) (*Transaction, error) {
	if err := a.ValidateDeposit(amount); err != nil {
		return nil, err
	}
	return a.apply(KindDeposit, amount, at), nil
}

// Withdraw debits amount and returns the ledger entry recording it.
func (a *Account) Withdraw(amount decimal.Decimal, at time.Time) (*Transaction, error) {
	if err := a.ValidateWithdraw(amount); err != nil {
		return nil, err
	}
	return a.apply(KindWithdrawal, amount, at), nil
}

// Deactivate marks the account inactive. It reports whether the flag changed.
func (a *Account) Deactivate(at time.Time) bool {
	if !a.Active {
		return false
	}
	a.Active = false
	a.UpdatedAt = a.nextTimestamp(at)
	return true
}

// Activate marks the account active. It reports whether the flag changed.
func (a *Account) Activate(at time.Time) bool {
	if a.Active {
		return false
	}
	a.Active = true
	a.UpdatedAt = a.nextTimestamp(at)
	return true
}

func (a *Account) apply(kind Kind, amount decimal.Decimal, at time.Time) *Transaction {
	occurredAt := a.nextTimestamp(at)
	if kind == KindDeposit {
		a.Balance = a.Balance.Add(amount)
	} else {
		a.Balance = a.Balance.Sub(amount)
	}
	a.Sequence++
	a.UpdatedAt = occurredAt
	return &Transaction{
		ID:           uuid.New(),
		AccountID:    a.ID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: a.Balance,
		Sequence:     a.Sequence,
		OccurredAt:   occurredAt,
	}
}

// nextTimestamp keeps timestamps non-decreasing even if the clock steps back.
func (a *Account) nextTimestamp(at time.Time) time.Time {
	at = at.UTC()
	if at.Before(a.UpdatedAt) {
		return a.UpdatedAt
	}
	return at
}
