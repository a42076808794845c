package repository

import (
	"context"

	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/user"
	"github.com/google/uuid"
)

// AccountRepository defines the Account Store: keyed account records with
// point lookups and in-place updates.
type AccountRepository interface {
	// Get returns the account or an error matching domain.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	// GetForUpdate is Get plus an exclusive row lock held until the
	// surrounding unit of work ends. Stores without row locks behave like Get.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	Create(ctx context.Context, a *account.Account) error
	// Update persists balance, activity flag, sequence and update time.
	Update(ctx context.Context, a *account.Account) error
	List(ctx context.Context) ([]*account.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)
}

// TransactionRepository defines the append-only Transaction Ledger.
type TransactionRepository interface {
	Append(ctx context.Context, tx *account.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error)
	// ListByAccount returns the account's entries ordered by occurrence time,
	// ties broken by insertion order. No entries is an empty slice, not an error.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error)
}

// UserRepository defines the data access used by the user directory.
type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
}
