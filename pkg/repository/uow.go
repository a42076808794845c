package repository

import (
	"context"
)

// UnitOfWork defines the contract for transactional work and repository access.
//
// Repositories obtained from the UnitOfWork handed to fn share one database
// transaction, so everything fn writes commits together or not at all.
type UnitOfWork interface {
	// Do executes fn within a read-write transaction boundary.
	// If fn returns an error, the transaction is rolled back and the error returned.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// ReadOnly executes fn within a read-only transaction that sees a single
	// consistent snapshot where the store supports it.
	ReadOnly(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	UserRepository() (UserRepository, error)
}
