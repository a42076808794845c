package repository

import (
	"context"
	"database/sql"

	"github.com/amirasaad/ledger/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
//
// Repositories handed out inside Do/ReadOnly are bound to the transaction
// session, so the balance write and the ledger append of one operation commit
// or roll back together.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a read-write transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.run(ctx, fn)
}

// ReadOnly runs fn in a read-only, repeatable-read transaction on Postgres.
// Other dialects get a plain transaction.
func (u *UoW) ReadOnly(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	var opts []*sql.TxOptions
	if u.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return u.run(ctx, fn, opts...)
}

func (u *UoW) run(ctx context.Context, fn func(uow repository.UnitOfWork) error, opts ...*sql.TxOptions) error {
	if u.tx != nil {
		// Already inside a transaction: join it.
		return fn(u)
	}
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	}, opts...)
	// Errors from fn are already classified; begin/commit failures are not.
	return MapGormErrorToDomain(err)
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// AccountRepository returns an account repository bound to the current session.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return NewAccountRepository(u.session()), nil
}

// TransactionRepository returns a ledger repository bound to the current session.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return NewTransactionRepository(u.session()), nil
}

// UserRepository returns a user repository bound to the current session.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return NewUserRepository(u.session()), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
