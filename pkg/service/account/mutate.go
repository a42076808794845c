package account

import (
	"context"
	"fmt"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deposit credits amount to the account and records a DEPOSIT entry. It
// returns the account as committed.
func (s *Service) Deposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*account.Account, error) {
	return s.record(ctx, id, account.KindDeposit, amount)
}

// Withdraw debits amount from the account and records a WITHDRAWAL entry. A
// withdrawal larger than the balance fails with account.ErrInsufficientFunds
// and changes nothing.
func (s *Service) Withdraw(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*account.Account, error) {
	return s.record(ctx, id, account.KindWithdrawal, amount)
}

func (s *Service) record(
	ctx context.Context,
	id uuid.UUID,
	kind account.Kind,
	amount decimal.Decimal,
) (*account.Account, error) {
	logger := s.logger.With("op", kind.String(), "accountID", id, "amount", amount.String())
	if err := account.ValidateAmount(amount); err != nil {
		logger.Warn("mutation rejected", "error", err)
		return nil, err
	}
	logger.Info("mutation started")

	var (
		acc *account.Account
		tx  *account.Transaction
	)
	err := s.guarded(ctx, id, func(ctx context.Context, uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		acc, err = accounts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		switch kind {
		case account.KindDeposit:
			tx, err = acc.Deposit(amount, s.now())
		default:
			tx, err = acc.Withdraw(amount, s.now())
		}
		if err != nil {
			return err
		}

		if err = accounts.Update(ctx, acc); err != nil {
			return err
		}
		return ledger.Append(ctx, tx)
	})
	if err != nil {
		s.logFailure(logger, "mutation failed", err)
		return nil, err
	}

	logger.Info("mutation committed",
		"transactionID", tx.ID,
		"balance", acc.Balance.String(),
		"sequence", tx.Sequence,
	)
	s.emit(ctx, events.NewTransactionRecorded(tx))
	return acc, nil
}

// Deactivate marks the account inactive. Deactivating an inactive account is
// a no-op.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.setActive(ctx, id, false)
}

// Activate marks the account active again. Activating an active account is
// a no-op.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id uuid.UUID, active bool) (*account.Account, error) {
	logger := s.logger.With("op", "SetActive", "accountID", id, "active", active)

	var (
		acc     *account.Account
		changed bool
	)
	err := s.guarded(ctx, id, func(ctx context.Context, uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acc, err = accounts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if active {
			changed = acc.Activate(s.now())
		} else {
			changed = acc.Deactivate(s.now())
		}
		if !changed {
			return nil
		}
		return accounts.Update(ctx, acc)
	})
	if err != nil {
		s.logFailure(logger, "status change failed", err)
		return nil, err
	}
	if !changed {
		logger.Info("status unchanged")
		return acc, nil
	}

	logger.Info("status changed")
	s.emit(ctx, &events.AccountStatusChanged{
		AccountID: acc.ID,
		Active:    acc.Active,
		ChangedAt: acc.UpdatedAt,
	})
	return acc, nil
}

// guarded runs fn for one account inside a unit of work while holding the
// account's guard. The operation deadline covers the lock wait as well as
// every store call. Errors leave this function classified.
func (s *Service) guarded(
	ctx context.Context,
	id uuid.UUID,
	fn func(ctx context.Context, uow repository.UnitOfWork) error,
) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	unlock, err := s.locker.Lock(ctx, id.String())
	if err != nil {
		return domain.NewStorageError(fmt.Errorf("acquire guard for account %s: %w", id, err))
	}
	defer unlock()

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		return fn(ctx, uow)
	})
	return domain.NewStorageError(err)
}
