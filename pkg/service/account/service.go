// Package account provides the Account Service: account creation and lookup,
// and the deposit and withdrawal mutations that keep an account's balance and
// its ledger in step.
//
// Every mutation runs read-validate-mutate-record as one indivisible step per
// account: a per-account guard serialises callers in this process, and the
// unit of work wraps the balance write and the ledger append in a single
// database transaction that also row-locks the account.
package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/domain/user"
	"github.com/amirasaad/ledger/pkg/eventbus"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultOperationTimeout bounds lock waits and store calls when Deps leaves
// OperationTimeout unset.
const DefaultOperationTimeout = 10 * time.Second

// UserDirectory resolves account owners.
type UserDirectory interface {
	FindUser(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Locker hands out exclusive per-key guards.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Deps groups the collaborators of Service.
type Deps struct {
	Uow              repository.UnitOfWork
	Users            UserDirectory
	Locker           Locker
	Bus              eventbus.Bus // optional
	Logger           *slog.Logger
	OperationTimeout time.Duration
	Now              func() time.Time // defaults to time.Now
}

// Service provides business logic for account operations including creation,
// deposits, withdrawals and balance inquiries.
type Service struct {
	uow     repository.UnitOfWork
	users   UserDirectory
	locker  Locker
	bus     eventbus.Bus
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := deps.OperationTimeout
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		uow:     deps.Uow,
		users:   deps.Users,
		locker:  deps.Locker,
		bus:     deps.Bus,
		logger:  logger.With("component", "account-service"),
		timeout: timeout,
		now:     now,
	}
}

// CreateAccount opens a new active account with a zero balance for an
// existing user.
func (s *Service) CreateAccount(
	ctx context.Context,
	holderName string,
	ownerUserID uuid.UUID,
) (*account.Account, error) {
	logger := s.logger.With("op", "CreateAccount", "userID", ownerUserID)
	acc, err := account.New().
		WithHolderName(holderName).
		WithUserID(ownerUserID).
		Build()
	if err != nil {
		logger.Warn("CreateAccount rejected", "error", err)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err = s.users.FindUser(ctx, ownerUserID); err != nil {
		s.logFailure(logger, "CreateAccount failed: owner lookup", err)
		return nil, domain.NewStorageError(err)
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, acc)
	})
	if err != nil {
		s.logFailure(logger, "CreateAccount failed", err)
		return nil, domain.NewStorageError(err)
	}
	logger.Info("CreateAccount successful", "accountID", acc.ID)

	s.emit(ctx, &events.AccountCreated{
		AccountID:  acc.ID,
		UserID:     acc.UserID,
		HolderName: acc.HolderName,
		CreatedAt:  acc.CreatedAt,
	})
	return acc, nil
}

// GetAccount returns the current state of the account.
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (acc *account.Account, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.uow.ReadOnly(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acc, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, domain.NewStorageError(err)
	}
	return acc, nil
}

// GetBalance returns the account's current balance.
func (s *Service) GetBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	acc, err := s.GetAccount(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

// ListAccounts returns every account ordered by creation time.
func (s *Service) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	return s.list(ctx, func(repo repository.AccountRepository) ([]*account.Account, error) {
		return repo.List(ctx)
	})
}

// ListAccountsByUser returns the accounts owned by userID. An unknown user
// simply has no accounts.
func (s *Service) ListAccountsByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	return s.list(ctx, func(repo repository.AccountRepository) ([]*account.Account, error) {
		return repo.ListByUser(ctx, userID)
	})
}

func (s *Service) list(
	ctx context.Context,
	query func(repository.AccountRepository) ([]*account.Account, error),
) (accs []*account.Account, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.uow.ReadOnly(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		accs, err = query(repo)
		return err
	})
	if err != nil {
		return nil, domain.NewStorageError(err)
	}
	return accs, nil
}

// emit publishes e after commit. Delivery is best effort: the ledger is
// already durable, so a failure is logged and never returned. The caller's
// cancellation does not reach the bus once the change has committed.
func (s *Service) emit(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Emit(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Warn("event emit failed", "event", e.Type(), "error", err)
	}
}

// logFailure logs storage failures at ERROR and rejections at WARN.
func (s *Service) logFailure(logger *slog.Logger, msg string, err error) {
	if errors.Is(err, domain.ErrStorage) || domain.KindOf(err) == nil {
		logger.Error(msg, "error", err)
		return
	}
	logger.Warn(msg, "error", err)
}
