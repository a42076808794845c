// Package statement is the read side of the ledger: account statements built
// from the append-only transaction log.
package statement

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Statement is a consistent view of an account and its ledger.
type Statement struct {
	Account          *account.Account
	Transactions     []*account.Transaction
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	GeneratedAt      time.Time
}

// Reader serves statements. Concurrent identical requests share one store
// round trip.
type Reader struct {
	uow     repository.UnitOfWork
	logger  *slog.Logger
	timeout time.Duration
	group   singleflight.Group
	// flights advances each time a shared read starts. Callers only join a
	// read that has not started yet.
	flights atomic.Uint64
}

// NewReader creates a Reader. A non-positive timeout leaves the caller's
// context as the only deadline.
func NewReader(uow repository.UnitOfWork, logger *slog.Logger, timeout time.Duration) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		uow:     uow,
		logger:  logger.With("component", "statement-reader"),
		timeout: timeout,
	}
}

// Transactions returns the account's entries ordered by occurrence time,
// ties broken by insertion order. It does not check that the account exists:
// an unknown account has no entries.
//
// Concurrent callers may share one read, but a caller never joins a read that
// began before it arrived, so the result includes every entry committed
// before the call. Each caller gets its own copies of the entries.
func (r *Reader) Transactions(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error) {
	key := "tx:" + accountID.String() + ":" + strconv.FormatUint(r.flights.Load(), 10)
	v, err, shared := r.group.Do(key, func() (any, error) {
		r.flights.Add(1)
		ctx, cancel := r.withTimeout(ctx)
		defer cancel()

		var txs []*account.Transaction
		err := r.uow.ReadOnly(ctx, func(uow repository.UnitOfWork) error {
			repo, err := uow.TransactionRepository()
			if err != nil {
				return err
			}
			txs, err = repo.ListByAccount(ctx, accountID)
			return err
		})
		return txs, err
	})
	if err != nil {
		r.logger.Error("Transactions failed", "accountID", accountID, "error", err)
		return nil, domain.NewStorageError(err)
	}
	if shared {
		r.logger.Debug("Transactions shared an in-flight read", "accountID", accountID)
	}
	txs := v.([]*account.Transaction)
	out := make([]*account.Transaction, len(txs))
	for i, tx := range txs {
		entry := *tx
		out[i] = &entry
	}
	return out, nil
}

// Statement returns the account snapshot and its ordered entries, read in
// one read-only unit of work. An unknown account is a not-found error.
func (r *Reader) Statement(ctx context.Context, accountID uuid.UUID) (*Statement, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	st := &Statement{
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
	}
	err := r.uow.ReadOnly(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if st.Account, err = accounts.Get(ctx, accountID); err != nil {
			return err
		}
		st.Transactions, err = ledger.ListByAccount(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, domain.NewStorageError(err)
	}

	for _, tx := range st.Transactions {
		switch tx.Kind {
		case account.KindDeposit:
			st.TotalDeposits = st.TotalDeposits.Add(tx.Amount)
		case account.KindWithdrawal:
			st.TotalWithdrawals = st.TotalWithdrawals.Add(tx.Amount)
		}
	}
	st.GeneratedAt = time.Now().UTC()
	return st, nil
}

func (r *Reader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}
