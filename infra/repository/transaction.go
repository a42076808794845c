package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTransactionNotFound is returned when a ledger entry cannot be found.
var ErrTransactionNotFound = domain.NewNotFoundError("transaction not found")

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates an append-only ledger repository using the provided *gorm.DB.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

// Append implements repository.TransactionRepository.
func (r *transactionRepository) Append(ctx context.Context, tx *account.Transaction) error {
	m := mapTransactionDomainToModel(tx)
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// (account_id, sequence) collided: another writer got there first.
		return domain.NewStorageError(fmt.Errorf("ledger entry %d for account %s already recorded", tx.Sequence, tx.AccountID))
	}
	return err
}

// Get implements repository.TransactionRepository.
func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error) {
	var m Transaction
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return mapTransactionModelToDomain(&m), nil
}

// ListByAccount implements repository.TransactionRepository.
func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error) {
	var ms []Transaction
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("account_id = ?", accountID).
			Order("occurred_at ASC, sequence ASC").
			Find(&ms).Error
	}); err != nil {
		return nil, err
	}
	result := make([]*account.Transaction, 0, len(ms))
	for i := range ms {
		result = append(result, mapTransactionModelToDomain(&ms[i]))
	}
	return result, nil
}

// --- Mappers ---

func mapTransactionDomainToModel(tx *account.Transaction) Transaction {
	return Transaction{
		ID:           tx.ID,
		AccountID:    tx.AccountID,
		Kind:         tx.Kind.String(),
		Amount:       NewDecimal(tx.Amount),
		BalanceAfter: NewDecimal(tx.BalanceAfter),
		Sequence:     tx.Sequence,
		OccurredAt:   tx.OccurredAt,
	}
}

func mapTransactionModelToDomain(m *Transaction) *account.Transaction {
	return account.NewTransactionFromData(
		m.ID,
		m.AccountID,
		account.Kind(m.Kind),
		m.Amount.Decimal,
		m.BalanceAfter.Decimal,
		m.Sequence,
		m.OccurredAt.UTC(),
	)
}
