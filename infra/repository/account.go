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
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository using the provided *gorm.DB.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Get implements repository.AccountRepository.
func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate implements repository.AccountRepository. SQLite ignores the
// locking clause; its single writer already serialises the transaction.
func (r *accountRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *accountRepository) get(db *gorm.DB, id uuid.UUID) (*account.Account, error) {
	var m Account
	if err := WrapError(func() error {
		return db.First(&m, "id = ?", id).Error
	}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}
	return mapAccountModelToDomain(&m)
}

// Create implements repository.AccountRepository.
func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	m := mapAccountDomainToModel(a)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

// Update implements repository.AccountRepository. Only the mutable columns
// are written; zero values such as active=false are included explicitly.
func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	result := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"balance":    NewDecimal(a.Balance),
			"active":     a.Active,
			"sequence":   a.Sequence,
			"updated_at": a.UpdatedAt,
		})
	if err := MapGormErrorToDomain(result.Error); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

// List implements repository.AccountRepository.
func (r *accountRepository) List(ctx context.Context) ([]*account.Account, error) {
	var ms []Account
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&ms).Error
	}); err != nil {
		return nil, err
	}
	return mapAccountModels(ms)
}

// ListByUser implements repository.AccountRepository.
func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var ms []Account
	if err := WrapError(func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at ASC, id ASC").
			Find(&ms).Error
	}); err != nil {
		return nil, err
	}
	return mapAccountModels(ms)
}

// --- Mappers ---

func mapAccountDomainToModel(a *account.Account) Account {
	return Account{
		ID:         a.ID,
		UserID:     a.UserID,
		HolderName: a.HolderName,
		Balance:    NewDecimal(a.Balance),
		Active:     a.Active,
		Sequence:   a.Sequence,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func mapAccountModelToDomain(m *Account) (*account.Account, error) {
	a, err := account.New().
		WithID(m.ID).
		WithUserID(m.UserID).
		WithHolderName(m.HolderName).
		WithBalance(m.Balance.Decimal).
		WithActive(m.Active).
		WithSequence(m.Sequence).
		WithCreatedAt(m.CreatedAt.UTC()).
		WithUpdatedAt(m.UpdatedAt.UTC()).
		Build()
	if err != nil {
		// A stored row that violates the invariants is a storage fault.
		return nil, domain.NewStorageError(fmt.Errorf("corrupt account row %s: %s", m.ID, err))
	}
	return a, nil
}

func mapAccountModels(ms []Account) ([]*account.Account, error) {
	result := make([]*account.Account, 0, len(ms))
	for i := range ms {
		a, err := mapAccountModelToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}
