package repository

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user record in the database.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	Names     string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Account represents an account record in the database.
type Account struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	HolderName string    `gorm:"size:255;not null"`
	Balance    Decimal   `gorm:"not null"`
	Active     bool      `gorm:"not null"`
	Sequence   int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// Transaction represents a persisted ledger entry. Rows are inserted once and
// never updated.
type Transaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_account_sequence,priority:1;index:idx_transactions_account_time,priority:1"`
	Kind         string    `gorm:"size:16;not null"`
	Amount       Decimal   `gorm:"not null"`
	BalanceAfter Decimal   `gorm:"not null"`
	Sequence     int64     `gorm:"not null;uniqueIndex:idx_transactions_account_sequence,priority:2;index:idx_transactions_account_time,priority:3"`
	OccurredAt   time.Time `gorm:"not null;index:idx_transactions_account_time,priority:2"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

// Models lists the tables managed by AutoMigrate.
func Models() []any {
	return []any{&User{}, &Account{}, &Transaction{}}
}
