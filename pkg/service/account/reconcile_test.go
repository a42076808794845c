package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	infrarepo "github.com/amirasaad/ledger/infra/repository"
	"github.com/amirasaad/ledger/pkg/lock"
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Reconcile must hold the account row lock while it reads the ledger so a
// writer in another process cannot commit between the two reads.
func TestReconcile_LocksAccountRowOnPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	svc := accountsvc.NewService(accountsvc.Deps{
		Uow:    infrarepo.NewUoW(db),
		Locker: lock.NewKeyed(),
		Logger: testutils.DiscardLogger(),
	})

	accountID, userID := uuid.New(), uuid.New()
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = \$1 ORDER BY "accounts"\."id" LIMIT \$2 FOR UPDATE`).
		WithArgs(accountID, 1).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "holder_name", "balance", "active", "sequence", "created_at", "updated_at"},
		).AddRow(accountID.String(), userID.String(), "Ana", "7.5", true, int64(2), now, now))
	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE account_id = \$1 ORDER BY occurred_at ASC, sequence ASC`).
		WithArgs(accountID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "account_id", "kind", "amount", "balance_after", "sequence", "occurred_at"},
		).
			AddRow(uuid.NewString(), accountID.String(), "DEPOSIT", "10", "10", int64(1), now).
			AddRow(uuid.NewString(), accountID.String(), "WITHDRAWAL", "2.5", "7.5", int64(2), now))
	mock.ExpectCommit()

	rec, err := svc.Reconcile(context.Background(), accountID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 2, rec.Entries)
	require.NoError(t, mock.ExpectationsWereMet())
}
