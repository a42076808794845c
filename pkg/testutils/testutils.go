// Package testutils holds database and HTTP helpers shared by package tests.
package testutils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/ledger/infra"
	infrarepo "github.com/amirasaad/ledger/infra/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSQLiteDB opens a private, migrated in-memory SQLite database that lives
// for the duration of the test. It is held on a single connection, so code
// under test must not open a second connection while a transaction is open.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.Migrate(db))
	return db
}

// NewSQLiteUoW returns a unit of work over a fresh SQLite database.
func NewSQLiteUoW(t testing.TB) (*gorm.DB, *infrarepo.UoW) {
	t.Helper()
	db := NewSQLiteDB(t)
	return db, infrarepo.NewUoW(db)
}

// NewPostgresDB starts a disposable Postgres container and returns a
// migrated connection to it. The test is skipped under -short or when no
// container runtime is reachable.
func NewPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Postgres integration test in short mode")
	}
	ctx := context.Background()

	pg, err := startPostgresContainer(ctx)
	if err != nil {
		t.Skipf("Postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pg) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	return db
}

func startPostgresContainer(ctx context.Context) (c *tcpostgres.PostgresContainer, err error) {
	// testcontainers panics when Docker is missing.
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, errDocker{r}
		}
	}()
	return tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
}

type errDocker struct{ v any }

func (e errDocker) Error() string { return fmt.Sprintf("docker unavailable: %v", e.v) }

// MakeRequest performs an in-process request against app. A non-empty body
// is sent as JSON; a non-empty token as a bearer credential.
func MakeRequest(t testing.TB, app *fiber.App, method, path, body, token string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
