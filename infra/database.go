package infra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirasaad/ledger/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the database named by cnf.Url. The scheme picks the
// dialect: postgres:// and postgresql:// use Postgres, sqlite://<path> uses
// SQLite (sqlite://:memory: for a throwaway database).
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	dialector, sqliteDB, err := dialectorFor(cnf.Url)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Warn
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	if sqliteDB {
		// One connection: SQLite has a single writer, and an in-memory
		// database lives only as long as its connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return connection, nil
	}
	sqlDB.SetMaxOpenConns(cnf.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cnf.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cnf.ConnMaxLife)

	return connection, nil
}

func dialectorFor(url string) (gorm.Dialector, bool, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), false, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return nil, false, fmt.Errorf("database url %q: missing sqlite path", url)
		}
		if path == ":memory:" {
			return sqlite.Open("file::memory:?cache=shared"), true, nil
		}
		if !strings.Contains(path, "?") {
			path += "?_busy_timeout=5000"
		}
		return sqlite.Open(path), true, nil
	default:
		return nil, false, fmt.Errorf("database url: unsupported scheme in %q", redactURL(url))
	}
}

func redactURL(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i+3] + "…"
	}
	return "…"
}
