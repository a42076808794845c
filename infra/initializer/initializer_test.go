package initializer

import (
	"errors"
	"testing"

	infra_eventbus "github.com/amirasaad/ledger/infra/eventbus"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInitEventBus_DefaultsToMemory(t *testing.T) {
	bus, closer, err := initEventBus(&config.App{}, testutils.DiscardLogger())
	require.NoError(t, err)
	assert.Nil(t, closer)
	require.IsType(t, &infra_eventbus.MemoryEventBus{}, bus)
}

func TestInitEventBus_RedisRequiresURL(t *testing.T) {
	_, _, err := initEventBus(&config.App{
		EventBus: &config.EventBus{Driver: "redis"},
		Redis:    &config.Redis{},
	}, testutils.DiscardLogger())
	require.Error(t, err)
}

func TestInitEventBus_UnreachableRedisFallsBackToMemory(t *testing.T) {
	bus, _, err := initEventBus(&config.App{
		EventBus: &config.EventBus{Driver: "redis"},
		Redis:    &config.Redis{URL: "redis://127.0.0.1:1/0"},
	}, testutils.DiscardLogger())
	require.NoError(t, err)
	require.IsType(t, &infra_eventbus.MemoryEventBus{}, bus)
}

func TestInitEventBus_KafkaRequiresBrokers(t *testing.T) {
	_, _, err := initEventBus(&config.App{
		EventBus: &config.EventBus{Driver: "kafka"},
		Kafka:    &config.Kafka{},
	}, testutils.DiscardLogger())
	require.Error(t, err)
}

func TestInitEventBus_UnreachableKafkaFallsBackToMemory(t *testing.T) {
	bus, _, err := initEventBus(&config.App{
		EventBus: &config.EventBus{Driver: "kafka"},
		Kafka:    &config.Kafka{Brokers: "127.0.0.1:1"},
	}, testutils.DiscardLogger())
	require.NoError(t, err)
	require.IsType(t, &infra_eventbus.MemoryEventBus{}, bus)
}

func TestInitEventBus_UnknownDriver(t *testing.T) {
	_, _, err := initEventBus(&config.App{
		EventBus: &config.EventBus{Driver: "smoke-signals"},
	}, testutils.DiscardLogger())
	require.Error(t, err)
}

func TestInitializeDependencies_SQLite(t *testing.T) {
	cfg := &config.App{
		Env: "test",
		Log: &config.Log{Level: "error", Format: "text"},
		DB:  &config.DB{Url: "sqlite://" + t.TempDir() + "/ledger.db"},
	}
	deps, err := InitializeDependencies(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = deps.Close() })

	assert.NotNil(t, deps.Uow)
	assert.NotNil(t, deps.Locker)
	assert.IsType(t, &infra_eventbus.MemoryEventBus{}, deps.EventBus)
}

func TestInitializeDependencies_BadURL(t *testing.T) {
	deps, err := InitializeDependencies(&config.App{
		Log: &config.Log{Level: "error"},
		DB:  &config.DB{Url: "mysql://nope"},
	})
	require.Error(t, err)
	assert.Nil(t, deps)
}

// captureDB records the connection opened during initialization.
func captureDB(t *testing.T) **gorm.DB {
	t.Helper()
	var opened *gorm.DB
	orig := newDBConnection
	newDBConnection = func(cnf *config.DB, appEnv string) (*gorm.DB, error) {
		db, err := orig(cnf, appEnv)
		opened = db
		return db, err
	}
	t.Cleanup(func() { newDBConnection = orig })
	return &opened
}

func requireClosed(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NotNil(t, db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")
}

func TestInitializeDependencies_MigrationFailureClosesDB(t *testing.T) {
	opened := captureDB(t)
	orig := migrate
	migrate = func(*gorm.DB) error { return errors.New("migration exploded") }
	t.Cleanup(func() { migrate = orig })

	deps, err := InitializeDependencies(&config.App{
		Log: &config.Log{Level: "error"},
		DB:  &config.DB{Url: "sqlite://" + t.TempDir() + "/ledger.db"},
	})
	require.ErrorContains(t, err, "migration exploded")
	assert.Nil(t, deps)
	requireClosed(t, *opened)
}

func TestInitializeDependencies_BadBusDriverClosesDB(t *testing.T) {
	opened := captureDB(t)

	deps, err := InitializeDependencies(&config.App{
		Log:      &config.Log{Level: "error"},
		DB:       &config.DB{Url: "sqlite://" + t.TempDir() + "/ledger.db"},
		EventBus: &config.EventBus{Driver: "smoke-signals"},
	})
	require.ErrorContains(t, err, "unknown driver")
	assert.Nil(t, deps)
	requireClosed(t, *opened)
}

func TestInitializeDependencies_RedisWithoutURLClosesDB(t *testing.T) {
	opened := captureDB(t)

	deps, err := InitializeDependencies(&config.App{
		Log:      &config.Log{Level: "error"},
		DB:       &config.DB{Url: "sqlite://" + t.TempDir() + "/ledger.db"},
		EventBus: &config.EventBus{Driver: "redis"},
	})
	require.ErrorContains(t, err, "REDIS_URL")
	assert.Nil(t, deps)
	requireClosed(t, *opened)
}
