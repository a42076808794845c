package initializer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/ledger/infra"
	infra_eventbus "github.com/amirasaad/ledger/infra/eventbus"
	infra_repository "github.com/amirasaad/ledger/infra/repository"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/eventbus"
	"github.com/amirasaad/ledger/pkg/lock"
)

var (
	newDBConnection = infra.NewDBConnection
	migrate         = infra.Migrate
)

// InitializeDependencies opens the database, migrates it and builds the
// shared infrastructure. Callers own the returned Deps and must Close it.
// On error everything acquired so far is released.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	deps := &app.Deps{}
	if err := initialize(cfg, deps); err != nil {
		if cerr := deps.Close(); cerr != nil {
			deps.Logger.Warn("Failed to release partial dependencies", "error", cerr)
		}
		return nil, err
	}
	return deps, nil
}

func initialize(cfg *config.App, deps *app.Deps) error {
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	// Initialize database
	db, err := newDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	deps.Closers = append(deps.Closers, sqlDB.Close)

	if err = migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		return err
	}
	logger.Info("Database ready", "dialect", db.Dialector.Name())

	// Initialize unit of work
	deps.Uow = infra_repository.NewUoW(db)
	deps.Locker = lock.NewKeyed()

	// Initialize event bus
	bus, closer, err := initEventBus(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize event bus", "error", err)
		return err
	}
	deps.EventBus = bus
	if closer != nil {
		deps.Closers = append(deps.Closers, closer)
	}
	return nil
}

// initEventBus builds the configured bus. A broker that cannot be reached at
// start-up degrades to the in-memory bus: events are informational and the
// ledger must stay available.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, func() error, error) {
	driver := "memory"
	if cfg.EventBus != nil && cfg.EventBus.Driver != "" {
		driver = strings.ToLower(cfg.EventBus.Driver)
	}

	switch driver {
	case "memory":
		return infra_eventbus.NewWithMemory(logger), nil, nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, nil, fmt.Errorf("event bus: redis driver requires REDIS_URL")
		}
		bus, err := infra_eventbus.NewWithRedis(cfg.Redis.URL, logger, &infra_eventbus.RedisEventBusConfig{
			StreamPrefix: cfg.Redis.StreamPrefix,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Warn("Redis event bus unavailable, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil, nil
		}
		return bus, bus.Close, nil
	case "kafka":
		if cfg.Kafka == nil || cfg.Kafka.Brokers == "" {
			return nil, nil, fmt.Errorf("event bus: kafka driver requires KAFKA_BROKERS")
		}
		bus, err := infra_eventbus.NewWithKafka(cfg.Kafka.Brokers, logger, &infra_eventbus.KafkaEventBusConfig{
			GroupID:     cfg.Kafka.GroupID,
			TopicPrefix: cfg.Kafka.TopicPrefix,
		})
		if err != nil {
			logger.Warn("Kafka event bus unavailable, falling back to memory", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil, nil
		}
		return bus, bus.Close, nil
	default:
		return nil, nil, fmt.Errorf("event bus: unknown driver %q", driver)
	}
}
