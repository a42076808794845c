package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first .env file found among envFilePath (searched upwards
// from the working directory), falling back to ./.env, then processes the
// environment into an App. Variables already set in the environment win over
// file values.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()

	for _, path := range envFilePath {
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path)
			continue
		}
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		logger.Debug("Loaded environment file", "path", foundPath)
		return loadFromEnv(logger)
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using process environment")
	}
	return loadFromEnv(logger)
}

func loadFromEnv(logger *slog.Logger) (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger.Debug("App config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"event_bus", cfg.EventBus.Driver,
		"jwt_enabled", cfg.Auth.Jwt.Secret != "",
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"operation_timeout", cfg.Ledger.OperationTimeout,
	)
	return &cfg, nil
}

func (cfg *App) validate() error {
	switch strings.ToLower(cfg.EventBus.Driver) {
	case "memory":
	case "redis":
		if cfg.Redis.URL == "" {
			return fmt.Errorf("config: EVENT_BUS_DRIVER=redis requires REDIS_URL")
		}
	case "kafka":
		if cfg.Kafka.Brokers == "" {
			return fmt.Errorf("config: EVENT_BUS_DRIVER=kafka requires KAFKA_BROKERS")
		}
	default:
		return fmt.Errorf("config: unknown EVENT_BUS_DRIVER %q", cfg.EventBus.Driver)
	}
	if cfg.Ledger.OperationTimeout <= 0 {
		return fmt.Errorf("config: LEDGER_OPERATION_TIMEOUT must be positive")
	}
	return nil
}

// maskValue hides everything but the edges of a secret, including the
// password inside a connection URL.
func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
