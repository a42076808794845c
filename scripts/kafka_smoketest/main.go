// Command kafka_smoketest emits one ledger event of each type through the
// Kafka event bus and waits until every one is delivered back to a handler.
// Usage: KAFKA_BROKERS=localhost:9092 go run ./scripts/kafka_smoketest
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	infra_eventbus "github.com/amirasaad/ledger/infra/eventbus"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "smoke test failed:", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if brokers == "" {
		brokers = "localhost:9092"
	}
	cfg := infra_eventbus.DefaultKafkaEventBusConfig()
	cfg.GroupID = "ledger-smoketest-" + uuid.NewString()[:8]
	cfg.TopicPrefix = "ledger.smoketest"

	bus, err := infra_eventbus.NewWithKafka(brokers, logger, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	accountID := uuid.New()
	now := time.Now().UTC()
	sample := []events.Event{
		&events.AccountCreated{AccountID: accountID, UserID: uuid.New(), HolderName: "Smoke", CreatedAt: now},
		events.NewTransactionRecorded(account.NewTransactionFromData(
			uuid.New(), accountID, account.KindDeposit,
			decimal.NewFromInt(1), decimal.NewFromInt(1), 1, now,
		)),
		&events.AccountStatusChanged{AccountID: accountID, Active: false, ChangedAt: now},
	}

	var wg sync.WaitGroup
	for _, e := range sample {
		wg.Add(1)
		var once sync.Once
		bus.Register(e.Type(), func(_ context.Context, got events.Event) error {
			logger.Info("delivered", "type", got.Type())
			once.Do(wg.Done)
			return nil
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	for _, e := range sample {
		if err := bus.Emit(ctx, e); err != nil {
			return fmt.Errorf("emit %s: %w", e.Type(), err)
		}
		logger.Info("produced", "type", e.Type())
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("all events delivered")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
