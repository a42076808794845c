package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/ledger/infra/initializer"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/webapi"
	log "github.com/charmbracelet/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() (err error) {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	// Initialize all dependencies
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		err = errors.Join(err, deps.Close())
	}()
	logger := deps.Logger

	// Setup Fiber app with all routes and middleware
	fiberApp := webapi.SetupApp(app.New(deps, cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		addr := cfg.Server.Addr()
		logger.Info("Starting server",
			"env", cfg.Env,
			"address", addr,
			"scheme", cfg.Server.Scheme,
		)
		listenErr <- fiberApp.Listen(addr)
	}()

	select {
	case err = <-listenErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return fiberApp.ShutdownWithContext(shutdownCtx)
}
