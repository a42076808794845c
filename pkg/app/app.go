package app

import (
	"errors"
	"log/slog"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/eventbus"
	"github.com/amirasaad/ledger/pkg/repository"
	"github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/pkg/service/statement"
	"github.com/amirasaad/ledger/pkg/service/user"
)

// Deps holds the process-wide infrastructure the services are built from.
type Deps struct {
	Uow      repository.UnitOfWork
	Locker   account.Locker
	EventBus eventbus.Bus
	Logger   *slog.Logger
	// Closers release infrastructure in reverse order of acquisition.
	Closers []func() error
}

// Close runs every closer and joins their errors. A nil Deps has nothing
// to close.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for i := len(d.Closers) - 1; i >= 0; i-- {
		errs = append(errs, d.Closers[i]())
	}
	return errors.Join(errs...)
}

type App struct {
	Deps            *Deps
	Config          *config.App
	UserService     *user.Service
	AccountService  *account.Service
	StatementReader *statement.Reader
}

func New(deps *Deps, cfg *config.App) *App {
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	timeout := account.DefaultOperationTimeout
	if cfg != nil && cfg.Ledger != nil {
		timeout = cfg.Ledger.OperationTimeout
	}

	app.UserService = user.New(deps.Uow, deps.Logger)
	app.AccountService = account.NewService(account.Deps{
		Uow:              deps.Uow,
		Users:            app.UserService,
		Locker:           deps.Locker,
		Bus:              deps.EventBus,
		Logger:           deps.Logger,
		OperationTimeout: timeout,
	})
	app.StatementReader = statement.NewReader(deps.Uow, deps.Logger, timeout)
	return app
}
