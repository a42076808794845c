package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amirasaad/ledger/infra/initializer"
	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const usage = `Usage: ledger-cli <command> [arguments]

Commands:
  create-user <email> [names...]
  create-account <user_id> <holder_name...>
  deposit <account_id> <amount>
  withdraw <account_id> <amount>
  balance <account_id>
  statement <account_id>
  deactivate <account_id>
  activate <account_id>
  reconcile [account_id]`

func main() {
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) (err error) {
	if len(args) < 1 {
		fmt.Fprintln(out, usage)
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintln(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	if len(args)-1 < cmd.minArgs {
		return fmt.Errorf("usage: ledger-cli %s %s", args[0], cmd.args)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	// Keep stdout for command output.
	if cfg.Log != nil {
		cfg.Log.Level = "error"
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		err = errors.Join(err, deps.Close())
	}()

	return cmd.run(ctx, app.New(deps, cfg), args[1:], out)
}

var errUsage = errors.New("missing command")

func label(s string) string { return color.New(color.Bold).Sprint(s) }

func joinArgs(args []string) string { return strings.Join(args, " ") }
