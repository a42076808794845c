package main

import (
	"context"
	"fmt"
	"io"

	"github.com/amirasaad/ledger/pkg/app"
	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/domain/account"
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type command struct {
	args    string
	minArgs int
	run     func(ctx context.Context, a *app.App, args []string, out io.Writer) error
}

var commands = map[string]command{
	"create-user":    {"<email> [names...]", 1, createUser},
	"create-account": {"<user_id> <holder_name...>", 2, createAccount},
	"deposit":        {"<account_id> <amount>", 2, deposit},
	"withdraw":       {"<account_id> <amount>", 2, withdraw},
	"balance":        {"<account_id>", 1, balance},
	"statement":      {"<account_id>", 1, printStatement},
	"deactivate":     {"<account_id>", 1, deactivate},
	"activate":       {"<account_id>", 1, activate},
	"reconcile":      {"[account_id]", 0, reconcile},
}

func parseID(s, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(what + " ID must be a valid UUID")
	}
	return id, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.NewValidationError("amount must be a decimal number")
	}
	return amount, nil
}

func createUser(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	u, err := a.UserService.CreateUser(ctx, args[0], joinArgs(args[1:]))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", color.GreenString("User created:"), u.ID)
	return nil
}

func createAccount(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	userID, err := parseID(args[0], "user")
	if err != nil {
		return err
	}
	acc, err := a.AccountService.CreateAccount(ctx, joinArgs(args[1:]), userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", color.GreenString("Account created:"), acc.ID)
	return nil
}

type amountFunc func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*account.Account, error)

func mutate(op amountFunc, verb string) func(context.Context, *app.App, []string, io.Writer) error {
	return func(ctx context.Context, a *app.App, args []string, out io.Writer) error {
		id, err := parseID(args[0], "account")
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		acc, err := op(ctx, id, amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s %s. New balance: %s\n",
			color.GreenString(verb), amount, acc.ID, label(acc.Balance.String()))
		return nil
	}
}

func deposit(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	return mutate(a.AccountService.Deposit, "Deposited")(ctx, a, args, out)
}

func withdraw(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	return mutate(a.AccountService.Withdraw, "Withdrew")(ctx, a, args, out)
}

func balance(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := parseID(args[0], "account")
	if err != nil {
		return err
	}
	b, err := a.AccountService.GetBalance(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Account %s balance: %s\n", id, label(b.String()))
	return nil
}

func printStatement(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	id, err := parseID(args[0], "account")
	if err != nil {
		return err
	}
	st, err := a.StatementReader.Statement(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s (%s)\n", label("Statement for"), st.Account.ID, st.Account.HolderName)
	for _, tx := range st.Transactions {
		kind := color.GreenString("%-10s", tx.Kind)
		if tx.Kind == account.KindWithdrawal {
			kind = color.YellowString("%-10s", tx.Kind)
		}
		fmt.Fprintf(out, "%4d  %s  %s  %12s  %12s\n",
			tx.Sequence, tx.OccurredAt.Format("2006-01-02 15:04:05"), kind, tx.Amount, tx.BalanceAfter)
	}
	fmt.Fprintf(out, "Deposits: %s  Withdrawals: %s  Balance: %s\n",
		st.TotalDeposits, st.TotalWithdrawals, label(st.Account.Balance.String()))
	return nil
}

func deactivate(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	return setStatus(ctx, a.AccountService.Deactivate, args, out)
}

func activate(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	return setStatus(ctx, a.AccountService.Activate, args, out)
}

func setStatus(
	ctx context.Context,
	op func(context.Context, uuid.UUID) (*account.Account, error),
	args []string,
	out io.Writer,
) error {
	id, err := parseID(args[0], "account")
	if err != nil {
		return err
	}
	acc, err := op(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Account %s active: %t\n", acc.ID, acc.Active)
	return nil
}

func reconcile(ctx context.Context, a *app.App, args []string, out io.Writer) error {
	var recs []*accountsvc.Reconciliation
	if len(args) > 0 {
		id, err := parseID(args[0], "account")
		if err != nil {
			return err
		}
		rec, err := a.AccountService.Reconcile(ctx, id)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
	} else {
		var err error
		if recs, err = a.AccountService.ReconcileAll(ctx); err != nil {
			return err
		}
	}

	inconsistent := 0
	for _, rec := range recs {
		status := color.GreenString("OK")
		if !rec.Consistent {
			status = color.RedString("MISMATCH")
			inconsistent++
		}
		fmt.Fprintf(out, "%s  %s  balance=%s ledger=%s entries=%d sequence=%d\n",
			status, rec.AccountID, rec.Balance, rec.LedgerSum, rec.Entries, rec.Sequence)
	}
	if inconsistent > 0 {
		return fmt.Errorf("%d of %d accounts inconsistent", inconsistent, len(recs))
	}
	return nil
}
