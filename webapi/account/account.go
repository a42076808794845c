package account

import (
	"context"

	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/domain/account"
	"github.com/amirasaad/ledger/pkg/middleware"
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	"github.com/amirasaad/ledger/pkg/service/statement"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routes registers HTTP routes for account operations.
//
// Routes:
//   - GET    /accounts                     : List every account.
//   - GET    /accounts/:id                 : Retrieve an account.
//   - GET    /accounts/:id/balance         : Retrieve the balance of an account.
//   - POST   /accounts/:id/deposit         : Deposit funds into an account.
//   - POST   /accounts/:id/withdraw        : Withdraw funds from an account.
//   - POST   /accounts/:id/deactivate      : Mark an account inactive.
//   - POST   /accounts/:id/activate        : Mark an account active.
//   - GET    /accounts/:id/transactions    : Statement of an account.
//   - GET    /accounts/:id/reconciliation  : Audit balance against ledger.
func Routes(
	app *fiber.App,
	accountSvc *accountsvc.Service,
	reader *statement.Reader,
	cfg *config.App,
) {
	var jwt *config.Jwt
	if cfg.Auth != nil {
		jwt = cfg.Auth.Jwt
	}
	accounts := app.Group("/accounts", middleware.JwtProtected(jwt))
	accounts.Get("/", ListAccounts(accountSvc))
	accounts.Get("/:id", GetAccount(accountSvc))
	accounts.Get("/:id/balance", GetBalance(accountSvc))
	accounts.Post("/:id/deposit", Deposit(accountSvc))
	accounts.Post("/:id/withdraw", Withdraw(accountSvc))
	accounts.Post("/:id/deactivate", Deactivate(accountSvc))
	accounts.Post("/:id/activate", Activate(accountSvc))
	accounts.Get("/:id/transactions", GetStatement(reader))
	accounts.Get("/:id/reconciliation", Reconcile(accountSvc))
}

// ListAccounts returns a Fiber handler listing every account.
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} common.Response
// @Failure 500 {object} common.ProblemDetails
// @Router /accounts [get]
func ListAccounts(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accs, err := accountSvc.ListAccounts(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", ToAccountDTOs(accs))
	}
}

// GetAccount returns a Fiber handler retrieving one account.
// @Summary Get account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id} [get]
func GetAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		acc, err := accountSvc.GetAccount(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", ToAccountDTO(acc))
	}
}

// GetBalance returns a Fiber handler for the balance of an account.
// @Summary Get account balance
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id}/balance [get]
func GetBalance(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		balance, err := accountSvc.GetBalance(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", BalanceDTO{
			AccountID: id,
			Balance:   balance,
		})
	}
}

// Deposit returns a Fiber handler crediting an account.
// @Summary Deposit funds into an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body AmountRequest true "Deposit details"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /accounts/{id}/deposit [post]
func Deposit(accountSvc *accountsvc.Service) fiber.Handler {
	return mutation(accountSvc.Deposit, "Deposit")
}

// Withdraw returns a Fiber handler debiting an account. Overdrafts are
// rejected with 422.
// @Summary Withdraw funds from an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body AmountRequest true "Withdrawal details"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /accounts/{id}/withdraw [post]
func Withdraw(accountSvc *accountsvc.Service) fiber.Handler {
	return mutation(accountSvc.Withdraw, "Withdrawal")
}

type amountOp func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*account.Account, error)

func mutation(op amountOp, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		input, err := common.BindAndValidate[AmountRequest](c)
		if input == nil {
			return err // error response already written
		}
		acc, err := op(c.UserContext(), id, input.Amount)
		if err != nil {
			log.Warnf("%s failed for account %s: %v", name, id, err)
			return common.ProblemDetailsJSON(c, name+" failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, name+" successful", MutationDTO{
			Account: ToAccountDTO(acc),
		})
	}
}

// Deactivate returns a Fiber handler marking an account inactive.
// @Summary Deactivate account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id}/deactivate [post]
func Deactivate(accountSvc *accountsvc.Service) fiber.Handler {
	return statusChange(accountSvc.Deactivate, "Account deactivated")
}

// Activate returns a Fiber handler marking an account active.
// @Summary Activate account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id}/activate [post]
func Activate(accountSvc *accountsvc.Service) fiber.Handler {
	return statusChange(accountSvc.Activate, "Account activated")
}

type statusOp func(ctx context.Context, id uuid.UUID) (*account.Account, error)

func statusChange(op statusOp, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		acc, err := op(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to change account status", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, message, ToAccountDTO(acc))
	}
}

// GetStatement returns a Fiber handler for an account statement: the account
// and its transactions in ledger order.
// @Summary Account statement
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id}/transactions [get]
func GetStatement(reader *statement.Reader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		st, err := reader.Statement(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get statement", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Statement fetched", ToStatementDTO(st))
	}
}

// Reconcile returns a Fiber handler auditing one account.
// @Summary Reconcile account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /accounts/{id}/reconciliation [get]
func Reconcile(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		rec, err := accountSvc.Reconcile(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Reconciliation failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Reconciliation complete", rec)
	}
}
