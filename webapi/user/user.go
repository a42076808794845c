package user

import (
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/middleware"
	accountsvc "github.com/amirasaad/ledger/pkg/service/account"
	usersvc "github.com/amirasaad/ledger/pkg/service/user"
	accountweb "github.com/amirasaad/ledger/webapi/account"
	"github.com/amirasaad/ledger/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Routes registers HTTP routes for users and the accounts they own.
func Routes(
	app *fiber.App,
	userSvc *usersvc.Service,
	accountSvc *accountsvc.Service,
	cfg *config.App,
) {
	var jwt *config.Jwt
	if cfg.Auth != nil {
		jwt = cfg.Auth.Jwt
	}
	protected := middleware.JwtProtected(jwt)

	app.Post("/users", CreateUser(userSvc))
	app.Get("/users/:id", protected, GetUser(userSvc))
	app.Get("/users/:id/accounts", protected, ListUserAccounts(accountSvc))
	app.Post("/users/:id/accounts", protected, CreateAccount(accountSvc, middleware.Enabled(jwt)))
}

// CreateUser registers a user.
// @Summary Create a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body NewUser true "User creation data"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Router /users [post]
func CreateUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[NewUser](c)
		if input == nil {
			return err // error response already written
		}
		u, err := userSvc.CreateUser(c.UserContext(), input.Email, input.Names)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't create user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Created user", u)
	}
}

// GetUser returns a Fiber handler for retrieving a user by ID.
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /users/{id} [get]
func GetUser(userSvc *usersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		u, err := userSvc.GetUser(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get user", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "User found", u)
	}
}

// ListUserAccounts returns a Fiber handler listing the accounts a user owns.
// @Summary List a user's accounts
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /users/{id}/accounts [get]
func ListUserAccounts(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		accs, err := accountSvc.ListAccountsByUser(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", accountweb.ToAccountDTOs(accs))
	}
}

// CreateAccount opens an account for the user in the path. With token
// verification enabled, the token subject must be that user.
// @Summary Open an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body NewAccount true "Account details"
// @Success 201 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /users/{id}/accounts [post]
// @Security Bearer
func CreateAccount(accountSvc *accountsvc.Service, requireSubject bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.ParseID(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid user ID", err)
		}
		if requireSubject {
			sub, ok := common.TokenSubject(c)
			if !ok || !sameUser(sub, userID) {
				return common.ProblemDetailsJSON(
					c, "Forbidden", nil, "token subject does not own this user", fiber.StatusForbidden)
			}
		}
		input, err := common.BindAndValidate[NewAccount](c)
		if input == nil {
			return err // error response already written
		}
		acc, err := accountSvc.CreateAccount(c.UserContext(), input.HolderName, userID)
		if err != nil {
			log.Warnf("Failed to create account for user %s: %v", userID, err)
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", accountweb.ToAccountDTO(acc))
	}
}

func sameUser(sub string, id uuid.UUID) bool {
	parsed, err := uuid.Parse(sub)
	return err == nil && parsed == id
}
