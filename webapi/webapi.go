// Package webapi provides the HTTP API of the ledger.
// It is organized into sub-packages for different domains:
// - account: Account, balance, mutation and statement endpoints
// - user: User endpoints and account opening
// - common: Response envelopes, error mapping and request binding
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/ledger/pkg/app"
	accountweb "github.com/amirasaad/ledger/webapi/account"
	"github.com/amirasaad/ledger/webapi/common"
	userweb "github.com/amirasaad/ledger/webapi/user"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "ledger",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return common.ProblemDetailsJSON(c, fe.Message, nil, fe.Code)
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	maxRequests, window := 100, time.Minute
	if rl := a.Config.RateLimit; rl != nil && rl.MaxRequests > 0 {
		maxRequests, window = rl.MaxRequests, rl.Window
	}

	// Configure rate limiting middleware
	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				first, _, _ := strings.Cut(forwardedFor, ",")
				return strings.TrimSpace(first)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				nil,
				"rate limit exceeded",
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Ledger API is running! 🚀")
	})

	accountweb.Routes(fiberApp, a.AccountService, a.StatementReader, a.Config)
	userweb.Routes(fiberApp, a.UserService, a.AccountService, a.Config)
	return fiberApp
}
