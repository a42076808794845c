// Package middleware provides Fiber middleware shared by the HTTP routes.
package middleware

import (
	"errors"

	"github.com/amirasaad/ledger/pkg/config"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is the Locals key holding the verified *jwt.Token.
const ContextKey = "user"

// JwtProtected verifies HS256 bearer tokens signed with cfg.Secret. With no
// secret configured, requests pass through unauthenticated.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	if !Enabled(cfg) {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ContextKey:   ContextKey,
		ErrorHandler: jwtError,
		Claims:       &jwt.RegisteredClaims{},
	})
}

// Enabled reports whether token verification is configured.
func Enabled(cfg *config.Jwt) bool {
	return cfg != nil && cfg.Secret != ""
}

func jwtError(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	title := "Invalid or expired JWT"
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		status = fiber.StatusBadRequest
		title = "Missing or malformed JWT"
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(fiber.Map{
		"type":     "about:blank",
		"title":    title,
		"status":   status,
		"instance": c.OriginalURL(),
	})
}
