package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
)

type loginRequest struct {
	User string `json:"user"`
}

// Login mints a token for any caller-supplied identity label, defaulting to
// "demo". There is no password or identity verification: this endpoint is an
// open mint, not an authentication system, and real deployments must front it
// with actual credential checks.
func Login(tm *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := loginRequest{}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}
		if req.User == "" {
			req.User = "demo"
		}

		token, err := tm.Issue(req.User)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"token": token})
	}
}

// HealthCheck is an unauthenticated liveness probe.
func HealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// ReadyCheck reports whether the catalog store is reachable.
func ReadyCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ready"})
	}
}
