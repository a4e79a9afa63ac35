package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns the liveness envelope the clients poll.
func HealthHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"activeUsers": deps.Hub.ActiveUsers(),
			"server":      deps.ServerName,
		})
	}
}

// ReadyHandler reports the state of optional dependencies. The proxy itself
// is stateless, so readiness only degrades when a configured NATS mirror is
// unreachable.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		checks := make(map[string]string)
		allOK := true

		if deps.NATS != nil {
			if deps.NATS.IsConnected() {
				checks["nats"] = "ok"
			} else {
				checks["nats"] = "disconnected"
				allOK = false
			}
		} else {
			checks["nats"] = "not configured"
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
