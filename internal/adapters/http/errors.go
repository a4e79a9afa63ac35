package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// The error contract is deliberately small: validation failures name the
// missing or bad field, provider failures are an opaque "proxy failed".
// Upstream error bodies never reach the client.

// errBadRequest returns a 400 with the offending field named in the message.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// errProxyFailed returns the 500 envelope. The underlying cause is logged
// with request context and goes no further.
func errProxyFailed(c *fiber.Ctx, op string, err error) error {
	reqID, _ := c.Locals("requestid").(string)
	slog.Error("proxy failure", "op", op, "error", err, "request_id", reqID)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
}
