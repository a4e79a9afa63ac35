package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on GET responses the handler did not
// claim itself. The proxy holds no server-side cache; these headers only
// steer client and CDN behavior, and live presence data is marked no-store
// so nothing downstream retains it.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != "GET" {
			return err
		}
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/health" || path == "/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case strings.HasPrefix(path, "/realtime/"):
			ttl = "no-store" // live presence snapshots

		case path == "/directions":
			ttl = "private, max-age=60" // traffic-sensitive, client-side only

		case strings.HasPrefix(path, "/places/"):
			ttl = "private, max-age=300" // place data drifts slowly
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
