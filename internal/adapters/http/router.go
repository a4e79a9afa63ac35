package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/zulunav/navproxy/internal/pkg/metrics"
)

// SetupRoutes registers the REST endpoints and the presence WebSocket.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/health", HealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))

	// Upstream proxy endpoints, 15s per-request timeout: Mapbox and
	// Nominatim can both stall well past what the mobile client tolerates.
	app.Get("/directions", timeout.NewWithContext(DirectionsHandler(deps), 15*time.Second))
	app.Get("/places/autocomplete", timeout.NewWithContext(AutocompleteHandler(deps), 15*time.Second))
	app.Get("/places/details", timeout.NewWithContext(DetailsHandler(deps), 15*time.Second))
	app.Get("/places/nearby", timeout.NewWithContext(NearbyHandler(deps), 15*time.Second))
	app.Get("/places/textsearch", timeout.NewWithContext(TextSearchHandler(deps), 15*time.Second))

	// Presence snapshots (in-memory, no timeout needed)
	app.Get("/realtime/users", RealtimeUsersHandler(deps))
	app.Get("/realtime/locations", RealtimeLocationsHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket presence channel
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(PresenceHandler(deps.Hub)))
}
