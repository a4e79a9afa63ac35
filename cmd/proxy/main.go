package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/zulunav/navproxy/internal/adapters/http"
	"github.com/zulunav/navproxy/internal/adapters/mapbox"
	natsadapter "github.com/zulunav/navproxy/internal/adapters/nats"
	"github.com/zulunav/navproxy/internal/adapters/nominatim"
	"github.com/zulunav/navproxy/internal/core/ports"
	"github.com/zulunav/navproxy/internal/core/usecases"
	"github.com/zulunav/navproxy/internal/pkg/config"
	"github.com/zulunav/navproxy/internal/pkg/logging"
	"github.com/zulunav/navproxy/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("navproxy")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Optional NATS mirror for presence events
	var publisher *natsadapter.Publisher
	if cfg.NATS.Enabled {
		publisher, err = natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, presence mirroring disabled", "error", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// One shared client for both upstreams. Per-request deadlines come from
	// the route timeout middleware; this is the hard cap.
	upstream := &nethttp.Client{Timeout: 20 * time.Second}

	directions := usecases.NewDirectionsService(
		mapbox.NewClient(upstream, cfg.Mapbox.BaseURL, cfg.Mapbox.Token))
	places := usecases.NewPlacesService(
		nominatim.NewClient(upstream, cfg.Nominatim.BaseURL, cfg.Nominatim.UserAgent))

	// A nil *Publisher must not become a non-nil interface value.
	var events ports.EventPublisher
	if publisher != nil {
		events = publisher
	}
	hub := usecases.NewPresenceHub(events)

	hostname, _ := os.Hostname()
	deps := &http.Dependencies{
		Directions: directions,
		Places:     places,
		Hub:        hub,
		NATS:       publisher,
		ServerName: hostname,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "navproxy",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("proxy server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
