// Package http provides the operational HTTP surface of the intake
// workers: liveness, readiness, and Prometheus metrics.
package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/terradex/stacintake/internal/pkg/metrics"
)

// NewRouter builds the ops app for a worker.
func NewRouter(deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Get("/healthz", HealthHandler(deps))
	app.Get("/readyz", ReadyHandler(deps))
	app.Get("/metrics", metrics.Handler())

	return app
}
