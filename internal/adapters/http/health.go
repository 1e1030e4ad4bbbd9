package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/terradex/stacintake/internal/adapters/postgres"
	s3adapter "github.com/terradex/stacintake/internal/adapters/s3"
	"github.com/terradex/stacintake/internal/adapters/valkey"
	"github.com/terradex/stacintake/internal/schema"
)

// Dependencies holds the backing services a worker exposes on its ops
// endpoints. Nil fields are reported as "not configured" and do not fail
// readiness.
type Dependencies struct {
	DB      *postgres.DB
	NATS    *nats.Conn
	Cache   *valkey.Cache
	Objects *s3adapter.Store
	Schemas *schema.Store
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"uptime": time.Since(startedAt).String(),
		})
	}
}

// ReadyHandler checks connectivity of every configured dependency.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

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

		if deps.DB != nil {
			if err := deps.DB.Pool.Ping(ctx); err != nil {
				checks["database"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["database"] = "ok"
			}
		} else {
			checks["database"] = "not configured"
		}

		if deps.Objects != nil {
			if err := deps.Objects.Ping(ctx); err != nil {
				checks["object_store"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["object_store"] = "ok"
			}
		} else {
			checks["object_store"] = "not configured"
		}

		if deps.Cache != nil {
			_, err := deps.Cache.Get(ctx, "__health_check__")
			// A nil reply for the missing key is the expected outcome.
			if err != nil && err.Error() != "valkey nil message" {
				checks["cache"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["cache"] = "ok"
			}
		} else {
			checks["cache"] = "not configured"
		}

		if deps.Schemas != nil {
			if deps.Schemas.Len() == 0 {
				checks["schemas"] = "empty store"
				allOK = false
			} else {
				checks["schemas"] = "ok"
			}
		} else {
			checks["schemas"] = "not configured"
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
