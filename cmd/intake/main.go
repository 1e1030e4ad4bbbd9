package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	httpadapter "github.com/terradex/stacintake/internal/adapters/http"
	natsadapter "github.com/terradex/stacintake/internal/adapters/nats"
	s3adapter "github.com/terradex/stacintake/internal/adapters/s3"
	"github.com/terradex/stacintake/internal/core/domain"
	"github.com/terradex/stacintake/internal/core/usecases"
	"github.com/terradex/stacintake/internal/pkg/config"
	"github.com/terradex/stacintake/internal/pkg/logging"
	"github.com/terradex/stacintake/internal/pkg/metrics"
	"github.com/terradex/stacintake/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup("intake", cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schema cache
	store, err := schema.LoadStore(cfg.Schemas.Dir)
	if err != nil {
		log.Fatalf("schema store: %v", err)
	}
	validator := schema.NewValidator(store)

	// Object storage
	objects, err := s3adapter.New(
		cfg.ObjectStore.Endpoint,
		cfg.ObjectStore.AccessKey,
		cfg.ObjectStore.SecretKey,
		cfg.ObjectStore.UseSSL,
	)
	if err != nil {
		log.Fatalf("object store: %v", err)
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer publisher.Close()

	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	svc := usecases.NewIntakeService(
		objects,
		validator,
		publisher,
		cfg.Intake.DefaultCollection,
		cfg.Intake.DecomposeFeatureCollections,
	)

	handler := func(ctx context.Context, req *domain.IntakeRequest) error {
		start := time.Now()

		outcome := runRequest(ctx, svc, req)

		metrics.ProcessDuration.Observe(time.Since(start).Seconds())
		metrics.DocumentsProcessed.WithLabelValues(string(outcome.Status)).Inc()
		metrics.ItemsPublished.Add(float64(outcome.Published))
		if skipped := outcome.Total - outcome.Published; skipped > 0 {
			metrics.FeaturesSkipped.Add(float64(skipped))
		}

		slog.Info("intake request finished",
			"source", req.SourceURI,
			"status", outcome.Status,
			"published", outcome.Published,
			"total", outcome.Total,
		)

		if err := publisher.PublishOutcome(ctx, outcome); err != nil {
			slog.Error("failed to publish outcome", "source", req.SourceURI, "error", err)
		}
		return nil
	}

	if err := subscriber.SubscribeIntakeRequests(ctx, handler); err != nil {
		log.Fatalf("subscribe intake requests: %v", err)
	}

	// Ops endpoints
	deps := &httpadapter.Dependencies{
		NATS:    subscriber.Conn(),
		Objects: objects,
		Schemas: store,
	}
	app := httpadapter.NewRouter(deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("intake worker started", "addr", addr, "schemas", store.Len())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("intake worker stopped")
}

// runRequest rejects documents whose key does not look like GeoJSON before
// any download happens, then hands the request to the intake service.
func runRequest(ctx context.Context, svc *usecases.IntakeService, req *domain.IntakeRequest) *domain.Outcome {
	ext := strings.ToLower(filepath.Ext(req.SourceURI))
	switch ext {
	case ".geojson", ".json":
		return svc.Process(ctx, req)
	default:
		return domain.FailedOutcome(
			domain.NewInputError("unsupported file extension %q for %s", ext, req.SourceURI), 0)
	}
}
