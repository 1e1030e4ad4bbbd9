package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/terradex/stacintake/internal/adapters/http"
	natsadapter "github.com/terradex/stacintake/internal/adapters/nats"
	"github.com/terradex/stacintake/internal/adapters/postgres"
	"github.com/terradex/stacintake/internal/adapters/valkey"
	"github.com/terradex/stacintake/internal/core/ports"
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

	logging.Setup("ingest", cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Schema cache
	store, err := schema.LoadStore(cfg.Schemas.Dir)
	if err != nil {
		log.Fatalf("schema store: %v", err)
	}
	validator := schema.NewValidator(store)

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	catalog := postgres.NewCatalogRepo(db)

	// Cache (optional)
	var cache *valkey.Cache
	var cacheSvc ports.CacheService
	if cfg.Valkey.Addr != "" {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, collection checks go uncached", "error", err)
		} else {
			defer cache.Close()
			cacheSvc = cache
		}
	}

	// NATS
	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer subscriber.Close()

	svc := usecases.NewIngestService(catalog, validator, cacheSvc)

	handler := func(ctx context.Context, raw []byte) error {
		if err := svc.Ingest(ctx, raw); err != nil {
			metrics.ItemsIngested.WithLabelValues("error").Inc()
			slog.Error("ingest failed", "error", err)
			return err
		}
		metrics.ItemsIngested.WithLabelValues("ok").Inc()
		return nil
	}

	if err := subscriber.SubscribeItems(ctx, handler); err != nil {
		log.Fatalf("subscribe items: %v", err)
	}

	// Ops endpoints
	deps := &httpadapter.Dependencies{
		DB:      db,
		NATS:    subscriber.Conn(),
		Cache:   cache,
		Schemas: store,
	}
	app := httpadapter.NewRouter(deps)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("ingest worker started", "addr", addr)
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

	slog.Info("ingest worker stopped")
}
