package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// Intake metrics
	DocumentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stacintake",
		Subsystem: "intake",
		Name:      "documents_processed_total",
		Help:      "Total source documents processed, by batch outcome status",
	}, []string{"status"})

	ItemsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stacintake",
		Subsystem: "intake",
		Name:      "items_published_total",
		Help:      "Total STAC items published to the bus",
	})

	FeaturesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stacintake",
		Subsystem: "intake",
		Name:      "features_skipped_total",
		Help:      "Total features skipped due to construction, validation, or publish errors",
	})

	ProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stacintake",
		Subsystem: "intake",
		Name:      "process_duration_seconds",
		Help:      "Duration of one intake request end to end",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// Catalog ingest metrics
	ItemsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stacintake",
		Subsystem: "ingest",
		Name:      "items_total",
		Help:      "Total STAC items persisted to the catalog, by result",
	}, []string{"result"})

	CollectionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stacintake",
		Subsystem: "ingest",
		Name:      "collections_created_total",
		Help:      "Total minimal collections auto-created",
	})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stacintake",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stacintake",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
