package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/terradex/stacintake/internal/core/domain"
	"github.com/terradex/stacintake/internal/core/ports"
)

// DecomposeTagKey is the object tag that overrides the configured
// decomposition default for a single source document.
const DecomposeTagKey = "DECOMPOSE_FEATURE_COLLECTIONS"

// IntakeService converts one GeoJSON source document into validated catalog
// records. By default the whole document becomes a single record; with
// decomposition enabled, each feature of a FeatureCollection is published as
// its own record with per-feature failure isolation.
type IntakeService struct {
	objects   ports.ObjectStore
	validator ports.ItemValidator
	publisher ports.ItemPublisher

	defaultCollection string
	decomposeDefault  bool
}

// NewIntakeService creates a new IntakeService. defaultCollection is the
// sentinel collection id that triggers deriving the collection name from the
// source key.
func NewIntakeService(
	objects ports.ObjectStore,
	validator ports.ItemValidator,
	publisher ports.ItemPublisher,
	defaultCollection string,
	decomposeDefault bool,
) *IntakeService {
	return &IntakeService{
		objects:           objects,
		validator:         validator,
		publisher:         publisher,
		defaultCollection: defaultCollection,
		decomposeDefault:  decomposeDefault,
	}
}

// Process runs one intake request to completion and always returns a batch
// outcome; unrecoverable errors become failed outcomes carrying the
// diagnostic text.
func (s *IntakeService) Process(ctx context.Context, req *domain.IntakeRequest) *domain.Outcome {
	slog.Info("processing GeoJSON file", "source", req.SourceURI, "item_id", req.ItemID)

	src, err := domain.ParseSourceURL(req.SourceURI)
	if err != nil {
		return domain.FailedOutcome(err, 0)
	}

	decompose := s.decomposeSetting(ctx, src)

	data, err := s.objects.FetchObject(ctx, src)
	if err != nil {
		return domain.FailedOutcome(
			domain.NewInputError("download GeoJSON file %s: %w", src, err), 0)
	}

	doc, err := domain.ParseDocument(data)
	if err != nil {
		return domain.FailedOutcome(err, 0)
	}

	collectionID := req.CollectionID
	if collectionID == "" || collectionID == s.defaultCollection {
		collectionID = domain.CollectionFromKey(src.Key)
	}
	slog.Info("using collection", "collection", collectionID)

	if decompose && doc.Type == domain.TypeFeatureCollection {
		return s.processDecomposed(ctx, doc.Features, src, collectionID)
	}
	return s.processWhole(ctx, doc, src, collectionID, req.ItemID)
}

// decomposeSetting resolves the decomposition flag: an object tag override,
// when present, always wins over the configured default. Tag lookup failures
// are logged, not fatal.
func (s *IntakeService) decomposeSetting(ctx context.Context, src domain.SourceURL) bool {
	tags, err := s.objects.ObjectTags(ctx, src)
	if err != nil {
		slog.Warn("could not read object tags", "source", src.String(), "error", err)
		return s.decomposeDefault
	}
	if v, ok := tags[DecomposeTagKey]; ok {
		override := strings.EqualFold(strings.TrimSpace(v), "true")
		slog.Info("using object tag override", "tag", DecomposeTagKey, "value", override)
		return override
	}
	return s.decomposeDefault
}

// processWhole builds exactly one record for the entire document. For a
// FeatureCollection the geometry is synthesized as the rectangle of the
// document bounds and properties always carry the feature count.
func (s *IntakeService) processWhole(ctx context.Context, doc *domain.Document, src domain.SourceURL, collectionID, itemID string) *domain.Outcome {
	if itemID == "" {
		itemID = uuid.NewString()
	}

	var geometry *domain.Geometry
	var properties map[string]any

	switch doc.Type {
	case domain.TypeFeature:
		geometry = doc.Geometry
		properties = doc.Properties
	case domain.TypeFeatureCollection:
		if len(doc.Features) == 0 {
			return domain.FailedOutcome(
				domain.NewInputError("FeatureCollection contains no features"), 0)
		}
		// Copy before adding the feature count so the parsed source document
		// stays untouched.
		properties = make(map[string]any, len(doc.Properties)+1)
		for k, v := range doc.Properties {
			properties[k] = v
		}
		if _, ok := properties["feature_count"]; !ok {
			properties["feature_count"] = len(doc.Features)
		}
	}

	bounds := doc.Bounds()
	if doc.Type == domain.TypeFeatureCollection {
		geometry = domain.RectPolygonFromBounds(bounds)
	}

	item := domain.BuildItem(domain.ItemParams{
		ID:         itemID,
		Collection: collectionID,
		Geometry:   geometry,
		BBox:       bounds,
		Properties: properties,
		Source:     src,
	})

	if err := s.validator.ValidateItem(item); err != nil {
		slog.Error("STAC item validation failed", "item", item.ID, "error", err)
		return domain.FailedOutcome(err, 1)
	}
	if err := s.publisher.PublishItem(ctx, item); err != nil {
		return domain.FailedOutcome(err, 1)
	}
	s.uploadSidecar(ctx, item, src)
	return domain.PublishedOutcome(1, 1)
}

// uploadSidecar stores the published record next to its source document as
// `<key>.stac.json`. Best effort; a failed upload never fails the batch.
func (s *IntakeService) uploadSidecar(ctx context.Context, item *domain.Item, src domain.SourceURL) {
	data, err := json.Marshal(item)
	if err != nil {
		return
	}
	sidecar := src
	sidecar.Key = src.Key + ".stac.json"
	if err := s.objects.PutObject(ctx, sidecar, data, domain.MediaTypeJSON); err != nil {
		slog.Warn("failed to upload STAC item sidecar", "key", sidecar.Key, "error", err)
	}
}

// processDecomposed builds one record per feature. A single feature's
// construction or validation error is logged and the feature skipped; it
// never aborts the rest of the batch. Configuration errors and external
// cancellation do abort, since every remaining feature would fail the same
// way.
func (s *IntakeService) processDecomposed(ctx context.Context, features []domain.Feature, src domain.SourceURL, collectionID string) *domain.Outcome {
	slog.Info("processing features individually", "count", len(features))
	published := 0

	for i := range features {
		if err := ctx.Err(); err != nil {
			slog.Warn("intake cancelled mid-batch", "processed", i, "total", len(features))
			break
		}

		item, err := s.buildFeatureItem(&features[i], src, collectionID)
		if err != nil {
			slog.Error("failed to build STAC item for feature", "index", i, "error", err)
			continue
		}

		if err := s.validator.ValidateItem(item); err != nil {
			var cfgErr *domain.ConfigurationError
			if errors.As(err, &cfgErr) {
				return domain.FailedOutcome(err, len(features))
			}
			slog.Error("STAC item validation failed for feature", "index", i, "item", item.ID, "error", err)
			continue
		}

		if err := s.publisher.PublishItem(ctx, item); err != nil {
			slog.Error("failed to publish STAC item", "item", item.ID, "error", err)
			continue
		}

		published++
		slog.Info("published STAC item", "item", item.ID, "progress", i+1, "total", len(features))
	}

	outcome := domain.PublishedOutcome(published, len(features))
	if outcome.Status == domain.StatusPartial {
		slog.Warn("partial success", "failed", len(features)-published, "total", len(features))
	}
	return outcome
}

func (s *IntakeService) buildFeatureItem(f *domain.Feature, src domain.SourceURL, collectionID string) (*domain.Item, error) {
	itemID, err := domain.DeterministicID(f, collectionID, src.Key)
	if err != nil {
		return nil, err
	}
	return domain.BuildItem(domain.ItemParams{
		ID:         itemID,
		Collection: collectionID,
		Geometry:   f.Geometry,
		BBox:       domain.BoundsOf(f.Geometry),
		Properties: f.Properties,
		Source:     src,
	}), nil
}
