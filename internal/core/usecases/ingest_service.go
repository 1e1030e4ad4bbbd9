package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/terradex/stacintake/internal/core/domain"
	"github.com/terradex/stacintake/internal/core/ports"
)

const collectionExistsTTL = 10 * time.Minute

// IngestService persists published catalog records into the catalog
// database, auto-creating a minimal collection the first time an item
// arrives for it.
type IngestService struct {
	catalog   ports.CatalogRepository
	validator ports.ItemValidator
	cache     ports.CacheService
}

// NewIngestService creates a new IngestService. cache may be nil.
func NewIngestService(catalog ports.CatalogRepository, validator ports.ItemValidator, cache ports.CacheService) *IngestService {
	return &IngestService{catalog: catalog, validator: validator, cache: cache}
}

// Ingest re-validates one serialized record and upserts it. The upsert is
// keyed on the deterministic item id, so republishing the same source content
// never creates duplicate catalog entries.
func (s *IngestService) Ingest(ctx context.Context, raw []byte) error {
	var item domain.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.NewInputError("parse STAC item: %w", err)
	}

	if err := s.validator.ValidateItem(&item); err != nil {
		return err
	}

	if err := s.ensureCollection(ctx, item.Collection); err != nil {
		return err
	}

	if err := s.catalog.UpsertItem(ctx, &item); err != nil {
		return err
	}

	slog.Info("STAC item ingested", "item", item.ID, "collection", item.Collection)
	return nil
}

// ensureCollection checks (with caching) that the item's collection exists,
// creating a minimal one when it does not.
func (s *IngestService) ensureCollection(ctx context.Context, collectionID string) error {
	cacheKey := "collections:exists:" + collectionID
	if s.cache != nil {
		if _, err := s.cache.Get(ctx, cacheKey); err == nil {
			return nil
		}
	}

	exists, err := s.catalog.CollectionExists(ctx, collectionID)
	if err != nil {
		return err
	}
	if !exists {
		slog.Info("collection not found, creating minimal collection", "collection", collectionID)
		if err := s.catalog.CreateMinimalCollection(ctx, collectionID); err != nil {
			return err
		}
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, []byte("1"), collectionExistsTTL)
	}
	return nil
}
