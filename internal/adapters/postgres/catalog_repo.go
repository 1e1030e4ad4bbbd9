package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/terradex/stacintake/internal/core/domain"
	"github.com/terradex/stacintake/internal/pkg/metrics"
)

// CatalogRepo implements ports.CatalogRepository. Items and collections are
// stored as JSONB documents keyed by their STAC id, so an upsert of the same
// deterministic id is a no-op content refresh rather than a duplicate.
type CatalogRepo struct {
	db *DB
}

func NewCatalogRepo(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) CollectionExists(ctx context.Context, collectionID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM collections WHERE id = $1)
	`, collectionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check collection %s: %w", collectionID, err)
	}
	return exists, nil
}

func (r *CatalogRepo) CreateMinimalCollection(ctx context.Context, collectionID string) error {
	content, err := json.Marshal(domain.MinimalCollection(collectionID))
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO collections (id, content)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, collectionID, content)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", collectionID, err)
	}
	if tag.RowsAffected() > 0 {
		metrics.CollectionsCreated.Inc()
	}
	return nil
}

func (r *CatalogRepo) UpsertItem(ctx context.Context, item *domain.Item) error {
	content, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO items (id, collection_id, content, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			collection_id = EXCLUDED.collection_id,
			content = EXCLUDED.content,
			updated_at = now()
	`, item.ID, item.Collection, content)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}
	return nil
}
