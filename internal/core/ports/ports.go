package ports

import (
	"context"
	"time"

	"github.com/terradex/stacintake/internal/core/domain"
)

// ObjectStore reads source documents and their metadata from bucket storage.
type ObjectStore interface {
	FetchObject(ctx context.Context, u domain.SourceURL) ([]byte, error)
	ObjectTags(ctx context.Context, u domain.SourceURL) (map[string]string, error)
	PutObject(ctx context.Context, u domain.SourceURL, data []byte, contentType string) error
}

// ItemValidator checks a constructed record against the STAC schema family.
type ItemValidator interface {
	ValidateItem(item *domain.Item) error
}

// ItemPublisher hands validated records and batch outcomes to the outbound
// message bus.
type ItemPublisher interface {
	PublishItem(ctx context.Context, item *domain.Item) error
	PublishOutcome(ctx context.Context, outcome *domain.Outcome) error
}

// CatalogRepository persists records in the catalog database.
type CatalogRepository interface {
	CollectionExists(ctx context.Context, collectionID string) (bool, error)
	CreateMinimalCollection(ctx context.Context, collectionID string) error
	UpsertItem(ctx context.Context, item *domain.Item) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
