package usecases_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/terradex/stacintake/internal/core/domain"
	"github.com/terradex/stacintake/internal/core/usecases"
)

// --- Mock CatalogRepository ---

type mockCatalog struct {
	existsFn func(ctx context.Context, collectionID string) (bool, error)
	created  []string
	upserted []*domain.Item
}

func (m *mockCatalog) CollectionExists(ctx context.Context, collectionID string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, collectionID)
	}
	return false, nil
}

func (m *mockCatalog) CreateMinimalCollection(ctx context.Context, collectionID string) error {
	m.created = append(m.created, collectionID)
	return nil
}

func (m *mockCatalog) UpsertItem(ctx context.Context, item *domain.Item) error {
	m.upserted = append(m.upserted, item)
	return nil
}

// --- Mock CacheService ---

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("cache miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

// --- Fixtures ---

func rawItem(t *testing.T, collection string) []byte {
	t.Helper()
	src, err := domain.ParseSourceURL("s3://bucket/data.geojson")
	if err != nil {
		t.Fatal(err)
	}
	item := domain.BuildItem(domain.ItemParams{
		ID:         collection + "-feature-0123456789ab",
		Collection: collection,
		Geometry:   domain.NewPoint(1, 2),
		BBox:       domain.BBox{1, 2, 1, 2},
		Properties: map[string]any{"datetime": "2023-05-01T00:00:00Z"},
		Source:     src,
	})
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// --- Tests ---

func TestIngest_UpsertsItem(t *testing.T) {
	catalog := &mockCatalog{
		existsFn: func(ctx context.Context, collectionID string) (bool, error) { return true, nil },
	}
	svc := usecases.NewIngestService(catalog, &mockValidator{}, nil)

	if err := svc.Ingest(context.Background(), rawItem(t, "parks")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.upserted) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(catalog.upserted))
	}
	if len(catalog.created) != 0 {
		t.Errorf("existing collection should not be recreated")
	}
	if catalog.upserted[0].Collection != "parks" {
		t.Errorf("unexpected collection: %s", catalog.upserted[0].Collection)
	}
}

func TestIngest_CreatesMissingCollection(t *testing.T) {
	catalog := &mockCatalog{}
	svc := usecases.NewIngestService(catalog, &mockValidator{}, nil)

	if err := svc.Ingest(context.Background(), rawItem(t, "new-coll")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.created) != 1 || catalog.created[0] != "new-coll" {
		t.Errorf("expected minimal collection creation, got %v", catalog.created)
	}
}

func TestIngest_CollectionCheckCached(t *testing.T) {
	checks := 0
	catalog := &mockCatalog{
		existsFn: func(ctx context.Context, collectionID string) (bool, error) {
			checks++
			return true, nil
		},
	}
	svc := usecases.NewIngestService(catalog, &mockValidator{}, newMockCache())

	for i := 0; i < 3; i++ {
		if err := svc.Ingest(context.Background(), rawItem(t, "parks")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if checks != 1 {
		t.Errorf("expected 1 existence check with caching, got %d", checks)
	}
	if len(catalog.upserted) != 3 {
		t.Errorf("every item must still be upserted, got %d", len(catalog.upserted))
	}
}

func TestIngest_MalformedItem(t *testing.T) {
	svc := usecases.NewIngestService(&mockCatalog{}, &mockValidator{}, nil)

	err := svc.Ingest(context.Background(), []byte(`{"id":`))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestIngest_ValidationFailureStopsPersistence(t *testing.T) {
	catalog := &mockCatalog{}
	validator := &mockValidator{
		validateFn: func(item *domain.Item) error {
			return domain.NewValidationError("does not conform")
		},
	}
	svc := usecases.NewIngestService(catalog, validator, nil)

	err := svc.Ingest(context.Background(), rawItem(t, "parks"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(catalog.upserted) != 0 {
		t.Error("invalid item must not be persisted")
	}
	if len(catalog.created) != 0 {
		t.Error("invalid item must not create collections")
	}
}
