package usecases

import (
	"context"
	"testing"

	"github.com/terradex/stacintake/internal/core/domain"
)

type stubStore struct{}

func (stubStore) FetchObject(ctx context.Context, u domain.SourceURL) ([]byte, error) {
	return nil, nil
}

func (stubStore) ObjectTags(ctx context.Context, u domain.SourceURL) (map[string]string, error) {
	return nil, nil
}

func (stubStore) PutObject(ctx context.Context, u domain.SourceURL, data []byte, contentType string) error {
	return nil
}

type stubValidator struct{}

func (stubValidator) ValidateItem(item *domain.Item) error { return nil }

type stubPublisher struct {
	items []*domain.Item
}

func (p *stubPublisher) PublishItem(ctx context.Context, item *domain.Item) error {
	p.items = append(p.items, item)
	return nil
}

func (p *stubPublisher) PublishOutcome(ctx context.Context, outcome *domain.Outcome) error {
	return nil
}

func TestProcessWhole_SourceDocumentNotMutated(t *testing.T) {
	doc, err := domain.ParseDocument([]byte(`{"type":"FeatureCollection","properties":{"name":"parks"},"features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}
	]}`))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	src, err := domain.ParseSourceURL("s3://bucket/uploads/parks/data.geojson")
	if err != nil {
		t.Fatalf("parse source URL: %v", err)
	}

	pub := &stubPublisher{}
	svc := NewIntakeService(stubStore{}, stubValidator{}, pub, "default", false)

	out := svc.processWhole(context.Background(), doc, src, "parks", "item-1")
	if out.Status != domain.StatusSuccess {
		t.Fatalf("expected success, got %s: %s", out.Status, out.Message)
	}

	// The published record carries the count; the parsed source document does
	// not gain it.
	if _, ok := doc.Properties["feature_count"]; ok {
		t.Error("source document properties were mutated")
	}
	if len(pub.items) != 1 {
		t.Fatalf("expected 1 published item, got %d", len(pub.items))
	}
	if pub.items[0].Properties["feature_count"] != 1 {
		t.Errorf("expected feature_count 1 on the item, got %v", pub.items[0].Properties["feature_count"])
	}
	if pub.items[0].Properties["name"] != "parks" {
		t.Errorf("document properties lost: %v", pub.items[0].Properties)
	}
}
