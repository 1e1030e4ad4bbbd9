package schema_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/terradex/stacintake/internal/core/domain"
	"github.com/terradex/stacintake/internal/schema"
)

func asError(err error, target any) bool { return errors.As(err, target) }

// storeWithVersions builds a schema cache holding an item schema for each
// given version.
func storeWithVersions(t *testing.T, versions ...string) *schema.Store {
	t.Helper()
	dir := t.TempDir()
	for _, v := range versions {
		schemaDir := filepath.Join(dir, "stac", "v"+v, "item-spec", "json-schema")
		if err := os.MkdirAll(schemaDir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(schemaDir, "item.json"), []byte(`{"type":"object"}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	s, err := schema.LoadStore(dir)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return s
}

func TestResolve_ExactVersion(t *testing.T) {
	s := storeWithVersions(t, "1.0.0", "1.1.0")

	res, err := s.Resolve(schema.ObjectItem, "1.0.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback {
		t.Error("exact match should not be a fallback")
	}
	if res.Version != "1.0.0" {
		t.Errorf("expected 1.0.0, got %s", res.Version)
	}
	if res.URI != "https://schemas.stacspec.org/v1.0.0/item-spec/json-schema/item.json" {
		t.Errorf("unexpected URI: %s", res.URI)
	}
}

func TestResolve_FallbackPicksHighest(t *testing.T) {
	s := storeWithVersions(t, "0.9.0", "1.0.0", "1.1.0")

	res, err := s.Resolve(schema.ObjectItem, "2.0.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Fallback {
		t.Error("expected fallback")
	}
	if res.Version != "1.1.0" {
		t.Errorf("expected highest available 1.1.0, got %s", res.Version)
	}
}

func TestResolve_NonNumericSegmentsCountZero(t *testing.T) {
	s := storeWithVersions(t, "beta", "1.0.0")

	res, err := s.Resolve(schema.ObjectItem, "9.9.9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "beta" parses as [0] and never outranks a numeric version.
	if res.Version != "1.0.0" {
		t.Errorf("expected 1.0.0, got %s", res.Version)
	}
}

func TestResolve_NoVersions(t *testing.T) {
	s := storeWithVersions(t, "1.0.0")

	_, err := s.Resolve(schema.ObjectCollection, "1.0.0")
	if err == nil {
		t.Fatal("expected error for object type with no cached schema")
	}
	var cfgErr *domain.ConfigurationError
	if !asError(err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %T: %v", err, err)
	}
}
