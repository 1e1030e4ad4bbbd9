// Package schema holds the offline STAC validation engine: a local store of
// cached schema documents, version resolution with nearest-version fallback,
// and full $ref-resolving item validation without network access.
package schema

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/terradex/stacintake/internal/core/domain"
)

// Canonical bases the cached files are keyed under. The local directory
// layout mirrors the upstream specification's own layout:
//
//	<dir>/geojson/<Name>.json          -> https://geojson.org/schema/<Name>.json
//	<dir>/stac/v<version>/<path>.json  -> https://schemas.stacspec.org/v<version>/<path>.json
const (
	geoJSONSchemaBase = "https://geojson.org/schema/"
	stacSchemaBase    = "https://schemas.stacspec.org/"
)

// geoJSONSchemaNames is the fixed geometry-schema family the STAC item schema
// cross-references.
var geoJSONSchemaNames = []string{
	"Feature",
	"Geometry",
	"FeatureCollection",
	"Point",
	"LineString",
	"Polygon",
	"MultiPoint",
	"MultiLineString",
	"MultiPolygon",
}

// Store is an immutable URI-keyed table of schema documents loaded once from
// the local cache. A store with partial content is still usable for records
// that do not need the missing pieces.
type Store struct {
	dir  string
	docs map[string][]byte
}

// LoadStore reads the local schema cache into memory. Individual missing or
// corrupt files are logged and skipped; an unreachable cache directory is a
// ConfigurationError.
func LoadStore(dir string) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, domain.NewConfigurationError(
			"schema cache directory %q is unreachable; run 'stacintake-schemas %s' to populate it", dir, dir)
	}

	s := &Store{dir: dir, docs: make(map[string][]byte)}
	s.loadGeoJSON()
	s.loadStac()

	slog.Info("schema store loaded", "dir", dir, "schemas", len(s.docs))
	return s, nil
}

func (s *Store) loadGeoJSON() {
	for _, name := range geoJSONSchemaNames {
		local := filepath.Join(s.dir, "geojson", name+".json")
		data, err := os.ReadFile(local)
		if err != nil {
			slog.Warn("geojson schema missing", "schema", name, "path", local)
			continue
		}
		if !json.Valid(data) {
			slog.Error("geojson schema corrupt", "schema", name, "path", local)
			continue
		}
		s.docs[geoJSONSchemaBase+name+".json"] = data
	}
}

func (s *Store) loadStac() {
	stacDir := filepath.Join(s.dir, "stac")
	err := filepath.WalkDir(stacDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			slog.Warn("stac schema unreadable", "path", path, "error", readErr)
			return nil
		}
		if !json.Valid(data) {
			slog.Warn("stac schema corrupt", "path", path)
			return nil
		}
		rel, relErr := filepath.Rel(stacDir, path)
		if relErr != nil {
			return nil
		}
		s.docs[stacSchemaBase+filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		slog.Warn("stac schema directory missing", "dir", stacDir)
	}
}

// Get returns the raw schema document for a canonical URI.
func (s *Store) Get(uri string) ([]byte, bool) {
	doc, ok := s.docs[uri]
	return doc, ok
}

// Len returns the number of loaded schema documents.
func (s *Store) Len() int { return len(s.docs) }

// Dir returns the cache directory the store was loaded from.
func (s *Store) Dir() string { return s.dir }
