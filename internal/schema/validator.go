package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/terradex/stacintake/internal/core/domain"
)

// defaultStacVersion is assumed when a record does not declare one.
const defaultStacVersion = "1.0.0"

const multiPolygonSchemaURI = geoJSONSchemaBase + "MultiPolygon.json"

// Validator validates catalog records against the locally cached STAC and
// GeoJSON schema graph. Every $ref is resolved from the store; the compiler
// never goes to the network.
type Validator struct {
	store    *Store
	compiler *jsonschema.Compiler

	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

// NewValidator builds a validator over a loaded store. Documents that fail to
// register with the compiler are logged and skipped, matching the store's
// tolerance for partial caches.
func NewValidator(store *Store) *Validator {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	c.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("schema %s is not in the local cache (offline validation)", url)
	}
	for uri, doc := range store.docs {
		if err := c.AddResource(uri, bytes.NewReader(doc)); err != nil {
			slog.Warn("schema resource rejected by compiler", "uri", uri, "error", err)
		}
	}
	return &Validator{
		store:    store,
		compiler: c,
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// ValidateItem checks one record against the schema for its declared STAC
// version, defaulting to 1.0.0. Non-conformance is a ValidationError whose
// message names the offending path, the item id, the geometry type, and the
// schema URI; an unusable schema cache is a ConfigurationError.
func (v *Validator) ValidateItem(item *domain.Item) error {
	version := item.StacVersion
	if version == "" {
		version = defaultStacVersion
	}

	res, err := v.store.Resolve(ObjectItem, version)
	if err != nil {
		return err
	}

	sch, err := v.schema(res.URI)
	if err != nil {
		return err
	}

	doc, err := itemValue(item)
	if err != nil {
		return err
	}

	slog.Debug("validating item", "item", item.ID, "geometry", item.GeometryType(), "schema", res.URI)

	if item.GeometryType() == domain.GeometryMultiPolygon {
		return v.validateMultiPolygon(item, doc, sch, res.URI)
	}

	if err := sch.Validate(doc); err != nil {
		return invalidItem(err, item, res.URI)
	}
	return nil
}

// validateMultiPolygon works around the disjunctive geometry reference in the
// item schema, which generic resolution cannot reliably pick among for
// MultiPolygon records. The geometry sub-document is validated directly
// against the standalone MultiPolygon schema, then the record structure is
// validated with a degenerate Point substituted for the geometry. Both checks
// must pass.
func (v *Validator) validateMultiPolygon(item *domain.Item, doc map[string]any, sch *jsonschema.Schema, schemaURI string) error {
	if _, ok := v.store.Get(multiPolygonSchemaURI); !ok {
		return domain.NewConfigurationError(
			"MultiPolygon schema %s is not in the local cache; run 'stacintake-schemas %s' to populate it",
			multiPolygonSchemaURI, v.store.dir)
	}
	mpSchema, err := v.schema(multiPolygonSchemaURI)
	if err != nil {
		return err
	}

	if err := mpSchema.Validate(doc["geometry"]); err != nil {
		return domain.NewValidationError(
			"MultiPolygon geometry validation failed for item %s: %s", item.ID, describe(err))
	}

	structural := make(map[string]any, len(doc))
	for k, val := range doc {
		structural[k] = val
	}
	structural["geometry"] = map[string]any{"type": "Point", "coordinates": []any{0.0, 0.0}}
	structural["bbox"] = []any{0.0, 0.0, 0.0, 0.0}

	if err := sch.Validate(structural); err != nil {
		return domain.NewValidationError(
			"item structure validation failed for MultiPolygon item %s against schema %s: %s",
			item.ID, schemaURI, describe(err))
	}
	return nil
}

// schema compiles a schema document once and caches the result.
func (v *Validator) schema(uri string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if sch, ok := v.compiled[uri]; ok {
		return sch, nil
	}
	sch, err := v.compiler.Compile(uri)
	if err != nil {
		return nil, domain.NewConfigurationError("compile schema %s: %w", uri, err)
	}
	v.compiled[uri] = sch
	return sch, nil
}

// itemValue re-decodes a record into the generic form the schema library
// validates against.
func itemValue(item *domain.Item) (map[string]any, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, domain.NewInputError("serialize item %s for validation: %w", item.ID, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewInputError("serialize item %s for validation: %w", item.ID, err)
	}
	return doc, nil
}

// invalidItem converts a schema violation into the diagnostic contract:
// path, item id, geometry type, and schema URI, using the deepest (most
// specific) cause.
func invalidItem(err error, item *domain.Item, schemaURI string) error {
	return domain.NewValidationError("validation failed for item %s (geometry %s) against schema %s: %s",
		item.ID, item.GeometryType(), schemaURI, describe(err))
}

// describe renders the most specific violation in a schema error.
func describe(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	deepest := deepestCause(ve)
	loc := deepest.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s at %s", deepest.Message, loc)
}

// deepestCause walks the cause tree and picks the leaf with the most specific
// instance location.
func deepestCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	best := ve
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			if best == ve || len(e.InstanceLocation) > len(best.InstanceLocation) {
				best = e
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return best
}
