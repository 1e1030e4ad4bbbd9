package domain

import "encoding/json"

// GeoJSON document type tags.
const (
	TypeFeature           = "Feature"
	TypeFeatureCollection = "FeatureCollection"
)

// Feature is one GeoJSON feature as supplied by the caller. The intake core
// only reads it; the source document is never mutated.
type Feature struct {
	ID         any            `json:"id,omitempty"`
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`

	// invalidProperties marks a properties value that is valid JSON but not
	// an object. Such a feature cannot be canonicalized for hashing.
	invalidProperties bool
}

type featureEnvelope struct {
	ID         any             `json:"id"`
	Type       string          `json:"type"`
	Geometry   *Geometry       `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// UnmarshalJSON decodes a feature, tolerating geometry and properties values
// that are valid JSON but not objects. Decoding never fails on one bad
// feature, so batch processing isolates it instead of rejecting the whole
// document.
func (f *Feature) UnmarshalJSON(data []byte) error {
	var env featureEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	f.ID = env.ID
	f.Type = env.Type
	f.Geometry = env.Geometry
	f.Properties = nil
	f.invalidProperties = false

	if len(env.Properties) > 0 && string(env.Properties) != "null" {
		if err := json.Unmarshal(env.Properties, &f.Properties); err != nil {
			f.invalidProperties = true
		}
	}
	return nil
}

// Document is a parsed GeoJSON document: a single Feature or a
// FeatureCollection.
type Document struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   *Geometry      `json:"geometry,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Features   []Feature      `json:"features,omitempty"`
}

// ParseDocument decodes a GeoJSON document and checks its top-level type.
// Malformed JSON and unsupported top-level types are InputErrors.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewInputError("parse GeoJSON document: %w", err)
	}
	if doc.Type != TypeFeature && doc.Type != TypeFeatureCollection {
		return nil, NewInputError("invalid GeoJSON type %q, expected %q or %q",
			doc.Type, TypeFeature, TypeFeatureCollection)
	}
	return &doc, nil
}

// Bounds computes the bounding box for the whole document. For a Feature it
// is the bounds of its geometry; for a FeatureCollection it is the union of
// all per-feature bounds with fallback values filtered out.
func (d *Document) Bounds() BBox {
	switch d.Type {
	case TypeFeature:
		return BoundsOf(d.Geometry)
	case TypeFeatureCollection:
		if len(d.Features) == 0 {
			return WorldBounds
		}
		boxes := make([]BBox, 0, len(d.Features))
		for i := range d.Features {
			boxes = append(boxes, BoundsOf(d.Features[i].Geometry))
		}
		return unionBounds(boxes)
	default:
		return WorldBounds
	}
}
