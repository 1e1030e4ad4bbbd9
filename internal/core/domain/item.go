package domain

import "time"

// STAC constants shared by every constructed record.
const (
	StacVersion      = "1.0.0"
	MediaTypeGeoJSON = "application/geo+json"
	MediaTypeJSON    = "application/json"
)

// Link is a STAC link object.
type Link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
	Type string `json:"type,omitempty"`
}

// Asset is a STAC asset object.
type Asset struct {
	Href  string   `json:"href"`
	Title string   `json:"title,omitempty"`
	Type  string   `json:"type,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Item is one catalog record: a STAC Item ready for JSON serialization.
type Item struct {
	ID          string           `json:"id"`
	Collection  string           `json:"collection"`
	Type        string           `json:"type"`
	StacVersion string           `json:"stac_version"`
	Geometry    *Geometry        `json:"geometry"`
	BBox        BBox             `json:"bbox"`
	Properties  map[string]any   `json:"properties"`
	Assets      map[string]Asset `json:"assets"`
	Links       []Link           `json:"links"`
}

// GeometryType returns the geometry type tag, or "unknown" for records
// without geometry.
func (it *Item) GeometryType() string {
	if it.Geometry == nil || it.Geometry.Type == "" {
		return "unknown"
	}
	return it.Geometry.Type
}

// ItemLinks builds the standard self and collection back-references.
func ItemLinks(collectionID, itemID string) []Link {
	return []Link{
		{Href: "/collections/" + collectionID + "/items/" + itemID, Rel: "self"},
		{Href: "/collections/" + collectionID, Rel: "collection", Type: MediaTypeJSON},
	}
}

// ItemParams carries the components BuildItem assembles into a record.
type ItemParams struct {
	ID         string
	Collection string
	Geometry   *Geometry
	BBox       BBox
	Properties map[string]any
	Source     SourceURL
}

// BuildItem assembles a catalog record from its components. The datetime
// property is taken from the caller's `datetime` or `date` property, else set
// to the current UTC time; remaining caller properties are copied over the
// vector-data defaults, so callers may override them.
func BuildItem(p ItemParams) *Item {
	datetime, _ := p.Properties["datetime"].(string)
	if datetime == "" {
		datetime, _ = p.Properties["date"].(string)
	}
	if datetime == "" {
		datetime = time.Now().UTC().Format(time.RFC3339)
	}

	props := map[string]any{
		"datetime":            datetime,
		"data_type":           "vector",
		"geometry_simplified": true,
	}
	for k, v := range p.Properties {
		if k == "datetime" || k == "date" {
			continue
		}
		props[k] = v
	}

	assets := map[string]Asset{
		"source": {
			Href:  p.Source.String(),
			Title: "Source GeoJSON",
			Type:  MediaTypeGeoJSON,
			Roles: []string{"data"},
		},
	}

	return &Item{
		ID:          p.ID,
		Collection:  p.Collection,
		Type:        TypeFeature,
		StacVersion: StacVersion,
		Geometry:    p.Geometry,
		BBox:        p.BBox,
		Properties:  props,
		Assets:      assets,
		Links:       ItemLinks(p.Collection, p.ID),
	}
}

// MinimalCollection builds the smallest valid STAC Collection document used
// when an item arrives for a collection the catalog has never seen.
func MinimalCollection(collectionID string) map[string]any {
	return map[string]any{
		"type":         "Collection",
		"id":           collectionID,
		"stac_version": StacVersion,
		"description":  "Auto-created collection for " + collectionID,
		"license":      "proprietary",
		"extent": map[string]any{
			"spatial":  map[string]any{"bbox": []any{[]any{-180.0, -90.0, 180.0, 90.0}}},
			"temporal": map[string]any{"interval": []any{[]any{nil, nil}}},
		},
		"links": []any{},
	}
}
