package domain

import (
	"encoding/json"
	"fmt"
)

// GeoJSON geometry type tags.
const (
	GeometryPoint           = "Point"
	GeometryLineString      = "LineString"
	GeometryPolygon         = "Polygon"
	GeometryMultiPoint      = "MultiPoint"
	GeometryMultiLineString = "MultiLineString"
	GeometryMultiPolygon    = "MultiPolygon"
	GeometryCollection      = "GeometryCollection"
)

// Position is a single [longitude, latitude] coordinate pair. An altitude
// value present in the source document is dropped on decode.
type Position [2]float64

// Lon returns the longitude component.
func (p Position) Lon() float64 { return p[0] }

// Lat returns the latitude component.
func (p Position) Lat() float64 { return p[1] }

func (p *Position) UnmarshalJSON(data []byte) error {
	var vals []float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return err
	}
	if len(vals) < 2 {
		return fmt.Errorf("position needs at least 2 values, got %d", len(vals))
	}
	p[0], p[1] = vals[0], vals[1]
	return nil
}

// Geometry is a closed union over the GeoJSON geometry types, with
// GeometryCollection as the recursive case. Decoding never fails on
// malformed coordinate nesting: the variant stays empty so bounds
// calculation degrades to the world fallback, while the raw document is
// preserved so schema validation still sees the original shape.
type Geometry struct {
	Type string

	point           *Position
	lineString      []Position
	polygon         [][]Position
	multiPoint      []Position
	multiLineString [][]Position
	multiPolygon    [][][]Position
	geometries      []Geometry

	raw json.RawMessage
}

// NewPoint builds a Point geometry.
func NewPoint(lon, lat float64) *Geometry {
	p := Position{lon, lat}
	return &Geometry{Type: GeometryPoint, point: &p}
}

// RectPolygonFromBounds builds a Polygon geometry describing the rectangle of
// the given bounding box as a closed ring.
func RectPolygonFromBounds(b BBox) *Geometry {
	minLon, minLat, maxLon, maxLat := b[0], b[1], b[2], b[3]
	ring := []Position{
		{minLon, minLat},
		{maxLon, minLat},
		{maxLon, maxLat},
		{minLon, maxLat},
		{minLon, minLat},
	}
	return &Geometry{Type: GeometryPolygon, polygon: [][]Position{ring}}
}

// Geometries returns the members of a GeometryCollection.
func (g *Geometry) Geometries() []Geometry { return g.geometries }

type geometryEnvelope struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometries  []Geometry      `json:"geometries"`
}

func (g *Geometry) UnmarshalJSON(data []byte) error {
	g.raw = append(json.RawMessage(nil), data...)

	var env geometryEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		// Valid JSON but not a geometry object. The raw value is kept for
		// schema validation; bounds degrade to the fallback.
		return nil
	}

	g.Type = env.Type
	g.geometries = env.Geometries

	if len(env.Coordinates) == 0 {
		return nil
	}

	// Coordinate decode failures are tolerated: the variant stays empty and
	// the raw document carries the malformed shape to the validator.
	switch env.Type {
	case GeometryPoint:
		var p Position
		if err := json.Unmarshal(env.Coordinates, &p); err == nil {
			g.point = &p
		}
	case GeometryLineString:
		_ = json.Unmarshal(env.Coordinates, &g.lineString)
	case GeometryMultiPoint:
		_ = json.Unmarshal(env.Coordinates, &g.multiPoint)
	case GeometryPolygon:
		_ = json.Unmarshal(env.Coordinates, &g.polygon)
	case GeometryMultiLineString:
		_ = json.Unmarshal(env.Coordinates, &g.multiLineString)
	case GeometryMultiPolygon:
		_ = json.Unmarshal(env.Coordinates, &g.multiPolygon)
	}
	return nil
}

func (g *Geometry) MarshalJSON() ([]byte, error) {
	if g.raw != nil {
		return g.raw, nil
	}

	doc := map[string]any{"type": g.Type}
	switch g.Type {
	case GeometryPoint:
		if g.point != nil {
			doc["coordinates"] = *g.point
		}
	case GeometryLineString:
		doc["coordinates"] = g.lineString
	case GeometryMultiPoint:
		doc["coordinates"] = g.multiPoint
	case GeometryPolygon:
		doc["coordinates"] = g.polygon
	case GeometryMultiLineString:
		doc["coordinates"] = g.multiLineString
	case GeometryMultiPolygon:
		doc["coordinates"] = g.multiPolygon
	case GeometryCollection:
		doc["geometries"] = g.geometries
	}
	return json.Marshal(doc)
}

// flatten collects every coordinate pair reachable from the geometry,
// recursing into GeometryCollections. Unknown or empty geometries yield nil.
func (g *Geometry) flatten() []Position {
	if g == nil {
		return nil
	}
	switch g.Type {
	case GeometryPoint:
		if g.point == nil {
			return nil
		}
		return []Position{*g.point}
	case GeometryLineString:
		return g.lineString
	case GeometryMultiPoint:
		return g.multiPoint
	case GeometryPolygon:
		return flattenOnce(g.polygon)
	case GeometryMultiLineString:
		return flattenOnce(g.multiLineString)
	case GeometryMultiPolygon:
		var all []Position
		for _, polygon := range g.multiPolygon {
			all = append(all, flattenOnce(polygon)...)
		}
		return all
	case GeometryCollection:
		var all []Position
		for i := range g.geometries {
			all = append(all, g.geometries[i].flatten()...)
		}
		return all
	default:
		return nil
	}
}

func flattenOnce(rings [][]Position) []Position {
	var all []Position
	for _, ring := range rings {
		all = append(all, ring...)
	}
	return all
}
