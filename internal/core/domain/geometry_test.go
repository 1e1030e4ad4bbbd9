package domain_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/terradex/stacintake/internal/core/domain"
)

func TestGeometry_AltitudeDropped(t *testing.T) {
	g := geom(t, `{"type":"Point","coordinates":[10,20,3000]}`)
	b := domain.BoundsOf(g)
	want := domain.BBox{10, 20, 10, 20}
	if b != want {
		t.Errorf("expected %v, got %v", want, b)
	}
}

func TestGeometry_RawRoundTrip(t *testing.T) {
	// Malformed coordinate nesting must survive re-serialization unchanged so
	// schema validation sees exactly what the caller sent.
	raw := `{"type":"MultiPolygon","coordinates":[[0,0],[1,1]]}`
	g := geom(t, raw)

	out, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != raw {
		t.Errorf("expected raw round-trip %s, got %s", raw, out)
	}
}

func TestGeometry_PositionTooShort(t *testing.T) {
	var g domain.Geometry
	err := json.Unmarshal([]byte(`{"type":"Point","coordinates":[5]}`), &g)
	// The envelope decodes; the point variant stays empty.
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := domain.BoundsOf(&g); !b.IsWorldBounds() {
		t.Errorf("expected world bounds for short position, got %v", b)
	}
}

func TestNewPoint(t *testing.T) {
	g := domain.NewPoint(-3.7, 40.4)
	if g.Type != domain.GeometryPoint {
		t.Errorf("expected Point, got %s", g.Type)
	}

	out, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"coordinates":[-3.7,40.4]`) {
		t.Errorf("unexpected serialization: %s", out)
	}
}

func TestRectPolygonFromBounds_ClosedRing(t *testing.T) {
	g := domain.RectPolygonFromBounds(domain.BBox{-10, -5, 10, 5})
	if g.Type != domain.GeometryPolygon {
		t.Fatalf("expected Polygon, got %s", g.Type)
	}

	out, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var env struct {
		Coordinates [][][2]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(env.Coordinates) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(env.Coordinates))
	}
	ring := env.Coordinates[0]
	if len(ring) != 5 {
		t.Fatalf("expected 5 positions, got %d", len(ring))
	}
	if ring[0] != ring[4] {
		t.Errorf("ring not closed: first %v, last %v", ring[0], ring[4])
	}

	// Round-trip bounds must match the input box.
	b := domain.BoundsOf(geom(t, string(out)))
	want := domain.BBox{-10, -5, 10, 5}
	if b != want {
		t.Errorf("expected %v, got %v", want, b)
	}
}

func TestParseDocument_NonObjectGeometryTolerated(t *testing.T) {
	// One feature carrying a geometry that is valid JSON but not an object
	// must not sink the whole document.
	body := `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"bad","geometry":5,"properties":{}},
		{"type":"Feature","id":"good","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}
	]}`
	doc, err := domain.ParseDocument([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(doc.Features))
	}

	bad := doc.Features[0]
	if b := domain.BoundsOf(bad.Geometry); !b.IsWorldBounds() {
		t.Errorf("expected world bounds for non-object geometry, got %v", b)
	}
	out, err := json.Marshal(bad.Geometry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "5" {
		t.Errorf("expected raw value to survive, got %s", out)
	}

	good := doc.Features[1]
	want := domain.BBox{1, 2, 1, 2}
	if b := domain.BoundsOf(good.Geometry); b != want {
		t.Errorf("expected %v for intact feature, got %v", want, b)
	}
}

func TestParseDocument_NonObjectPropertiesTolerated(t *testing.T) {
	body := `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"bad","geometry":null,"properties":"oops"},
		{"type":"Feature","id":"good","geometry":null,"properties":{"name":"x"}}
	]}`
	doc, err := domain.ParseDocument([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Features[0].Properties != nil {
		t.Errorf("expected nil properties for non-object value, got %v", doc.Features[0].Properties)
	}
	if doc.Features[1].Properties["name"] != "x" {
		t.Errorf("intact feature properties lost: %v", doc.Features[1].Properties)
	}
}

func TestParseDocument_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"type":"Feature"`},
		{"unsupported type", `{"type":"Point","coordinates":[1,2]}`},
		{"missing type", `{"features":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.ParseDocument([]byte(tc.body))
			if err == nil {
				t.Fatal("expected error")
			}
			var inputErr *domain.InputError
			if !asError(err, &inputErr) {
				t.Errorf("expected InputError, got %T: %v", err, err)
			}
		})
	}
}
