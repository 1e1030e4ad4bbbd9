package domain

// BBox is a geographic bounding box ordered as
// [min_lon, min_lat, max_lon, max_lat]. It serializes as a JSON array.
type BBox [4]float64

// WorldBounds is the fallback bounding box used whenever no coordinate can be
// extracted from a geometry.
var WorldBounds = BBox{-180, -90, 180, 90}

// IsWorldBounds reports whether the box is exactly the fallback value.
func (b BBox) IsWorldBounds() bool { return b == WorldBounds }

// BoundsOf computes the bounding box of a geometry. It is a total function:
// nil, empty, or unrecognized geometries return WorldBounds, never an error.
func BoundsOf(g *Geometry) BBox {
	coords := g.flatten()
	if len(coords) == 0 {
		return WorldBounds
	}

	b := BBox{coords[0].Lon(), coords[0].Lat(), coords[0].Lon(), coords[0].Lat()}
	for _, c := range coords[1:] {
		if c.Lon() < b[0] {
			b[0] = c.Lon()
		}
		if c.Lat() < b[1] {
			b[1] = c.Lat()
		}
		if c.Lon() > b[2] {
			b[2] = c.Lon()
		}
		if c.Lat() > b[3] {
			b[3] = c.Lat()
		}
	}
	return b
}

// unionBounds folds a set of boxes into their combined envelope. Fallback
// boxes are filtered out first so a feature with no usable geometry never
// drags the union out to world bounds; if every box is the fallback, the
// union is the fallback too.
func unionBounds(boxes []BBox) BBox {
	var valid []BBox
	for _, b := range boxes {
		if !b.IsWorldBounds() {
			valid = append(valid, b)
		}
	}
	if len(valid) == 0 {
		return WorldBounds
	}

	u := valid[0]
	for _, b := range valid[1:] {
		if b[0] < u[0] {
			u[0] = b[0]
		}
		if b[1] < u[1] {
			u[1] = b[1]
		}
		if b[2] > u[2] {
			u[2] = b[2]
		}
		if b[3] > u[3] {
			u[3] = b[3]
		}
	}
	return u
}
