package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
)

const hashSuffixLen = 12

// DeterministicID derives a stable, content-addressed identifier for a
// feature: `{collection}-{base}-{hash}` where base is the feature's own id
// normalized for catalog use (or "feature" when absent) and hash is the first
// 12 hex characters of the SHA-256 digest of a canonical, key-sorted JSON
// encoding of the feature content plus its context. Identical inputs always
// produce identical ids; any change to geometry, properties, feature id,
// collection, or source key changes the id.
func DeterministicID(f *Feature, collectionID, sourceKey string) (string, error) {
	if f.invalidProperties {
		return "", NewInputError("feature properties is not a JSON object; cannot canonicalize for hashing")
	}

	components := map[string]any{
		"collection": collectionID,
		"source":     sourceKey,
		"geometry":   genericGeometry(f.Geometry),
		"properties": genericProperties(f.Properties),
	}
	if id, ok := presentID(f.ID); ok {
		components["feature_id"] = id
	}

	// encoding/json sorts map keys and emits compact output, which is the
	// canonical form the digest depends on.
	payload, err := json.Marshal(components)
	if err != nil {
		return "", NewInputError("canonicalize feature for hashing: %w", err)
	}

	sum := sha256.Sum256(payload)
	suffix := hex.EncodeToString(sum[:])[:hashSuffixLen]

	return collectionID + "-" + normalizeBaseID(f.ID) + "-" + suffix, nil
}

// genericGeometry re-decodes the geometry into plain maps and slices so the
// canonical encoding is independent of the Geometry representation.
func genericGeometry(g *Geometry) any {
	if g == nil {
		return map[string]any{}
	}
	data, err := json.Marshal(g)
	if err != nil {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return map[string]any{}
	}
	return v
}

func genericProperties(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}

// presentID reports whether the feature carries a usable id. Empty strings
// and zero numbers count as absent; non-scalar ids are ignored.
func presentID(id any) (any, bool) {
	switch v := id.(type) {
	case string:
		return v, v != ""
	case float64:
		return v, v != 0
	case json.Number:
		return v, v.String() != "0"
	default:
		return nil, false
	}
}

// normalizeBaseID coerces the feature id to a catalog-safe string: lower-case
// with spaces and underscores replaced by hyphens, or the literal "feature"
// when the id is absent or not a string/number.
func normalizeBaseID(id any) string {
	var base string
	switch v := id.(type) {
	case string:
		base = v
	case float64:
		base = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		base = v.String()
	default:
		return "feature"
	}
	if base == "" {
		return "feature"
	}
	base = strings.ToLower(base)
	base = strings.ReplaceAll(base, " ", "-")
	return strings.ReplaceAll(base, "_", "-")
}

// CollectionFromKey derives a collection name from the storage path of the
// source document: the second-to-last path segment, or the filename stem when
// the object sits at the bucket root. The result is normalized the same way
// as feature ids; an empty result falls back to "user-data".
//
//	"uploads/airports/airports-part-1.geojson" -> "airports"
//	"countries.geojson"                        -> "countries"
func CollectionFromKey(key string) string {
	parts := strings.Split(key, "/")

	var base string
	if len(parts) < 2 {
		filename := parts[0]
		if strings.HasSuffix(strings.ToLower(filename), ".geojson") {
			base = filename[:len(filename)-len(".geojson")]
		} else if i := strings.LastIndex(filename, "."); i >= 0 {
			base = filename[:i]
		} else {
			base = filename
		}
	} else {
		base = parts[len(parts)-2]
	}

	name := strings.ToLower(base)
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		return "user-data"
	}
	return name
}
