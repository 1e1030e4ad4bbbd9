package schema

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/terradex/stacintake/internal/core/domain"
)

// ObjectType names a STAC object family with its own schema document.
type ObjectType string

const (
	ObjectItem       ObjectType = "item"
	ObjectCollection ObjectType = "collection"
	ObjectCatalog    ObjectType = "catalog"
)

// Resolution records the schema selection decision for one validation, so
// fallback behavior can be asserted independently of validation outcomes.
type Resolution struct {
	URI      string
	Version  string
	Fallback bool
}

// schemaPath returns the path of an object type's schema document below a
// version directory, mirroring the upstream repository layout.
func schemaPath(t ObjectType) string {
	return string(t) + "-spec/json-schema/" + string(t) + ".json"
}

// Resolve maps an object type and requested spec version to a concrete schema
// document in the store. The exact version wins; otherwise the highest
// locally available version is selected and the substitution logged. No
// available version at all is a ConfigurationError telling the operator how
// to populate the cache.
func (s *Store) Resolve(t ObjectType, version string) (Resolution, error) {
	exact := stacSchemaBase + "v" + version + "/" + schemaPath(t)
	if _, ok := s.docs[exact]; ok {
		return Resolution{URI: exact, Version: version}, nil
	}

	available := s.availableVersions(t)
	if len(available) == 0 {
		return Resolution{}, domain.NewConfigurationError(
			"no local STAC schema found for %s v%s; run 'stacintake-schemas %s' to populate the schema cache",
			t, version, s.dir)
	}

	sort.Slice(available, func(i, j int) bool {
		return compareVersions(parseVersion(available[i]), parseVersion(available[j])) > 0
	})
	best := available[0]
	slog.Warn("requested STAC schema version not cached, using fallback",
		"object_type", string(t), "requested", version, "using", best)

	return Resolution{
		URI:      stacSchemaBase + "v" + best + "/" + schemaPath(t),
		Version:  best,
		Fallback: true,
	}, nil
}

// availableVersions scans the store for version directories that actually
// contain the object type's schema document.
func (s *Store) availableVersions(t ObjectType) []string {
	suffix := "/" + schemaPath(t)
	var versions []string
	for uri := range s.docs {
		rest, ok := strings.CutPrefix(uri, stacSchemaBase+"v")
		if !ok || !strings.HasSuffix(rest, suffix) {
			continue
		}
		versions = append(versions, strings.TrimSuffix(rest, suffix))
	}
	return versions
}

// parseVersion splits a dot-separated version into an integer tuple.
// Non-numeric segments count as 0.
func parseVersion(v string) []int {
	parts := strings.Split(v, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		nums[i] = n
	}
	return nums
}

func compareVersions(a, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}
