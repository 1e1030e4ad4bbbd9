// Command schemas populates the local schema cache used for offline STAC
// validation. It downloads the fixed GeoJSON geometry schema family plus every
// published STAC schema discovered through the stac-spec GitHub tree, laid out
// as <dir>/geojson/<Name>.json and <dir>/stac/<version>/<path>.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	githubTreeURL  = "https://api.github.com/repos/radiantearth/stac-spec/git/trees/gh-pages?recursive=true"
	stacSchemaBase = "https://schemas.stacspec.org/"
	geoJSONBase    = "https://geojson.org/schema/"
)

var geoJSONSchemas = []string{
	"Feature.json",
	"Geometry.json",
	"FeatureCollection.json",
	"Point.json",
	"LineString.json",
	"Polygon.json",
	"MultiPoint.json",
	"MultiLineString.json",
	"MultiPolygon.json",
}

func main() {
	dir := "./schemas"
	if v := os.Getenv("STACINTAKE_SCHEMAS_DIR"); v != "" {
		dir = v
	}
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	client := &http.Client{Timeout: 60 * time.Second}

	log.Printf("updating schema cache in %s", dir)

	geoOK := downloadGeoJSON(client, dir)

	paths, err := discoverStacSchemas(client)
	if err != nil {
		log.Fatalf("discover STAC schemas: %v", err)
	}
	log.Printf("discovered %d STAC schema files", len(paths))

	stacOK := downloadStac(client, dir, paths)

	log.Printf("done: %d/%d GeoJSON, %d/%d STAC", geoOK, len(geoJSONSchemas), stacOK, len(paths))

	if geoOK == 0 || stacOK == 0 {
		os.Exit(1)
	}
}

// discoverStacSchemas lists every published JSON schema file in the stac-spec
// gh-pages tree, skipping in-development schemas.
func discoverStacSchemas(client *http.Client) ([]string, error) {
	resp, err := client.Get(githubTreeURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from GitHub tree API", resp.StatusCode)
	}

	var tree struct {
		Tree []struct {
			Path string `json:"path"`
		} `json:"tree"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tree); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}

	var paths []string
	for _, entry := range tree.Tree {
		p := entry.Path
		if !strings.HasSuffix(p, ".json") || !strings.Contains(p, "json-schema") {
			continue
		}
		if strings.HasPrefix(p, "dev/") {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func downloadGeoJSON(client *http.Client, dir string) int {
	ok := 0
	for _, name := range geoJSONSchemas {
		local := filepath.Join(dir, "geojson", name)
		if err := downloadSchema(client, geoJSONBase+name, local); err != nil {
			log.Printf("ERROR geojson/%s: %v", name, err)
			continue
		}
		log.Printf("  geojson/%s", name)
		ok++
	}
	return ok
}

func downloadStac(client *http.Client, dir string, paths []string) int {
	var mu sync.Mutex
	ok := 0

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 concurrent downloads

	for _, p := range paths {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			local := filepath.Join(dir, "stac", filepath.FromSlash(p))
			if err := downloadSchema(client, stacSchemaBase+p, local); err != nil {
				log.Printf("ERROR stac/%s: %v", p, err)
				return
			}
			log.Printf("  stac/%s", p)
			mu.Lock()
			ok++
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return ok
}

// downloadSchema fetches one schema, verifies it is valid JSON, and writes it
// to the local cache path.
func downloadSchema(client *http.Client, url, local string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON from %s", url)
	}

	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return err
	}
	return os.WriteFile(local, data, 0o644)
}
