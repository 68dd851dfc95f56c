// Package geo reads the GeoJSON boundary reference the choropleth joins
// region names against.
package geo

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

// FeatureIDKey is the property path regions are joined on.
const FeatureIDKey = "properties.name"

type feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

// Reference is a parsed boundary file keyed by feature name.
type Reference struct {
	raw   json.RawMessage
	names map[string]bool
}

// Load reads and parses a GeoJSON FeatureCollection.
func Load(path string) (*Reference, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ref, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ref, nil
}

// Parse indexes a GeoJSON FeatureCollection by properties.name. Features
// without a string name are kept in the raw document but cannot be joined.
func Parse(b []byte) (*Reference, error) {
	var fc featureCollection
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, err
	}
	if fc.Type != "FeatureCollection" {
		return nil, errors.New("geojson: not a FeatureCollection")
	}
	ref := &Reference{raw: json.RawMessage(b), names: make(map[string]bool, len(fc.Features))}
	for _, f := range fc.Features {
		if name, ok := f.Properties["name"].(string); ok && name != "" {
			ref.names[name] = true
		}
	}
	return ref, nil
}

// Has reports whether a feature is named name.
func (r *Reference) Has(name string) bool { return r.names[name] }

// Names returns the sorted feature names.
func (r *Reference) Names() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Raw is the original document, served as-is to the map widget.
func (r *Reference) Raw() json.RawMessage { return r.raw }
