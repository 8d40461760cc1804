// Package geojson streams GeoJSON feature collections.
package geojson

import "encoding/json"

// Type names used on the wire.
const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
)

// Feature represents a single geographic feature with geometry and properties.
type Feature struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry represents the geometry of a feature (Point, Polygon, etc.).
// Coordinates keeps its nesting raw until the type is known.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	Geometries  []*Geometry     `json:"geometries,omitempty"`
}

type (
	position        []float64
	lineCoords      []position
	polygonCoords   []lineCoords
	multiPolyCoords []polygonCoords
)
