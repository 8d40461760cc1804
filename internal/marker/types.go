// Package marker renders features into a web map marker set document.
//
// The document maps one set key to a marker set:
//
//	{"<set>": {"label": "...", "toggleable": true, "markers": {"<key>": {...}}}}
//
// Marker positions use a Y-up frame: x and z are the projected plane and y
// is the elevation.
package marker

// Marker types.
const (
	TypePOI     = "poi"
	TypeShape   = "shape"
	TypeLine    = "line"
	TypeExtrude = "extrude"
)

// Set is a named group of markers.
type Set struct {
	Label         string             `json:"label"`
	Toggleable    bool               `json:"toggleable"`
	DefaultHidden bool               `json:"default-hidden"`
	Sorting       int                `json:"sorting"`
	Markers       map[string]*Marker `json:"markers"`
}

// Marker is one typed marker. Only the fields of its type are set.
type Marker struct {
	Type      string      `json:"type"`
	Label     string      `json:"label"`
	Position  Vector3     `json:"position"`
	Shape     []Vector2   `json:"shape,omitempty"`
	Holes     [][]Vector2 `json:"holes,omitempty"`
	ShapeY    *float64    `json:"shape-y,omitempty"`
	ShapeMinY *float64    `json:"shape-min-y,omitempty"`
	ShapeMaxY *float64    `json:"shape-max-y,omitempty"`
	Line      []Vector3   `json:"line,omitempty"`
	LineColor *Color      `json:"line-color,omitempty"`
	FillColor *Color      `json:"fill-color,omitempty"`
	DepthTest bool        `json:"depth-test"`
}

// Vector3 is a position with y pointing up.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector2 is a position on the horizontal plane.
type Vector2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}
