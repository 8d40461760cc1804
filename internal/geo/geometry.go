// Package geo holds the geometry and feature model shared by every stage of a conversion.
package geo

import (
	"fmt"
	"math"
)

// Type identifies the concrete kind of a Geometry.
type Type int

// Geometry types.
const (
	TypePoint Type = iota + 1
	TypeLineString
	TypeLinearRing
	TypePolygon
	TypeMultiPoint
	TypeMultiLineString
	TypeMultiPolygon
	TypeGeometryCollection
	TypeUnsupported
)

var typeNames = map[Type]string{
	TypePoint:              "Point",
	TypeLineString:         "LineString",
	TypeLinearRing:         "LinearRing",
	TypePolygon:            "Polygon",
	TypeMultiPoint:         "MultiPoint",
	TypeMultiLineString:    "MultiLineString",
	TypeMultiPolygon:       "MultiPolygon",
	TypeGeometryCollection: "GeometryCollection",
	TypeUnsupported:        "Unsupported",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a geometry type from its GeoJSON/KML name.
func ParseType(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name && t != TypeUnsupported {
			return t, true
		}
	}
	return 0, false
}

// Coordinate is a position with an optional elevation.
// Z is NaN when the coordinate is two dimensional.
type Coordinate struct {
	X, Y, Z float64
}

// XY creates a two dimensional coordinate.
func XY(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y, Z: math.NaN()}
}

// XYZ creates a three dimensional coordinate.
func XYZ(x, y, z float64) Coordinate {
	return Coordinate{X: x, Y: y, Z: z}
}

// HasZ reports whether the coordinate carries an elevation.
func (c Coordinate) HasZ() bool {
	return !math.IsNaN(c.Z)
}

// Equal2D compares the planar components.
func (c Coordinate) Equal2D(o Coordinate) bool {
	return c.X == o.X && c.Y == o.Y
}

// Sequence is an ordered list of coordinates.
type Sequence []Coordinate

// Clone returns a deep copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Closed reports whether the first and last coordinates coincide.
func (s Sequence) Closed() bool {
	return len(s) > 0 && s[0].Equal2D(s[len(s)-1])
}

// Geometry is a closed set of variants: *Point, *LineString, *LinearRing,
// *Polygon, *Collection and *Unsupported.
type Geometry interface {
	Type() Type
	isGeometry()
}

// Point is a single position.
type Point struct {
	Coord Coordinate
}

// LineString is an open path of two or more positions.
type LineString struct {
	Coords Sequence
}

// LinearRing is a closed path; see NewLinearRing for its invariants.
type LinearRing struct {
	Coords Sequence
}

// Polygon is a shell with optional holes. Every ring owns its coordinates.
type Polygon struct {
	Shell *LinearRing
	Holes []*LinearRing
}

// Collection groups child geometries. Kind is one of the Multi* types or
// TypeGeometryCollection.
type Collection struct {
	Kind     Type
	Children []Geometry
}

// Unsupported stands for a source element that has no geometry mapping
// (for example a KML Model). Renderers emit nothing for it.
type Unsupported struct {
	Name string
}

// Type implements Geometry.
func (*Point) Type() Type { return TypePoint }

// Type implements Geometry.
func (*LineString) Type() Type { return TypeLineString }

// Type implements Geometry.
func (*LinearRing) Type() Type { return TypeLinearRing }

// Type implements Geometry.
func (*Polygon) Type() Type { return TypePolygon }

// Type implements Geometry.
func (c *Collection) Type() Type { return c.Kind }

// Type implements Geometry.
func (*Unsupported) Type() Type { return TypeUnsupported }

func (*Point) isGeometry()       {}
func (*LineString) isGeometry()  {}
func (*LinearRing) isGeometry()  {}
func (*Polygon) isGeometry()     {}
func (*Collection) isGeometry()  {}
func (*Unsupported) isGeometry() {}

// NewLineString validates and wraps an open path.
func NewLineString(coords Sequence) (*LineString, error) {
	if len(coords) < 2 {
		return nil, Wrap(ErrIncompleteFeature, "line string", fmt.Errorf("%d positions, need at least 2", len(coords)))
	}
	return &LineString{Coords: coords}, nil
}

// NewLinearRing validates a ring: at least four positions, first equal to last.
func NewLinearRing(coords Sequence) (*LinearRing, error) {
	if len(coords) < 4 {
		return nil, Wrap(ErrIncompleteFeature, "linear ring", fmt.Errorf("%d positions, need at least 4", len(coords)))
	}
	if !coords.Closed() {
		return nil, Wrap(ErrIncompleteFeature, "linear ring", fmt.Errorf("ring is not closed"))
	}
	return &LinearRing{Coords: coords}, nil
}

// NewPolygon builds a polygon from raw rings, the first being the shell.
// Each ring is copied so the result shares no storage with the input.
func NewPolygon(rings []Sequence) (*Polygon, error) {
	if len(rings) == 0 {
		return nil, Wrap(ErrIncompleteFeature, "polygon", fmt.Errorf("no shell ring"))
	}
	shell, err := NewLinearRing(rings[0].Clone())
	if err != nil {
		return nil, err
	}
	p := &Polygon{Shell: shell}
	for _, r := range rings[1:] {
		hole, err := NewLinearRing(r.Clone())
		if err != nil {
			return nil, err
		}
		p.Holes = append(p.Holes, hole)
	}
	return p, nil
}

// IsCollection reports whether the type groups child geometries.
func (t Type) IsCollection() bool {
	switch t {
	case TypeMultiPoint, TypeMultiLineString, TypeMultiPolygon, TypeGeometryCollection:
		return true
	}
	return false
}
