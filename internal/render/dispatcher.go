// Package render walks a feature geometry and emits sink primitives: markers,
// paths, shapes and extruded solids with resolved names, styles and elevations.
package render

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/elevation"
	"github.com/woozymasta/geoconv/internal/geo"
)

// Kind is the shape of an emitted primitive.
type Kind int

// Primitive kinds.
const (
	// KindMarker is a single position.
	KindMarker Kind = iota + 1
	// KindLine is an open path.
	KindLine
	// KindRing is a standalone closed path.
	KindRing
	// KindShape is a flat polygon with optional holes.
	KindShape
	// KindSolid is a polygon extruded upwards by Height.
	KindSolid
)

func (k Kind) String() string {
	switch k {
	case KindMarker:
		return "marker"
	case KindLine:
		return "line"
	case KindRing:
		return "ring"
	case KindShape:
		return "shape"
	case KindSolid:
		return "solid"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Primitive is one renderable element. Coordinates are already projected;
// Z carries the resolved elevation of each vertex.
type Primitive struct {
	Kind   Kind
	Key    string
	Label  string
	Source geo.Type
	Style  string

	Position geo.Coordinate
	Points   geo.Sequence
	Holes    []geo.Sequence

	// Elevation is the single elevation of a ring, shape or solid base.
	Elevation float64
	Height    float64
	PerVertex bool
}

// Capabilities describes what a sink can represent natively.
type Capabilities struct {
	PerVertexLines bool
	PerVertexRings bool
}

// Sink consumes primitives. Implementations are not shared between dispatchers.
type Sink interface {
	Capabilities() Capabilities
	Emit(p *Primitive) error
}

// Options configures a Dispatcher.
type Options struct {
	Policy  elevation.Policy
	Styles  StyleTable
	Default string
	// Extrude, when set, turns polygons into solids of that height.
	Extrude *float64
	// Label overrides the display name of every emission.
	Label           string
	NormalizeNaming bool
	// Strict reports unsupported geometries instead of skipping them.
	Strict bool
}

// Dispatcher renders features into a Sink.
type Dispatcher struct {
	sink  Sink
	caps  Capabilities
	opts  Options
	count int
}

// NewDispatcher binds a sink and its options.
func NewDispatcher(sink Sink, opts Options) *Dispatcher {
	return &Dispatcher{sink: sink, caps: sink.Capabilities(), opts: opts}
}

// Render emits every primitive of f and returns how many were emitted.
func (d *Dispatcher) Render(f *geo.Feature) (int, error) {
	ordinal := d.count
	d.count++

	key, label := d.names(f, ordinal)
	return d.render(f.Geometry, key, label, "")
}

// names resolves the key (name, id, ordinal) and the display label
// (caller label, name, id, ordinal).
func (d *Dispatcher) names(f *geo.Feature, ordinal int) (string, string) {
	key := strconv.Itoa(ordinal)
	if name, ok := f.Name(); ok {
		key = name
	} else if f.ID != "" {
		key = f.ID
	}

	label := key
	if d.opts.Label != "" {
		label = d.opts.Label
	}

	if d.opts.NormalizeNaming {
		if slug := Slug(key); slug != "" {
			key = slug
		}
	}
	return key, label
}

func (d *Dispatcher) style(typ geo.Type, inherited string) string {
	if inherited != "" {
		return inherited
	}
	if s, ok := d.opts.Styles.lookup(typ); ok {
		return s
	}
	return d.opts.Default
}

func (d *Dispatcher) render(g geo.Geometry, key, label, inherited string) (int, error) {
	p := &Primitive{Key: key, Label: label}
	if g != nil {
		p.Source = g.Type()
		p.Style = d.style(g.Type(), inherited)
	}

	switch v := g.(type) {
	case *geo.Point:
		p.Kind = KindMarker
		p.Position = v.Coord
		p.Position.Z = d.opts.Policy.Point(v.Coord)
		p.Elevation = p.Position.Z
	case *geo.LineString:
		p.Kind = KindLine
		p.Points, p.Elevation, p.PerVertex = d.path(v.Coords, d.caps.PerVertexLines)
	case *geo.LinearRing:
		p.Kind = KindRing
		p.Points, p.Elevation, p.PerVertex = d.path(v.Coords, d.caps.PerVertexRings)
	case *geo.Polygon:
		p.Kind = KindShape
		p.Points, p.Elevation, p.PerVertex = d.path(v.Shell.Coords, d.caps.PerVertexRings)
		for _, h := range v.Holes {
			p.Holes = append(p.Holes, d.hole(h.Coords, p.Elevation, p.PerVertex))
		}
		if d.opts.Extrude != nil {
			p.Kind = KindSolid
			p.Height = *d.opts.Extrude
		}
	case *geo.Collection:
		return d.collection(v, key, label, inherited)
	default:
		name := "nil"
		if u, ok := g.(*geo.Unsupported); ok {
			name = u.Name
		}
		if d.opts.Strict {
			return 0, geo.Wrap(geo.ErrUnsupportedConversion, "render "+key, fmt.Errorf("unsupported geometry %s", name))
		}
		log.Debug().Str("key", key).Str("geometry", name).Msg("Skipping unsupported geometry")
		return 0, nil
	}

	if err := d.sink.Emit(p); err != nil {
		return 0, err
	}
	return 1, nil
}

// collection renders children under key-i. Multi* children take the style
// of their collection type; GeometryCollection passes its own style only
// when the table defines one.
func (d *Dispatcher) collection(c *geo.Collection, key, label, inherited string) (int, error) {
	childStyle := inherited
	if childStyle == "" {
		if c.Kind == geo.TypeGeometryCollection {
			childStyle, _ = d.opts.Styles.lookup(c.Kind)
		} else {
			childStyle = d.style(c.Kind, "")
		}
	}

	total := 0
	for i, child := range c.Children {
		n, err := d.render(child, key+"-"+strconv.Itoa(i), label, childStyle)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// path resolves vertex elevations. Without per vertex support every vertex
// takes the aggregated elevation.
func (d *Dispatcher) path(s geo.Sequence, perVertexCapable bool) (geo.Sequence, float64, bool) {
	elev := d.opts.Policy.Of(s)
	if perVertexCapable && d.opts.Policy.PerVertex() {
		out := s.Clone()
		for i := range out {
			out[i].Z = d.opts.Policy.Vertex(out[i], elev)
		}
		return out, elev, true
	}
	return flatten(s, elev), elev, false
}

// hole places a hole at the shell elevation, keeping its own vertex
// elevations only when the shell does.
func (d *Dispatcher) hole(s geo.Sequence, shell float64, perVertex bool) geo.Sequence {
	if !perVertex {
		return flatten(s, shell)
	}
	out := s.Clone()
	for i := range out {
		out[i].Z = d.opts.Policy.Vertex(out[i], shell)
	}
	return out
}

func flatten(s geo.Sequence, z float64) geo.Sequence {
	out := s.Clone()
	for i := range out {
		out[i].Z = z
	}
	return out
}
