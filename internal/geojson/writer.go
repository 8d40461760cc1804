package geojson

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/stream"
)

// FullPrecision keeps every significant digit of a coordinate.
const FullPrecision = -1

// WriterOptions configures a Writer.
type WriterOptions struct {
	Layout stream.Layout
	// Precision is the maximum number of decimal places, or FullPrecision.
	Precision int
}

// Writer encodes features into a FeatureCollection as they arrive.
type Writer struct {
	w       *bufio.Writer
	closer  io.Closer
	opts    WriterOptions
	indent  string
	nl      string
	count   int
	started bool
	closed  bool
}

// NewWriter writes to w. closer, when not nil, is closed by Close.
func NewWriter(w io.Writer, closer io.Closer, opts WriterOptions) *Writer {
	return &Writer{
		w:      bufio.NewWriter(w),
		closer: closer,
		opts:   opts,
		indent: opts.Layout.IndentString(),
		nl:     opts.Layout.Newline(),
	}
}

func (w *Writer) header() error {
	if w.started {
		return nil
	}
	w.started = true

	sep := " "
	if w.opts.Layout.Compact {
		sep = ""
	}
	_, err := fmt.Fprintf(w.w, "{%s%s\"type\":%s\"%s\",%s%s\"features\":%s[",
		w.nl, w.indent, sep, TypeFeatureCollection, w.nl, w.indent, sep)
	return err
}

// Write implements stream.Writer.
func (w *Writer) Write(f *geo.Feature) error {
	if w.closed {
		return geo.Wrap(geo.ErrResourceIO, "write geojson", fmt.Errorf("writer is closed"))
	}
	wire, err := w.encodeFeature(f)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if !w.opts.Layout.Compact {
		enc.SetIndent(w.indent+w.indent, w.indent)
	}
	if err := enc.Encode(wire); err != nil {
		return geo.Wrap(geo.ErrUnsupportedConversion, "encode feature "+f.ID, err)
	}

	if err := w.header(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write geojson", err)
	}
	if w.count > 0 {
		if err := w.w.WriteByte(','); err != nil {
			return geo.Wrap(geo.ErrResourceIO, "write geojson", err)
		}
	}
	if _, err := w.w.WriteString(w.nl + w.indent + w.indent); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write geojson", err)
	}
	if _, err := w.w.Write(bytes.TrimRight(buf.Bytes(), "\n")); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write geojson", err)
	}
	w.count++
	return nil
}

// Close implements stream.Writer. It finalizes the collection even when no
// feature was written.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.finish()
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = geo.Wrap(geo.ErrResourceIO, "close geojson", cerr)
		}
	}
	return err
}

func (w *Writer) finish() error {
	if err := w.header(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write geojson", err)
	}
	tail := "]}"
	if w.count > 0 {
		tail = w.nl + w.indent + "]" + w.nl + "}" + w.nl
	} else if !w.opts.Layout.Compact {
		tail = "]" + w.nl + "}" + w.nl
	}
	if _, err := w.w.WriteString(tail); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write geojson", err)
	}
	if err := w.w.Flush(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "flush geojson", err)
	}
	return nil
}

func (w *Writer) encodeFeature(f *geo.Feature) (*Feature, error) {
	props := f.Properties
	if props == nil {
		props = map[string]any{}
	}
	wire := &Feature{Type: TypeFeature, Properties: props}
	if f.ID != "" {
		wire.ID = f.ID
	}
	g, err := w.encodeGeometry(f.Geometry)
	if err != nil {
		return nil, err
	}
	wire.Geometry = g
	return wire, nil
}

func (w *Writer) encodeGeometry(g geo.Geometry) (*Geometry, error) {
	var coords any
	switch v := g.(type) {
	case nil, *geo.Unsupported:
		return nil, nil
	case *geo.Point:
		coords = w.position(v.Coord)
	case *geo.LineString:
		coords = w.line(v.Coords)
	case *geo.LinearRing:
		// GeoJSON has no ring type.
		return w.raw(geo.TypeLineString.String(), w.line(v.Coords))
	case *geo.Polygon:
		coords = w.polygon(v)
	case *geo.Collection:
		return w.collection(v)
	default:
		return nil, geo.Wrap(geo.ErrUnsupportedConversion, "encode geojson", fmt.Errorf("geometry %T", g))
	}
	return w.raw(g.Type().String(), coords)
}

func (w *Writer) collection(c *geo.Collection) (*Geometry, error) {
	switch c.Kind {
	case geo.TypeMultiPoint:
		out := make(lineCoords, 0, len(c.Children))
		for _, child := range c.Children {
			if p, ok := child.(*geo.Point); ok {
				out = append(out, w.position(p.Coord))
			}
		}
		return w.raw(c.Kind.String(), out)
	case geo.TypeMultiLineString:
		out := make(polygonCoords, 0, len(c.Children))
		for _, child := range c.Children {
			switch l := child.(type) {
			case *geo.LineString:
				out = append(out, w.line(l.Coords))
			case *geo.LinearRing:
				out = append(out, w.line(l.Coords))
			}
		}
		return w.raw(c.Kind.String(), out)
	case geo.TypeMultiPolygon:
		out := make(multiPolyCoords, 0, len(c.Children))
		for _, child := range c.Children {
			if p, ok := child.(*geo.Polygon); ok {
				out = append(out, w.polygon(p))
			}
		}
		return w.raw(c.Kind.String(), out)
	}

	out := &Geometry{Type: geo.TypeGeometryCollection.String(), Geometries: []*Geometry{}}
	for _, child := range c.Children {
		g, err := w.encodeGeometry(child)
		if err != nil {
			return nil, err
		}
		if g != nil {
			out.Geometries = append(out.Geometries, g)
		}
	}
	return out, nil
}

func (w *Writer) raw(typ string, coords any) (*Geometry, error) {
	data, err := json.Marshal(coords)
	if err != nil {
		return nil, geo.Wrap(geo.ErrUnsupportedConversion, "encode "+typ, err)
	}
	return &Geometry{Type: typ, Coordinates: data}, nil
}

func (w *Writer) position(c geo.Coordinate) position {
	p := position{geo.Round(c.X, w.opts.Precision), geo.Round(c.Y, w.opts.Precision)}
	if c.HasZ() {
		p = append(p, geo.Round(c.Z, w.opts.Precision))
	}
	return p
}

func (w *Writer) line(s geo.Sequence) lineCoords {
	out := make(lineCoords, len(s))
	for i, c := range s {
		out[i] = w.position(c)
	}
	return out
}

func (w *Writer) polygon(p *geo.Polygon) polygonCoords {
	out := make(polygonCoords, 0, 1+len(p.Holes))
	out = append(out, w.line(p.Shell.Coords))
	for _, h := range p.Holes {
		out = append(out, w.line(h.Coords))
	}
	return out
}
