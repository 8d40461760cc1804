package kml

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/stream"
)

// WriterOptions configures a Writer. KML always keeps full coordinate precision.
type WriterOptions struct {
	Layout     stream.Layout
	DocumentID string
}

// Writer encodes features as Placemarks inside a single Document.
type Writer struct {
	buf     *bufio.Writer
	enc     *xml.Encoder
	closer  io.Closer
	opts    WriterOptions
	started bool
	closed  bool
}

// NewWriter writes to w. closer, when not nil, is closed by Close.
func NewWriter(w io.Writer, closer io.Closer, opts WriterOptions) *Writer {
	buf := bufio.NewWriter(w)
	enc := xml.NewEncoder(buf)
	if !opts.Layout.Compact {
		enc.Indent("", opts.Layout.IndentString())
	}
	return &Writer{buf: buf, enc: enc, closer: closer, opts: opts}
}

func (w *Writer) header() error {
	if w.started {
		return nil
	}
	w.started = true

	if _, err := w.buf.WriteString(xml.Header); err != nil {
		return err
	}
	root := xml.StartElement{
		Name: xml.Name{Local: "kml"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: Namespace}},
	}
	if err := w.enc.EncodeToken(root); err != nil {
		return err
	}
	doc := xml.StartElement{Name: xml.Name{Local: "Document"}}
	if w.opts.DocumentID != "" {
		doc.Attr = []xml.Attr{{Name: xml.Name{Local: "id"}, Value: w.opts.DocumentID}}
	}
	return w.enc.EncodeToken(doc)
}

// Write implements stream.Writer.
func (w *Writer) Write(f *geo.Feature) error {
	if w.closed {
		return geo.Wrap(geo.ErrResourceIO, "write kml", fmt.Errorf("writer is closed"))
	}
	pm, err := encodePlacemark(f)
	if err != nil {
		return err
	}
	if err := w.header(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write kml", err)
	}
	if err := w.enc.Encode(pm); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write kml", err)
	}
	return nil
}

// Close implements stream.Writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.finish()
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = geo.Wrap(geo.ErrResourceIO, "close kml", cerr)
		}
	}
	return err
}

func (w *Writer) finish() error {
	if err := w.header(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write kml", err)
	}
	for _, name := range []string{"Document", "kml"} {
		if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}}); err != nil {
			return geo.Wrap(geo.ErrResourceIO, "write kml", err)
		}
	}
	if err := w.enc.Flush(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "flush kml", err)
	}
	if _, err := w.buf.WriteString(w.opts.Layout.Newline()); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write kml", err)
	}
	if err := w.buf.Flush(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "flush kml", err)
	}
	return nil
}

func encodePlacemark(f *geo.Feature) (*placemarkOut, error) {
	pm := &placemarkOut{ID: f.ID}

	var keys []string
	for k, v := range f.Properties {
		switch k {
		case geo.NameProperty:
			if s, ok := v.(string); ok {
				pm.Name = s
				continue
			}
		case "description":
			if s, ok := v.(string); ok {
				pm.Description = s
				continue
			}
		}
		keys = append(keys, k)
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		pm.ExtendedData = &extendedDataOut{}
		for _, k := range keys {
			pm.ExtendedData.Data = append(pm.ExtendedData.Data, data{Name: k, Value: formatValue(f.Properties[k])})
		}
	}

	g, err := encodeGeometry(f.Geometry)
	if err != nil {
		return nil, err
	}
	pm.Geometry = g
	return pm, nil
}

func encodeGeometry(g geo.Geometry) (*geometryOut, error) {
	switch v := g.(type) {
	case nil, *geo.Unsupported:
		return nil, nil
	case *geo.Point:
		return named("Point", geo.Sequence{v.Coord}), nil
	case *geo.LineString:
		return named("LineString", v.Coords), nil
	case *geo.LinearRing:
		return named("LinearRing", v.Coords), nil
	case *geo.Polygon:
		out := &geometryOut{
			XMLName: xml.Name{Local: "Polygon"},
			Outer:   &ringOut{Ring: named("LinearRing", v.Shell.Coords)},
		}
		for _, h := range v.Holes {
			out.Inner = append(out.Inner, ringOut{Ring: named("LinearRing", h.Coords)})
		}
		return out, nil
	case *geo.Collection:
		out := &geometryOut{XMLName: xml.Name{Local: "MultiGeometry"}}
		for _, child := range v.Children {
			c, err := encodeGeometry(child)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out.Children = append(out.Children, c)
			}
		}
		return out, nil
	}
	return nil, geo.Wrap(geo.ErrUnsupportedConversion, "encode kml", fmt.Errorf("geometry %T", g))
}

func named(name string, s geo.Sequence) *geometryOut {
	return &geometryOut{XMLName: xml.Name{Local: name}, Coordinates: formatCoordinates(s)}
}

func formatCoordinates(s geo.Sequence) string {
	var sb strings.Builder
	for i, c := range s {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatFloat(c.X, 'f', -1, 64))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(c.Y, 'f', -1, 64))
		if c.HasZ() {
			sb.WriteByte(',')
			sb.WriteString(strconv.FormatFloat(c.Z, 'f', -1, 64))
		}
	}
	return sb.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
