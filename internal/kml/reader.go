package kml

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/stream"
)

// ReaderOptions configures a Reader.
type ReaderOptions struct {
	// Element is the local name of the feature element, Placemark by default.
	Element string
}

// Reader decodes one feature element at a time from a KML document.
type Reader struct {
	*stream.Cursor
	dec     *xml.Decoder
	element string
	index   int
	root    bool
}

// NewReader reads from r. closer, when not nil, is closed by Close.
func NewReader(r io.Reader, closer io.Closer, opts ReaderOptions) *Reader {
	element := opts.Element
	if element == "" {
		element = DefaultElement
	}
	rd := &Reader{dec: xml.NewDecoder(bufio.NewReader(r)), element: element}
	rd.Cursor = stream.NewCursor(rd.pull, closer)
	return rd
}

func (r *Reader) pull() (*geo.Feature, error) {
	for {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			if !r.root {
				return nil, malformed(errors.New("no root element"))
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, malformed(err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		r.root = true
		if start.Name.Local != r.element {
			continue
		}

		index := r.index
		r.index++

		var f *geo.Feature
		if geometryNames[r.element] {
			f, err = r.bareGeometry(&start, index)
		} else {
			var pm placemark
			if err := r.dec.DecodeElement(&pm, &start); err != nil {
				return nil, malformed(err)
			}
			f, err = toFeature(&pm, index)
		}
		if err != nil {
			return nil, err
		}
		if f == nil {
			log.Debug().Int("index", index).Str("element", r.element).Msg("Skipping element without geometry")
			continue
		}
		return f, nil
	}
}

// bareGeometry reads a feature element that is itself a geometry.
func (r *Reader) bareGeometry(start *xml.StartElement, index int) (*geo.Feature, error) {
	var e element
	if err := r.dec.DecodeElement(&e, start); err != nil {
		return nil, malformed(err)
	}
	g, _, err := decodeGeometry(&e)
	if err != nil {
		return nil, err
	}
	return &geo.Feature{ID: featureID(e.ID, index), Geometry: g, Properties: map[string]any{}}, nil
}

// featureID falls back to the element position when the source has no id.
func featureID(id string, index int) string {
	if id != "" {
		return id
	}
	return "feature-" + strconv.Itoa(index)
}

func toFeature(pm *placemark, index int) (*geo.Feature, error) {
	var g geo.Geometry
	for i := range pm.Children {
		out, ok, err := decodeGeometry(&pm.Children[i])
		if err != nil {
			return nil, err
		}
		if ok {
			g = out
			break
		}
	}
	if g == nil {
		return nil, nil
	}

	f := &geo.Feature{ID: featureID(pm.ID, index), Geometry: g, Properties: map[string]any{}}
	if pm.Name != "" {
		f.Properties[geo.NameProperty] = pm.Name
	}
	if pm.Description != "" {
		f.Properties["description"] = pm.Description
	}
	if pm.ExtendedData != nil {
		for _, d := range pm.ExtendedData.Data {
			f.Properties[d.Name] = strings.TrimSpace(d.Value)
		}
		for _, sd := range pm.ExtendedData.SchemaData {
			for _, d := range sd.SimpleData {
				f.Properties[d.Name] = strings.TrimSpace(d.Value)
			}
		}
	}
	return f, nil
}

var geometryNames = map[string]bool{
	"Point": true, "LineString": true, "LinearRing": true, "Polygon": true,
	"MultiGeometry": true, "Model": true, "Track": true, "MultiTrack": true,
}

// decodeGeometry reports ok=false for children that are not geometries at all,
// such as styleUrl or Snippet.
func decodeGeometry(e *element) (geo.Geometry, bool, error) {
	name := e.XMLName.Local
	if !geometryNames[name] {
		return nil, false, nil
	}

	switch name {
	case "Point":
		s, err := parseCoordinates(e.Coordinates)
		if err != nil {
			return nil, true, err
		}
		if len(s) == 0 {
			return nil, true, geo.Wrap(geo.ErrIncompleteFeature, "decode Point", fmt.Errorf("missing coordinates"))
		}
		return &geo.Point{Coord: s[0]}, true, nil
	case "LineString":
		s, err := parseCoordinates(e.Coordinates)
		if err != nil {
			return nil, true, err
		}
		ls, err := geo.NewLineString(s)
		return ls, true, err
	case "LinearRing":
		s, err := parseCoordinates(e.Coordinates)
		if err != nil {
			return nil, true, err
		}
		ring, err := geo.NewLinearRing(s)
		return ring, true, err
	case "Polygon":
		p, err := decodePolygon(e)
		return p, true, err
	case "MultiGeometry":
		c, err := decodeMulti(e)
		return c, true, err
	}
	return &geo.Unsupported{Name: name}, true, nil
}

func decodePolygon(e *element) (*geo.Polygon, error) {
	if e.Outer == nil || e.Outer.Ring == nil {
		return nil, geo.Wrap(geo.ErrIncompleteFeature, "decode Polygon", fmt.Errorf("missing outerBoundaryIs"))
	}
	rings := make([]geo.Sequence, 0, 1+len(e.Inner))
	shell, err := parseCoordinates(e.Outer.Ring.Coordinates)
	if err != nil {
		return nil, err
	}
	rings = append(rings, shell)
	for _, b := range e.Inner {
		if b.Ring == nil {
			continue
		}
		hole, err := parseCoordinates(b.Ring.Coordinates)
		if err != nil {
			return nil, err
		}
		rings = append(rings, hole)
	}
	return geo.NewPolygon(rings)
}

// decodeMulti narrows a MultiGeometry to a Multi* type when all of its
// children share one simple type.
func decodeMulti(e *element) (*geo.Collection, error) {
	c := &geo.Collection{Kind: geo.TypeGeometryCollection}
	var kind geo.Type
	uniform := true
	for i := range e.Children {
		g, ok, err := decodeGeometry(&e.Children[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if len(c.Children) == 0 {
			kind = g.Type()
		} else if g.Type() != kind {
			uniform = false
		}
		c.Children = append(c.Children, g)
	}
	if uniform && len(c.Children) > 0 {
		switch kind {
		case geo.TypePoint:
			c.Kind = geo.TypeMultiPoint
		case geo.TypeLineString:
			c.Kind = geo.TypeMultiLineString
		case geo.TypePolygon:
			c.Kind = geo.TypeMultiPolygon
		}
	}
	return c, nil
}

var commaSpace = regexp.MustCompile(`\s*,\s*`)

// parseCoordinates reads whitespace separated "lon,lat[,alt]" tuples.
func parseCoordinates(text string) (geo.Sequence, error) {
	fields := strings.Fields(commaSpace.ReplaceAllString(strings.TrimSpace(text), ","))
	out := make(geo.Sequence, 0, len(fields))
	for _, field := range fields {
		parts := strings.Split(field, ",")
		if len(parts) < 2 {
			return nil, geo.Wrap(geo.ErrIncompleteFeature, "decode coordinates", fmt.Errorf("tuple %q has %d values", field, len(parts)))
		}
		values := make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, malformed(fmt.Errorf("tuple %q: %w", field, err))
			}
			values[i] = v
		}
		if !geo.Finite(values[0], values[1]) || (len(values) >= 3 && math.IsInf(values[2], 0)) {
			return nil, malformed(fmt.Errorf("tuple %q is not finite", field))
		}
		if len(values) >= 3 {
			out = append(out, geo.XYZ(values[0], values[1], values[2]))
		} else {
			out = append(out, geo.XY(values[0], values[1]))
		}
	}
	return out, nil
}

func malformed(err error) error {
	return geo.Wrap(geo.ErrMalformedSource, "decode kml", err)
}
