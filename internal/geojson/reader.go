package geojson

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/stream"
)

// Reader decodes one feature of a FeatureCollection at a time. Only the
// feature being decoded is held in memory.
type Reader struct {
	*stream.Cursor
	dec        *json.Decoder
	index      int
	opened     bool
	inFeatures bool
	finished   bool
}

// NewReader reads from r. closer, when not nil, is closed by Close.
func NewReader(r io.Reader, closer io.Closer) *Reader {
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()

	rd := &Reader{dec: dec}
	rd.Cursor = stream.NewCursor(rd.pull, closer)
	return rd
}

func (r *Reader) pull() (*geo.Feature, error) {
	for {
		if r.finished {
			return nil, io.EOF
		}
		if !r.inFeatures {
			if err := r.seekFeatures(); err != nil {
				return nil, err
			}
			continue
		}
		if !r.dec.More() {
			if _, err := r.dec.Token(); err != nil {
				return nil, malformed(err)
			}
			r.inFeatures = false
			continue
		}

		var wire Feature
		if err := r.dec.Decode(&wire); err != nil {
			return nil, malformed(err)
		}
		index := r.index
		r.index++

		f, err := toFeature(&wire, index)
		if err != nil {
			return nil, err
		}
		if f == nil {
			log.Debug().Int("index", index).Msg("Skipping feature without geometry")
			continue
		}
		return f, nil
	}
}

// seekFeatures walks the top level object keys until the features array is
// open or the object ends.
func (r *Reader) seekFeatures() error {
	if !r.opened {
		tok, err := r.dec.Token()
		if errors.Is(err, io.EOF) {
			return malformed(fmt.Errorf("empty document"))
		}
		if err != nil {
			return malformed(err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return malformed(fmt.Errorf("expected object, got %v", tok))
		}
		r.opened = true
	}

	for r.dec.More() {
		tok, err := r.dec.Token()
		if err != nil {
			return malformed(err)
		}
		key, _ := tok.(string)

		switch key {
		case "features":
			tok, err := r.dec.Token()
			if err != nil {
				return malformed(err)
			}
			if d, ok := tok.(json.Delim); !ok || d != '[' {
				return malformed(fmt.Errorf("features must be an array"))
			}
			r.inFeatures = true
			return nil
		case "type":
			var typ string
			if err := r.dec.Decode(&typ); err != nil {
				return malformed(err)
			}
			if typ != TypeFeatureCollection {
				return malformed(fmt.Errorf("unexpected document type %q", typ))
			}
		default:
			var skip json.RawMessage
			if err := r.dec.Decode(&skip); err != nil {
				return malformed(err)
			}
		}
	}

	if _, err := r.dec.Token(); err != nil {
		return malformed(err)
	}
	r.finished = true
	return nil
}

func toFeature(wire *Feature, index int) (*geo.Feature, error) {
	if wire.Geometry == nil {
		return nil, nil
	}
	g, err := decodeGeometry(wire.Geometry)
	if err != nil {
		return nil, err
	}

	f := &geo.Feature{Geometry: g, Properties: wire.Properties}
	switch id := wire.ID.(type) {
	case string:
		f.ID = id
	case json.Number:
		f.ID = id.String()
	case nil:
		f.ID = "feature-" + strconv.Itoa(index)
	default:
		return nil, malformed(fmt.Errorf("feature %d: unsupported id %v", index, id))
	}
	if f.Properties == nil {
		f.Properties = map[string]any{}
	}
	return f, nil
}

func decodeGeometry(g *Geometry) (geo.Geometry, error) {
	typ, ok := geo.ParseType(g.Type)
	if !ok || typ == geo.TypeLinearRing {
		return nil, malformed(fmt.Errorf("unknown geometry type %q", g.Type))
	}

	if typ == geo.TypeGeometryCollection {
		c := &geo.Collection{Kind: typ}
		for _, child := range g.Geometries {
			if child == nil {
				continue
			}
			out, err := decodeGeometry(child)
			if err != nil {
				return nil, err
			}
			c.Children = append(c.Children, out)
		}
		return c, nil
	}

	switch typ {
	case geo.TypePoint:
		var p position
		if err := unmarshal(g, &p); err != nil {
			return nil, err
		}
		c, err := p.coordinate()
		if err != nil {
			return nil, err
		}
		return &geo.Point{Coord: c}, nil
	case geo.TypeLineString:
		var l lineCoords
		if err := unmarshal(g, &l); err != nil {
			return nil, err
		}
		return l.lineString()
	case geo.TypePolygon:
		var p polygonCoords
		if err := unmarshal(g, &p); err != nil {
			return nil, err
		}
		return p.polygon()
	case geo.TypeMultiPoint:
		var l lineCoords
		if err := unmarshal(g, &l); err != nil {
			return nil, err
		}
		c := &geo.Collection{Kind: typ}
		for _, p := range l {
			coord, err := p.coordinate()
			if err != nil {
				return nil, err
			}
			c.Children = append(c.Children, &geo.Point{Coord: coord})
		}
		return c, nil
	case geo.TypeMultiLineString:
		var p polygonCoords
		if err := unmarshal(g, &p); err != nil {
			return nil, err
		}
		c := &geo.Collection{Kind: typ}
		for _, l := range p {
			ls, err := l.lineString()
			if err != nil {
				return nil, err
			}
			c.Children = append(c.Children, ls)
		}
		return c, nil
	case geo.TypeMultiPolygon:
		var mp multiPolyCoords
		if err := unmarshal(g, &mp); err != nil {
			return nil, err
		}
		c := &geo.Collection{Kind: typ}
		for _, p := range mp {
			poly, err := p.polygon()
			if err != nil {
				return nil, err
			}
			c.Children = append(c.Children, poly)
		}
		return c, nil
	}
	return nil, malformed(fmt.Errorf("unknown geometry type %q", g.Type))
}

func unmarshal(g *Geometry, v any) error {
	if len(g.Coordinates) == 0 {
		return geo.Wrap(geo.ErrIncompleteFeature, "decode "+g.Type, fmt.Errorf("missing coordinates"))
	}
	if err := json.Unmarshal(g.Coordinates, v); err != nil {
		return malformed(fmt.Errorf("%s coordinates: %w", g.Type, err))
	}
	return nil
}

func (p position) coordinate() (geo.Coordinate, error) {
	if len(p) < 2 {
		return geo.Coordinate{}, geo.Wrap(geo.ErrIncompleteFeature, "decode position", fmt.Errorf("position has %d values", len(p)))
	}
	if !geo.Finite(p[0], p[1]) || (len(p) >= 3 && math.IsInf(p[2], 0)) {
		return geo.Coordinate{}, malformed(fmt.Errorf("position %v is not finite", []float64(p)))
	}
	if len(p) >= 3 {
		return geo.XYZ(p[0], p[1], p[2]), nil
	}
	return geo.XY(p[0], p[1]), nil
}

func (l lineCoords) sequence() (geo.Sequence, error) {
	out := make(geo.Sequence, 0, len(l))
	for _, p := range l {
		c, err := p.coordinate()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (l lineCoords) lineString() (*geo.LineString, error) {
	s, err := l.sequence()
	if err != nil {
		return nil, err
	}
	return geo.NewLineString(s)
}

func (p polygonCoords) polygon() (*geo.Polygon, error) {
	rings := make([]geo.Sequence, 0, len(p))
	for _, r := range p {
		s, err := r.sequence()
		if err != nil {
			return nil, err
		}
		rings = append(rings, s)
	}
	return geo.NewPolygon(rings)
}

func malformed(err error) error {
	return geo.Wrap(geo.ErrMalformedSource, "decode geojson", err)
}
