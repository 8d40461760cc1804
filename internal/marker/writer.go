package marker

import (
	"bufio"
	"encoding/json"
	"io"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/render"
	"github.com/woozymasta/geoconv/internal/stream"
)

// fillAlpha is applied to the style color of filled shapes.
const fillAlpha = 0.3

// SetOptions describes the marker set metadata.
type SetOptions struct {
	Label         string
	Toggleable    bool
	DefaultHidden bool
	Sorting       int
}

// Options configures a Writer.
type Options struct {
	Layout stream.Layout
	SetKey string
	Set    SetOptions
	Render render.Options
	// DepthTest enables depth testing on shapes and lines.
	DepthTest bool
}

// Writer collects markers in memory and encodes the set on Close.
type Writer struct {
	w       io.Writer
	closer  io.Closer
	opts    Options
	set     *Set
	colors  map[string]*Color
	render  *render.Dispatcher
	emitted int
	closed  bool
}

// NewWriter validates the style table as colors and prepares an empty set.
func NewWriter(w io.Writer, closer io.Closer, opts Options) (*Writer, error) {
	colors := make(map[string]*Color)
	styles := make([]string, 0, len(opts.Render.Styles)+1)
	for _, s := range opts.Render.Styles {
		styles = append(styles, s)
	}
	if opts.Render.Default != "" {
		styles = append(styles, opts.Render.Default)
	}
	for _, s := range styles {
		c, err := ParseColor(s)
		if err != nil {
			return nil, err
		}
		colors[s] = c
	}

	label := opts.Set.Label
	if label == "" {
		label = opts.SetKey
	}
	mw := &Writer{
		w:      w,
		closer: closer,
		opts:   opts,
		colors: colors,
		set: &Set{
			Label:         label,
			Toggleable:    opts.Set.Toggleable,
			DefaultHidden: opts.Set.DefaultHidden,
			Sorting:       opts.Set.Sorting,
			Markers:       make(map[string]*Marker),
		},
	}
	mw.render = render.NewDispatcher(mw, opts.Render)
	return mw, nil
}

// Set returns the markers collected so far.
func (w *Writer) Set() *Set {
	return w.set
}

// Write implements stream.Writer.
func (w *Writer) Write(f *geo.Feature) error {
	n, err := w.render.Render(f)
	w.emitted += n
	return err
}

// Emitted returns the number of primitives rendered so far.
func (w *Writer) Emitted() int {
	return w.emitted
}

// Capabilities implements render.Sink. Shapes carry a single elevation.
func (w *Writer) Capabilities() render.Capabilities {
	return render.Capabilities{PerVertexLines: true}
}

// Emit implements render.Sink.
func (w *Writer) Emit(p *render.Primitive) error {
	m := &Marker{Label: p.Label}
	color := w.colors[p.Style]

	switch p.Kind {
	case render.KindMarker:
		m.Type = TypePOI
		m.Position = Vector3{X: p.Position.X, Y: p.Position.Z, Z: p.Position.Y}
	case render.KindLine:
		m.Type = TypeLine
		m.DepthTest = w.opts.DepthTest
		m.Line = make([]Vector3, len(p.Points))
		for i, c := range p.Points {
			m.Line[i] = Vector3{X: c.X, Y: c.Z, Z: c.Y}
		}
		m.Position = center(p.Points, p.Elevation)
		m.LineColor = color
	case render.KindRing, render.KindShape:
		m.Type = TypeShape
		m.DepthTest = w.opts.DepthTest
		m.Shape = plane(p.Points)
		m.Holes = holes(p.Holes)
		m.ShapeY = ptr(p.Elevation)
		m.Position = center(p.Points, p.Elevation)
		w.colorize(m, color)
	case render.KindSolid:
		m.Type = TypeExtrude
		m.DepthTest = w.opts.DepthTest
		m.Shape = plane(p.Points)
		m.Holes = holes(p.Holes)
		m.ShapeMinY = ptr(p.Elevation)
		m.ShapeMaxY = ptr(p.Elevation + p.Height)
		m.Position = center(p.Points, p.Elevation)
		w.colorize(m, color)
	}

	if _, ok := w.set.Markers[p.Key]; ok {
		log.Warn().Str("key", p.Key).Msg("Duplicate marker key, replacing previous marker")
	}
	w.set.Markers[p.Key] = m
	return nil
}

func (w *Writer) colorize(m *Marker, c *Color) {
	if c == nil {
		return
	}
	m.LineColor = c
	m.FillColor = c.withAlpha(fillAlpha)
}

// Close implements stream.Writer. It encodes the whole document.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.encode()
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = geo.Wrap(geo.ErrResourceIO, "close markers", cerr)
		}
	}
	return err
}

func (w *Writer) encode() error {
	buf := bufio.NewWriter(w.w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if !w.opts.Layout.Compact {
		enc.SetIndent("", w.opts.Layout.IndentString())
	}
	if err := enc.Encode(map[string]*Set{w.opts.SetKey: w.set}); err != nil {
		return geo.Wrap(geo.ErrUnsupportedConversion, "encode markers", err)
	}
	if err := buf.Flush(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "write markers", err)
	}
	return nil
}

func plane(s geo.Sequence) []Vector2 {
	out := make([]Vector2, len(s))
	for i, c := range s {
		out[i] = Vector2{X: c.X, Z: c.Y}
	}
	return out
}

func holes(rings []geo.Sequence) [][]Vector2 {
	if len(rings) == 0 {
		return nil
	}
	out := make([][]Vector2, len(rings))
	for i, r := range rings {
		out[i] = plane(r)
	}
	return out
}

// center is the middle of the bounding box of s at elevation y.
func center(s geo.Sequence, y float64) Vector3 {
	if len(s) == 0 {
		return Vector3{Y: y}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range s {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	return Vector3{X: (minX + maxX) / 2, Y: y, Z: (minY + maxY) / 2}
}

func ptr(v float64) *float64 {
	return &v
}
