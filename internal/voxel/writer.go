package voxel

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/render"
	"github.com/woozymasta/geoconv/internal/stream"
)

// DefaultPattern is placed when no style matches.
const DefaultPattern = "diamond_block"

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options configures a Writer.
type Options struct {
	Layout stream.Layout
	Format string
	// Radius thickens points and lines into spheres.
	Radius float64
	// FillStroke fills the spheres of thick points and lines.
	FillStroke bool
	// Fill fills polygon interiors and carves their holes.
	Fill   bool
	Render render.Options
	// Preview, when not nil, receives a top down WebP image on Close.
	Preview     io.Writer
	PreviewSize int
}

// Writer renders features into a block Session and exports the buffered
// blocks on Close.
type Writer struct {
	w       io.Writer
	closer  io.Closer
	opts    Options
	session Session
	buffer  *Buffer
	render  *render.Dispatcher
	edits   int
	emitted int
	closed  bool
}

// NewWriter renders into an in-memory buffer exported to w.
func NewWriter(w io.Writer, closer io.Closer, opts Options) (*Writer, error) {
	switch strings.ToLower(opts.Format) {
	case "":
		opts.Format = FormatJSON
	case FormatJSON, FormatYAML:
		opts.Format = strings.ToLower(opts.Format)
	default:
		return nil, geo.Wrap(geo.ErrUnsupportedConversion, "schematic", fmt.Errorf("unknown export format %q", opts.Format))
	}
	if opts.Radius < 0 {
		return nil, geo.Wrap(geo.ErrUnsupportedConversion, "schematic", fmt.Errorf("radius must not be negative"))
	}
	if opts.Render.Default == "" {
		opts.Render.Default = DefaultPattern
	}

	buf := NewBuffer()
	vw := &Writer{w: w, closer: closer, opts: opts, session: buf, buffer: buf}
	vw.render = render.NewDispatcher(vw, opts.Render)
	return vw, nil
}

// Buffer exposes the blocks written so far.
func (w *Writer) Buffer() *Buffer {
	return w.buffer
}

// Edits returns the number of block changes made so far.
func (w *Writer) Edits() int {
	return w.edits
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

// Capabilities implements render.Sink. Outlines follow every vertex elevation.
func (w *Writer) Capabilities() render.Capabilities {
	return render.Capabilities{PerVertexLines: true, PerVertexRings: true}
}

// Emit implements render.Sink.
func (w *Writer) Emit(p *render.Primitive) error {
	pattern := p.Style
	switch p.Kind {
	case render.KindMarker:
		pos := At(p.Position.X, p.Position.Y, p.Position.Z)
		if w.opts.Radius > 0 {
			w.edits += w.session.MakeSphere(pos, pattern, w.opts.Radius, w.opts.FillStroke)
		} else if w.session.SetBlock(pos, pattern) {
			w.edits++
		}
	case render.KindLine, render.KindRing:
		w.edits += w.line(p.Points, pattern, nil)
	case render.KindShape:
		w.shape(p, pattern)
	case render.KindSolid:
		w.solid(p, pattern)
	}
	return nil
}

func (w *Writer) line(s geo.Sequence, pattern string, y *int) int {
	return w.session.DrawLine(pattern, blocks(s, y), w.opts.Radius, w.opts.FillStroke)
}

// shape fills the shell, carves each hole with air and then draws every
// outline so carving never erases a border.
func (w *Writer) shape(p *render.Primitive, pattern string) {
	if w.opts.Fill {
		lo, hi := yRange(p.Points)
		w.edits += w.session.SetBlocks(region(p.Points, lo, hi), pattern)
		for _, h := range p.Holes {
			lo, hi := yRange(h)
			w.edits += w.session.SetBlocks(region(h, lo, hi), Air)
		}
	}
	w.edits += w.line(p.Points, pattern, nil)
	for _, h := range p.Holes {
		w.edits += w.line(h, pattern, nil)
	}
}

// solid raises walls from the base to the top. With fill, the floor and the
// cap are filled and every hole is carved through both of them.
func (w *Writer) solid(p *render.Primitive, pattern string) {
	base := int(math.Floor(p.Elevation))
	top := int(math.Floor(p.Elevation + p.Height))
	if top < base {
		base, top = top, base
	}

	if w.opts.Fill {
		for _, y := range []int{base, top} {
			w.edits += w.session.SetBlocks(region(p.Points, y, y), pattern)
			for _, h := range p.Holes {
				w.edits += w.session.SetBlocks(region(h, y, y), Air)
			}
		}
	}
	for y := base; y <= top; y++ {
		w.edits += w.line(p.Points, pattern, &y)
		for _, h := range p.Holes {
			w.edits += w.line(h, pattern, &y)
		}
	}
}

// Close implements stream.Writer. It exports the schematic and the
// optional preview.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.export()
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = geo.Wrap(geo.ErrResourceIO, "close schematic", cerr)
		}
	}
	return err
}

func (w *Writer) export() error {
	doc := NewSchematic(w.buffer)
	log.Debug().
		Int("blocks", len(doc.Blocks)).
		Int("edits", w.edits).
		Interface("size", doc.Size).
		Msg("Exporting schematic")

	if err := doc.Encode(w.w, w.opts.Format, w.opts.Layout); err != nil {
		return err
	}
	if w.opts.Preview != nil {
		if err := Preview(w.opts.Preview, w.buffer, w.opts.PreviewSize); err != nil {
			return err
		}
	}
	return nil
}

func blocks(s geo.Sequence, y *int) []Pos {
	out := make([]Pos, len(s))
	for i, c := range s {
		out[i] = At(c.X, c.Y, c.Z)
		if y != nil {
			out[i].Y = *y
		}
	}
	return out
}

func region(s geo.Sequence, lo, hi int) Region {
	return Region{Points: blocks(s, nil), MinY: lo, MaxY: hi}
}

func yRange(s geo.Sequence) (int, int) {
	if len(s) == 0 {
		return 0, 0
	}
	lo := At(0, 0, s[0].Z).Y
	hi := lo
	for _, c := range s[1:] {
		y := At(0, 0, c.Z).Y
		lo, hi = min(lo, y), max(hi, y)
	}
	return lo, hi
}
