// Package projection maps geographic coordinates onto the planar block grid.
//
// A Projection always applies its steps in the same order: base transform,
// vertical flip, uniform scale, then each offset in the order it was added.
// The inverse runs the same steps backwards. Callers pick a preset instead of
// composing steps themselves.
package projection

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/geo"
)

// EarthToGridScale converts unit sphere output into grid units (blocks).
const EarthToGridScale = 7318261.522857145

// Regional offset of the south east Asia build grid.
const (
	RegionalOffsetX = -13379008.0
	RegionalOffsetY = 2727648.0
)

// Transform is a reversible planar mapping.
type Transform interface {
	Forward(lon, lat float64) (x, y float64, err error)
	Inverse(x, y float64) (lon, lat float64, err error)
}

// Offset is one planar translation step.
type Offset struct {
	X, Y float64
}

// Projection is an immutable base transform with its decorators.
// It is safe for concurrent use.
type Projection struct {
	base    Transform
	offsets []Offset
	scale   float64
	flip    bool
}

// Params mirrors the parameter set of a parameterized construction.
type Params struct {
	SemiMajor     float64
	SemiMinor     float64
	Scale         float64
	FalseEasting  float64
	FalseNorthing float64
}

var defaultBase Transform = NewBTE()

// Global is the world projection flipped and scaled to grid units.
func Global() *Projection {
	return &Projection{base: defaultBase, flip: true, scale: EarthToGridScale}
}

// Regional is Global shifted by the regional grid offset.
func Regional() *Projection {
	return Global().WithOffset(RegionalOffsetX, RegionalOffsetY)
}

// CustomOffset is Global shifted by (dx, dy).
func CustomOffset(dx, dy float64) *Projection {
	return Global().WithOffset(dx, dy)
}

// Custom is Global with a caller supplied base transform.
func Custom(base Transform) *Projection {
	return &Projection{base: base, flip: true, scale: EarthToGridScale}
}

// New builds a Global projection from explicit parameters. The math only
// holds on the unit sphere, so both semi axes must be exactly 1. Any scale
// other than EarthToGridScale is accepted with a warning.
func New(params Params) (*Projection, error) {
	if params.SemiMajor != 1 {
		return nil, geo.Wrap(geo.ErrUnsupportedConversion, "projection",
			fmt.Errorf("invalid value for parameter 'semi_major': expected 1, got %v; projection operates on a unit circle", params.SemiMajor))
	}
	if params.SemiMinor != 1 {
		return nil, geo.Wrap(geo.ErrUnsupportedConversion, "projection",
			fmt.Errorf("invalid value for parameter 'semi_minor': expected 1, got %v; projection operates on a unit circle", params.SemiMinor))
	}
	if params.Scale == 0 {
		return nil, geo.Wrap(geo.ErrUnsupportedConversion, "projection", fmt.Errorf("scale factor must not be zero"))
	}
	if params.Scale != EarthToGridScale {
		log.Warn().
			Float64("expected", EarthToGridScale).
			Float64("scale", params.Scale).
			Msg("unexpected value for parameter 'scale_factor', results are untested")
	}

	p := &Projection{base: defaultBase, flip: true, scale: params.Scale}
	if params.FalseEasting != 0 || params.FalseNorthing != 0 {
		p = p.WithOffset(params.FalseEasting, params.FalseNorthing)
	}
	return p, nil
}

// WithOffset returns a copy of p with one more offset step appended.
// Offsets are kept as separate steps rather than summed.
func (p *Projection) WithOffset(dx, dy float64) *Projection {
	out := *p
	out.offsets = make([]Offset, 0, len(p.offsets)+1)
	out.offsets = append(out.offsets, p.offsets...)
	out.offsets = append(out.offsets, Offset{X: dx, Y: dy})
	return &out
}

// Offsets lists the offset steps in application order.
func (p *Projection) Offsets() []Offset {
	return append([]Offset(nil), p.offsets...)
}

// Forward implements Transform.
func (p *Projection) Forward(lon, lat float64) (float64, float64, error) {
	x, y, err := p.base.Forward(lon, lat)
	if err != nil {
		return 0, 0, err
	}
	if p.flip {
		y = -y
	}
	x *= p.scale
	y *= p.scale
	for _, o := range p.offsets {
		x += o.X
		y += o.Y
	}
	return x, y, nil
}

// Inverse implements Transform.
func (p *Projection) Inverse(x, y float64) (float64, float64, error) {
	if !geo.Finite(x, y) {
		return 0, 0, &geo.DomainError{X: x, Y: y, Inverse: true}
	}
	for i := len(p.offsets) - 1; i >= 0; i-- {
		x -= p.offsets[i].X
		y -= p.offsets[i].Y
	}
	x /= p.scale
	y /= p.scale
	if p.flip {
		y = -y
	}
	return p.base.Inverse(x, y)
}

// Apply projects every position of s, keeping elevations untouched.
func (p *Projection) Apply(s geo.Sequence) (geo.Sequence, error) {
	out := make(geo.Sequence, len(s))
	for i, c := range s {
		x, y, err := p.Forward(c.X, c.Y)
		if err != nil {
			return nil, err
		}
		out[i] = geo.Coordinate{X: x, Y: y, Z: c.Z}
	}
	return out, nil
}

// Geometry returns a projected copy of g.
func (p *Projection) Geometry(g geo.Geometry) (geo.Geometry, error) {
	return geo.Edit(g, p.Apply)
}

// Steps describes every applied step in order.
func (p *Projection) Steps() []string {
	steps := []string{fmt.Sprint(p.base)}
	if p.flip {
		steps = append(steps, "flip")
	}
	if p.scale != 1 {
		steps = append(steps, fmt.Sprintf("scale(%v)", p.scale))
	}
	for _, o := range p.offsets {
		steps = append(steps, fmt.Sprintf("offset(%v, %v)", o.X, o.Y))
	}
	return steps
}

func (p *Projection) String() string {
	return strings.Join(p.Steps(), " -> ")
}

// Parse resolves a projection preset by name. Offset requires dx and dy.
func Parse(name string, dx, dy float64) (*Projection, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return nil, nil
	case "global":
		return Global(), nil
	case "regional":
		return Regional(), nil
	case "offset":
		return CustomOffset(dx, dy), nil
	}
	return nil, geo.Wrap(geo.ErrUnsupportedConversion, "projection", fmt.Errorf("unknown projection %q", name))
}
