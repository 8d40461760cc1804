package elevation

import (
	"fmt"
	"math"
	"strings"

	"github.com/woozymasta/geoconv/internal/geo"
)

// Mode is the elevation aggregation rule of a rendered primitive.
type Mode int

// Elevation modes.
const (
	// PreservePerVertex keeps every vertex elevation where the sink allows it
	// and falls back to Average otherwise.
	PreservePerVertex Mode = iota
	// Average uses the mean of the finite elevations of a line or ring.
	Average
	// Fixed ignores the source elevations and uses Policy.Value.
	Fixed
)

func (m Mode) String() string {
	switch m {
	case PreservePerVertex:
		return "auto"
	case Average:
		return "average"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode resolves a mode name as used in configuration.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto", "preserve":
		return PreservePerVertex, nil
	case "average":
		return Average, nil
	case "fixed", "normalized":
		return Fixed, nil
	}
	return 0, geo.Wrap(geo.ErrUnsupportedConversion, "elevation", fmt.Errorf("unknown elevation mode %q", s))
}

// Policy is an elevation mode with its fixed value.
type Policy struct {
	Mode  Mode
	Value float64
}

// Of returns the single elevation used for s: the fixed value, or the mean
// of its finite elevations.
func (p Policy) Of(s geo.Sequence) float64 {
	if p.Mode == Fixed {
		return p.Value
	}
	return geo.AverageZ(s)
}

// Point returns the elevation of a single position. Only a fixed policy
// ignores the point's own Z; an absent Z resolves to 0.
func (p Policy) Point(c geo.Coordinate) float64 {
	if p.Mode == Fixed {
		return p.Value
	}
	if !c.HasZ() || math.IsInf(c.Z, 0) {
		return 0
	}
	return c.Z
}

// PerVertex reports whether a sink that can keep vertex elevations should.
func (p Policy) PerVertex() bool {
	return p.Mode == PreservePerVertex
}

// Vertex returns the elevation of one vertex under per vertex rendering,
// falling back to the line average for absent values.
func (p Policy) Vertex(c geo.Coordinate, avg float64) float64 {
	if p.Mode == Fixed {
		return p.Value
	}
	if !c.HasZ() {
		return avg
	}
	return c.Z
}
