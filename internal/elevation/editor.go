// Package elevation edits and aggregates the Z component of coordinates.
package elevation

import (
	"math"

	"github.com/woozymasta/geoconv/internal/geo"
)

// Edit selects how the Z component is rewritten before projection.
// Drop wins over Normalize, and Normalize wins over Offset.
type Edit struct {
	Normalize *float64
	Offset    *float64
	Drop      bool
}

// Normalize sets every elevation to v.
func Normalize(v float64) Edit {
	return Edit{Normalize: &v}
}

// Offset shifts every finite elevation by delta.
func Offset(delta float64) Edit {
	return Edit{Offset: &delta}
}

// Drop removes every elevation.
func Drop() Edit {
	return Edit{Drop: true}
}

// IsZero reports whether the edit leaves coordinates untouched.
func (e Edit) IsZero() bool {
	return !e.Drop && e.Normalize == nil && e.Offset == nil
}

// Apply returns an edited copy of s. The input is never modified.
func (e Edit) Apply(s geo.Sequence) geo.Sequence {
	out := s.Clone()
	switch {
	case e.Drop:
		for i := range out {
			out[i].Z = math.NaN()
		}
	case e.Normalize != nil:
		for i := range out {
			out[i].Z = *e.Normalize
		}
	case e.Offset != nil:
		for i := range out {
			if out[i].HasZ() {
				out[i].Z += *e.Offset
			}
		}
	}
	return out
}

// Geometry returns an edited deep copy of g.
func (e Edit) Geometry(g geo.Geometry) (geo.Geometry, error) {
	return geo.Edit(g, func(s geo.Sequence) (geo.Sequence, error) {
		return e.Apply(s), nil
	})
}
