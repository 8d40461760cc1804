package marker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/woozymasta/geoconv/internal/geo"
)

// Color is an RGBA color; A ranges from 0 to 1.
type Color struct {
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
	A float64 `json:"a"`
}

// ParseColor reads "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (*Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return nil, geo.Wrap(geo.ErrUnsupportedConversion, "parse color", fmt.Errorf("%q is not #rrggbb or #rrggbbaa", s))
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, geo.Wrap(geo.ErrUnsupportedConversion, "parse color", fmt.Errorf("%q: %w", s, err))
	}

	c := &Color{A: 1}
	if len(hex) == 8 {
		c.A = geo.Round(float64(v&0xff)/255, 3)
		v >>= 8
	}
	c.R, c.G, c.B = uint8(v>>16), uint8(v>>8), uint8(v)
	return c, nil
}

// withAlpha returns a copy of c with alpha scaled by f.
func (c *Color) withAlpha(f float64) *Color {
	out := *c
	out.A = geo.Round(c.A*f, 3)
	return &out
}
