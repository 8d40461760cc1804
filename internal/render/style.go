package render

import (
	"fmt"
	"strings"

	"github.com/woozymasta/geoconv/internal/geo"
)

// WildcardStyle is the table entry that overrides every type specific entry.
const WildcardStyle = "geometry"

// StyleTable maps a lowercase geometry type name, or WildcardStyle, to a
// sink specific style such as a block pattern or a marker color.
type StyleTable map[string]string

// NewStyleTable validates keys and lowercases them.
func NewStyleTable(entries map[string]string) (StyleTable, error) {
	t := make(StyleTable, len(entries))
	for k, v := range entries {
		key := strings.ToLower(k)
		if key != WildcardStyle {
			typ, ok := geo.ParseType(typeName(key))
			if !ok {
				return nil, geo.Wrap(geo.ErrUnsupportedConversion, "style table", fmt.Errorf("unknown geometry type %q", k))
			}
			key = styleKey(typ)
		}
		t[key] = v
	}
	return t, nil
}

// lookup returns the wildcard entry when present, else the entry for typ.
func (t StyleTable) lookup(typ geo.Type) (string, bool) {
	if s, ok := t[WildcardStyle]; ok {
		return s, true
	}
	s, ok := t[styleKey(typ)]
	return s, ok
}

func styleKey(typ geo.Type) string {
	return strings.ToLower(typ.String())
}

func typeName(key string) string {
	for _, typ := range []geo.Type{
		geo.TypePoint, geo.TypeLineString, geo.TypeLinearRing, geo.TypePolygon,
		geo.TypeMultiPoint, geo.TypeMultiLineString, geo.TypeMultiPolygon, geo.TypeGeometryCollection,
	} {
		if styleKey(typ) == key {
			return typ.String()
		}
	}
	return key
}
