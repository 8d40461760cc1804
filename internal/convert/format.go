// Package convert wires readers, coordinate edits, projections and writers
// into a single streaming conversion.
package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/woozymasta/geoconv/internal/geo"
)

// Format names a document encoding or a render target.
type Format string

// Supported formats.
const (
	FormatGeoJSON   Format = "geojson"
	FormatKML       Format = "kml"
	FormatBlueMap   Format = "bluemap"
	FormatSchematic Format = "schematic"
)

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case FormatGeoJSON, FormatKML, FormatBlueMap, FormatSchematic:
		return f, nil
	case "json", "gjson":
		return FormatGeoJSON, nil
	case "markers":
		return FormatBlueMap, nil
	}
	return "", geo.Wrap(geo.ErrUnsupportedConversion, "format", fmt.Errorf("unknown format %q", name))
}

// Infer guesses a source format from the file extension.
func Infer(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json", ".gjson":
		return FormatGeoJSON, nil
	case ".kml":
		return FormatKML, nil
	}
	return "", geo.Wrap(geo.ErrUnsupportedConversion, "format", fmt.Errorf("cannot infer format of %q, set it explicitly", path))
}

// Renders reports whether f is produced by the geometry dispatcher rather
// than a document encoder.
func (f Format) Renders() bool {
	return f == FormatBlueMap || f == FormatSchematic
}

func (f Format) String() string {
	return string(f)
}
