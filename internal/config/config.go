// Package config handles loading of the conversion settings file.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/woozymasta/geoconv/internal/geo"
)

// Config represents the root configuration file structure.
type Config struct {
	Output     Output     `yaml:"output"`
	Elevation  Elevation  `yaml:"elevation"`
	Projection Projection `yaml:"projection"`
	KML        KML        `yaml:"kml"`
	Render     Render     `yaml:"render"`
	Marker     Marker     `yaml:"marker"`
	Schematic  Schematic  `yaml:"schematic"`
}

// Output controls document layout.
type Output struct {
	// Precision is the maximum number of decimal places in GeoJSON output.
	Precision *int `yaml:"precision,omitempty"`
	Indent    int  `yaml:"indent,omitempty"`
	Compact   bool `yaml:"compact,omitempty"`
}

// Elevation edits the Z component of every coordinate before projection.
type Elevation struct {
	Normalize *float64 `yaml:"normalize,omitempty"`
	Offset    *float64 `yaml:"offset,omitempty"`
	Drop      bool     `yaml:"drop,omitempty"`
}

// Projection selects the grid projection. An empty name picks the default
// of the output format.
type Projection struct {
	Name    string  `yaml:"name,omitempty"`
	OffsetX float64 `yaml:"offset_x,omitempty"`
	OffsetY float64 `yaml:"offset_y,omitempty"`
}

// KML holds KML reader and writer settings.
type KML struct {
	Element    string `yaml:"element,omitempty"`
	DocumentID string `yaml:"document_id,omitempty"`
}

// Render is shared by the marker and schematic outputs.
type Render struct {
	Extrude         *float64 `yaml:"extrude,omitempty"`
	Label           string   `yaml:"label,omitempty"`
	Elevation       string   `yaml:"elevation,omitempty"`
	FixedElevation  float64  `yaml:"fixed_elevation,omitempty"`
	NormalizeNaming bool     `yaml:"normalize_naming,omitempty"`
	Strict          bool     `yaml:"strict,omitempty"`
}

// Marker holds marker set settings.
type Marker struct {
	Styles        map[string]string `yaml:"styles,omitempty"`
	SetLabel      string            `yaml:"set_label,omitempty"`
	DefaultStyle  string            `yaml:"default_style,omitempty"`
	Sorting       int               `yaml:"sorting,omitempty"`
	Toggleable    bool              `yaml:"toggleable"`
	DefaultHidden bool              `yaml:"default_hidden,omitempty"`
	DepthTest     bool              `yaml:"depth_test,omitempty"`
}

// Schematic holds block export settings.
type Schematic struct {
	Patterns    map[string]string `yaml:"patterns,omitempty"`
	Pattern     string            `yaml:"pattern,omitempty"`
	Format      string            `yaml:"format,omitempty"`
	Preview     string            `yaml:"preview,omitempty"`
	Radius      float64           `yaml:"radius,omitempty"`
	PreviewSize int               `yaml:"preview_size,omitempty"`
	FillStroke  bool              `yaml:"fill_stroke,omitempty"`
	Fill        bool              `yaml:"fill,omitempty"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Output:    Output{Indent: 2},
		KML:       KML{Element: "Placemark"},
		Render:    Render{Elevation: "auto"},
		Marker:    Marker{Toggleable: true},
		Schematic: Schematic{Format: "json", PreviewSize: 512},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, geo.Wrap(geo.ErrResourceIO, "load config", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, geo.Wrap(geo.ErrMalformedSource, "parse config", err)
	}

	return cfg, nil
}
