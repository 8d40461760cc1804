package main

import (
	"fmt"

	"github.com/woozymasta/geoconv/internal/config"
	"github.com/woozymasta/geoconv/internal/convert"
)

// Common holds the flags every conversion accepts. Set flags override
// values from the configuration file.
type Common struct {
	File       string   `short:"f" long:"file"       required:"true"    description:"Input file"`
	Output     string   `short:"o" long:"output"     required:"true"    description:"Output file"`
	From       string   `long:"from"                 choice:"geojson"   choice:"kml" description:"Input format, inferred from the file extension when omitted"`
	Config     string   `short:"c" long:"config"     env:"CONFIG_FILE"  description:"Path to configuration file"`
	Projection string   `long:"projection"           choice:"none"      choice:"global" choice:"regional" choice:"offset" description:"Grid projection"`
	Element    string   `long:"element"              description:"Element read as a feature from KML input"`
	Indent     *int     `long:"indent"               description:"Indent width of pretty printed output"`
	Normalize  *float64 `short:"n" long:"normalize"  description:"Set every elevation to this value"`
	ZOffset    *float64 `short:"z" long:"z-offset"   description:"Add this value to every elevation"`
	OffsetX    *float64 `long:"offset-x"             description:"Projection offset on the X axis"`
	OffsetY    *float64 `long:"offset-y"             description:"Projection offset on the Y axis"`
	Compact    bool     `long:"compact"              description:"Write output without indentation"`
	DropZ      bool     `short:"d" long:"drop-z"     description:"Remove elevations"`
}

func (c *Common) load() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if c.Compact {
		cfg.Output.Compact = true
	}
	if c.Indent != nil {
		cfg.Output.Indent = *c.Indent
	}
	if c.Normalize != nil {
		cfg.Elevation.Normalize = c.Normalize
	}
	if c.ZOffset != nil {
		cfg.Elevation.Offset = c.ZOffset
	}
	if c.DropZ {
		cfg.Elevation.Drop = true
	}
	if c.Element != "" {
		cfg.KML.Element = c.Element
	}
	if c.Projection != "" {
		cfg.Projection.Name = c.Projection
	}
	if c.OffsetX != nil {
		cfg.Projection.OffsetX = *c.OffsetX
	}
	if c.OffsetY != nil {
		cfg.Projection.OffsetY = *c.OffsetY
	}
	return cfg, nil
}

// Render holds the flags shared by the marker and schematic outputs.
type Render struct {
	Label           string   `long:"label"            description:"Display name of every rendered element"`
	Elevation       string   `long:"elevation"        choice:"auto" choice:"average" choice:"fixed" description:"Elevation of rendered elements"`
	FixedElevation  *float64 `long:"fixed-elevation"  description:"Elevation used by the fixed mode"`
	Extrude         *float64 `long:"extrude"          description:"Render polygons as solids of this height"`
	NormalizeNaming bool     `long:"normalize-naming" description:"Rewrite keys as lowercase hyphenated slugs"`
	Strict          bool     `long:"strict"           description:"Fail on geometries that cannot be rendered"`
}

func (r *Render) apply(cfg *config.Config) {
	if r.Label != "" {
		cfg.Render.Label = r.Label
	}
	if r.Elevation != "" {
		cfg.Render.Elevation = r.Elevation
	}
	if r.FixedElevation != nil {
		cfg.Render.FixedElevation = *r.FixedElevation
	}
	if r.Extrude != nil {
		cfg.Render.Extrude = r.Extrude
	}
	if r.NormalizeNaming {
		cfg.Render.NormalizeNaming = true
	}
	if r.Strict {
		cfg.Render.Strict = true
	}
}

type GeoJSONCommand struct {
	Common
	Precision *int `short:"p" long:"precision" description:"Maximum decimal places of coordinates"`
}

func (c *GeoJSONCommand) Execute(_ []string) error {
	return run(&c.Common, convert.FormatGeoJSON, func(cfg *config.Config) {
		if c.Precision != nil {
			cfg.Output.Precision = c.Precision
		}
	})
}

type KMLCommand struct {
	Common
	DocumentID string `long:"document-id" description:"Document id, 'auto' for a random UUID"`
}

func (c *KMLCommand) Execute(_ []string) error {
	return run(&c.Common, convert.FormatKML, func(cfg *config.Config) {
		if c.DocumentID != "" {
			cfg.KML.DocumentID = c.DocumentID
		}
	})
}

type BlueMapCommand struct {
	Common
	Render
	Styles        map[string]string `long:"style"          description:"Color of a geometry class as class:#rrggbb[aa]"`
	SetLabel      string            `long:"set-label"      description:"Marker set label, the output file name by default"`
	Color         string            `long:"color"          description:"Color of geometries without a style"`
	Sorting       *int              `long:"sorting"        description:"Marker set sorting order"`
	NoToggle      bool              `long:"no-toggle"      description:"Do not let users toggle the marker set"`
	DefaultHidden bool              `long:"default-hidden" description:"Hide the marker set by default"`
	DepthTest     bool              `long:"depth-test"     description:"Hide shapes and lines behind terrain"`
}

func (c *BlueMapCommand) Execute(_ []string) error {
	return run(&c.Common, convert.FormatBlueMap, func(cfg *config.Config) {
		c.Render.apply(cfg)
		m := &cfg.Marker
		if len(c.Styles) > 0 {
			if m.Styles == nil {
				m.Styles = make(map[string]string, len(c.Styles))
			}
			for k, v := range c.Styles {
				m.Styles[k] = v
			}
		}
		if c.SetLabel != "" {
			m.SetLabel = c.SetLabel
		}
		if c.Color != "" {
			m.DefaultStyle = c.Color
		}
		if c.Sorting != nil {
			m.Sorting = *c.Sorting
		}
		if c.NoToggle {
			m.Toggleable = false
		}
		if c.DefaultHidden {
			m.DefaultHidden = true
		}
		if c.DepthTest {
			m.DepthTest = true
		}
	})
}

type SchematicCommand struct {
	Common
	Render
	Patterns    map[string]string `long:"pattern-for"  description:"Block pattern of a geometry class as class:pattern"`
	Pattern     string            `long:"pattern"      description:"Block pattern of geometries without a pattern"`
	Format      string            `long:"format"       choice:"json" choice:"yaml" description:"Schematic export format"`
	Preview     string            `long:"preview"      description:"Write a top down WebP preview to this file"`
	Radius      *float64          `long:"radius"       description:"Stroke radius of points and lines"`
	PreviewSize *int              `long:"preview-size" description:"Longest side of the preview in pixels"`
	FillStroke  bool              `long:"fill-stroke"  description:"Fill stroke spheres"`
	Fill        bool              `long:"fill"         description:"Fill polygon interiors"`
}

func (c *SchematicCommand) Execute(_ []string) error {
	return run(&c.Common, convert.FormatSchematic, func(cfg *config.Config) {
		c.Render.apply(cfg)
		s := &cfg.Schematic
		if len(c.Patterns) > 0 {
			if s.Patterns == nil {
				s.Patterns = make(map[string]string, len(c.Patterns))
			}
			for k, v := range c.Patterns {
				s.Patterns[k] = v
			}
		}
		if c.Pattern != "" {
			s.Pattern = c.Pattern
		}
		if c.Format != "" {
			s.Format = c.Format
		}
		if c.Preview != "" {
			s.Preview = c.Preview
		}
		if c.Radius != nil {
			s.Radius = *c.Radius
		}
		if c.PreviewSize != nil {
			s.PreviewSize = *c.PreviewSize
		}
		if c.FillStroke {
			s.FillStroke = true
		}
		if c.Fill {
			s.Fill = true
		}
	})
}

type CompactCommand struct {
	File   string `short:"f" long:"file"   required:"true" description:"Converted document"`
	Output string `short:"o" long:"output" required:"true" description:"Output file, may equal the input"`
}

func (c *CompactCommand) Execute(_ []string) error {
	return convert.Compact(c.File, c.Output)
}
