package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/woozymasta/geoconv/internal/config"
	"github.com/woozymasta/geoconv/internal/elevation"
	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/geojson"
	"github.com/woozymasta/geoconv/internal/kml"
	"github.com/woozymasta/geoconv/internal/marker"
	"github.com/woozymasta/geoconv/internal/projection"
	"github.com/woozymasta/geoconv/internal/render"
	"github.com/woozymasta/geoconv/internal/stream"
	"github.com/woozymasta/geoconv/internal/voxel"
)

// AutoDocumentID asks for a random KML document id.
const AutoDocumentID = "auto"

type route struct {
	from Format
	to   Format
}

// routes lists every supported source and sink pair.
var routes = map[route]bool{
	{FormatGeoJSON, FormatGeoJSON}:   true,
	{FormatGeoJSON, FormatKML}:       true,
	{FormatGeoJSON, FormatBlueMap}:   true,
	{FormatGeoJSON, FormatSchematic}: true,
	{FormatKML, FormatGeoJSON}:       true,
	{FormatKML, FormatKML}:           true,
	{FormatKML, FormatBlueMap}:       true,
	{FormatKML, FormatSchematic}:     true,
}

// Supported reports whether a conversion from one format to another exists.
func Supported(from, to Format) bool {
	return routes[route{from, to}]
}

// Request is the raw input of NewOptions.
type Request struct {
	Config *config.Config
	Input  string
	Output string
	// From is inferred from the input extension when empty.
	From Format
	To   Format
}

// Options is a validated, read-only conversion setup. Build it with
// NewOptions; the zero value is not usable.
type Options struct {
	proj      *projection.Projection
	input     string
	output    string
	preview   string
	from      Format
	to        Format
	edit      elevation.Edit
	layout    stream.Layout
	precision int
	kmlRead   kml.ReaderOptions
	kmlWrite  kml.WriterOptions
	render    render.Options
	marker    marker.Options
	schematic voxel.Options
}

// NewOptions validates r and resolves every setting. Unsupported format
// pairs and options fail here, before any file is touched.
func NewOptions(r Request) (*Options, error) {
	cfg := r.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if r.Input == "" || r.Output == "" {
		return nil, invalid(errors.New("input and output paths are required"))
	}

	from := r.From
	if from == "" {
		var err error
		if from, err = Infer(r.Input); err != nil {
			return nil, err
		}
	}
	if !Supported(from, r.To) {
		return nil, invalid(fmt.Errorf("conversion from %q to %q is not supported", from, r.To))
	}

	o := &Options{
		input:  r.Input,
		output: r.Output,
		from:   from,
		to:     r.To,
		layout: stream.Layout{Compact: cfg.Output.Compact, Indent: cfg.Output.Indent},
		edit: elevation.Edit{
			Normalize: cfg.Elevation.Normalize,
			Offset:    cfg.Elevation.Offset,
			Drop:      cfg.Elevation.Drop,
		},
		precision: geojson.FullPrecision,
		kmlRead:   kml.ReaderOptions{Element: cfg.KML.Element},
	}

	if err := o.resolvePrecision(cfg); err != nil {
		return nil, err
	}
	if err := o.resolveProjection(cfg); err != nil {
		return nil, err
	}

	var err error
	switch o.to {
	case FormatKML:
		o.kmlWrite = kml.WriterOptions{Layout: o.layout, DocumentID: cfg.KML.DocumentID}
		if strings.EqualFold(cfg.KML.DocumentID, AutoDocumentID) {
			o.kmlWrite.DocumentID = uuid.NewString()
		}
	case FormatBlueMap:
		err = o.resolveMarker(cfg)
	case FormatSchematic:
		err = o.resolveSchematic(cfg)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Options) resolvePrecision(cfg *config.Config) error {
	p := cfg.Output.Precision
	if p == nil {
		return nil
	}
	switch {
	case o.to == FormatKML:
		return invalid(errors.New("kml output always keeps full precision"))
	case *p < 0:
		return invalid(fmt.Errorf("precision must not be negative, got %d", *p))
	}
	o.precision = *p
	return nil
}

func (o *Options) resolveProjection(cfg *config.Config) error {
	name := cfg.Projection.Name
	if name == "" {
		if !o.to.Renders() {
			return nil
		}
		name = "global"
	}
	proj, err := projection.Parse(name, cfg.Projection.OffsetX, cfg.Projection.OffsetY)
	if err != nil {
		return err
	}
	o.proj = proj
	return nil
}

func (o *Options) resolveRender(cfg *config.Config, styles map[string]string, def string) (render.Options, error) {
	mode, err := elevation.ParseMode(cfg.Render.Elevation)
	if err != nil {
		return render.Options{}, err
	}
	table, err := render.NewStyleTable(styles)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Policy:          elevation.Policy{Mode: mode, Value: cfg.Render.FixedElevation},
		Styles:          table,
		Default:         def,
		Extrude:         cfg.Render.Extrude,
		Label:           cfg.Render.Label,
		NormalizeNaming: cfg.Render.NormalizeNaming,
		Strict:          cfg.Render.Strict,
	}, nil
}

func (o *Options) resolveMarker(cfg *config.Config) error {
	ro, err := o.resolveRender(cfg, cfg.Marker.Styles, cfg.Marker.DefaultStyle)
	if err != nil {
		return err
	}
	for _, c := range ro.Styles {
		if _, err := marker.ParseColor(c); err != nil {
			return err
		}
	}
	if ro.Default != "" {
		if _, err := marker.ParseColor(ro.Default); err != nil {
			return err
		}
	}

	label := cfg.Marker.SetLabel
	if label == "" {
		base := filepath.Base(o.output)
		label = strings.TrimSuffix(base, filepath.Ext(base))
	}
	o.render = ro
	o.marker = marker.Options{
		Layout: o.layout,
		SetKey: render.SetKey(o.output, cfg.Render.NormalizeNaming),
		Set: marker.SetOptions{
			Label:         label,
			Toggleable:    cfg.Marker.Toggleable,
			DefaultHidden: cfg.Marker.DefaultHidden,
			Sorting:       cfg.Marker.Sorting,
		},
		Render:    ro,
		DepthTest: cfg.Marker.DepthTest,
	}
	return nil
}

func (o *Options) resolveSchematic(cfg *config.Config) error {
	sc := cfg.Schematic
	ro, err := o.resolveRender(cfg, sc.Patterns, sc.Pattern)
	if err != nil {
		return err
	}
	switch strings.ToLower(sc.Format) {
	case "", voxel.FormatJSON, voxel.FormatYAML:
	default:
		return invalid(fmt.Errorf("unknown schematic format %q", sc.Format))
	}
	if sc.Radius < 0 {
		return invalid(fmt.Errorf("radius must not be negative, got %v", sc.Radius))
	}
	if sc.Preview != "" && filepath.Clean(sc.Preview) == filepath.Clean(o.output) {
		return invalid(errors.New("preview and output must be different files"))
	}

	o.render = ro
	o.preview = sc.Preview
	o.schematic = voxel.Options{
		Layout:      o.layout,
		Format:      sc.Format,
		Radius:      sc.Radius,
		FillStroke:  sc.FillStroke,
		Fill:        sc.Fill,
		Render:      ro,
		PreviewSize: sc.PreviewSize,
	}
	return nil
}

// From returns the source format.
func (o *Options) From() Format { return o.from }

// To returns the sink format.
func (o *Options) To() Format { return o.to }

// Input returns the source path.
func (o *Options) Input() string { return o.input }

// Output returns the destination path.
func (o *Options) Output() string { return o.output }

// Projection returns the projection applied to every feature, or nil.
func (o *Options) Projection() *projection.Projection { return o.proj }

// Edit returns the elevation edit applied before projection.
func (o *Options) Edit() elevation.Edit { return o.edit }

// Precision returns the GeoJSON coordinate precision.
func (o *Options) Precision() int { return o.precision }

func invalid(err error) error {
	return geo.Wrap(geo.ErrUnsupportedConversion, "options", err)
}
