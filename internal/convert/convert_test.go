package convert

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconv/internal/config"
	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/geojson"
	"github.com/woozymasta/geoconv/internal/kml"
	"github.com/woozymasta/geoconv/internal/marker"
	"github.com/woozymasta/geoconv/internal/projection"
)

const sample = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "p1", "properties": {"name": "Paris"},
     "geometry": {"type": "Point", "coordinates": [2.35, 48.85, 35]}},
    {"type": "Feature", "id": "l1", "properties": {},
     "geometry": {"type": "LineString", "coordinates": [[0, 0, 1], [1, 1, 2]]}},
    {"type": "Feature", "id": "a1", "properties": {"name": "Area"},
     "geometry": {"type": "Polygon", "coordinates": [[[0, 0, 10], [1, 0, 10], [1, 1, 10], [0, 0, 10]]]}}
  ]
}`

func writeInput(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func readAll(t *testing.T, r interface {
	HasNext() bool
	Next() (*geo.Feature, error)
	Close() error
}) []*geo.Feature {
	t.Helper()
	defer func() { require.NoError(t, r.Close()) }()
	var out []*geo.Feature
	for r.HasNext() {
		f, err := r.Next()
		require.NoError(t, err)
		out = append(out, f)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestNewOptionsRejects(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		mutate func(*config.Config)
	}{
		{name: "missing output", req: Request{Input: "a.geojson", To: FormatKML}},
		{name: "unknown extension", req: Request{Input: "a.txt", Output: "b.kml", To: FormatKML}},
		{name: "marker source", req: Request{Input: "a.json", Output: "b.kml", From: FormatBlueMap, To: FormatKML}},
		{name: "schematic source", req: Request{Input: "a.json", Output: "b.json", From: FormatSchematic, To: FormatGeoJSON}},
		{
			name:   "kml precision",
			req:    Request{Input: "a.geojson", Output: "b.kml", To: FormatKML},
			mutate: func(c *config.Config) { c.Output.Precision = ptr(3) },
		},
		{
			name:   "negative precision",
			req:    Request{Input: "a.kml", Output: "b.geojson", To: FormatGeoJSON},
			mutate: func(c *config.Config) { c.Output.Precision = ptr(-2) },
		},
		{
			name:   "unknown projection",
			req:    Request{Input: "a.kml", Output: "b.geojson", To: FormatGeoJSON},
			mutate: func(c *config.Config) { c.Projection.Name = "mercator" },
		},
		{
			name:   "bad color",
			req:    Request{Input: "a.kml", Output: "b.json", To: FormatBlueMap},
			mutate: func(c *config.Config) { c.Marker.Styles = map[string]string{"polygon": "red"} },
		},
		{
			name:   "unknown style class",
			req:    Request{Input: "a.kml", Output: "b.json", To: FormatBlueMap},
			mutate: func(c *config.Config) { c.Marker.Styles = map[string]string{"circle": "#ff0000"} },
		},
		{
			name:   "unknown elevation mode",
			req:    Request{Input: "a.kml", Output: "b.json", To: FormatBlueMap},
			mutate: func(c *config.Config) { c.Render.Elevation = "median" },
		},
		{
			name:   "schematic format",
			req:    Request{Input: "a.kml", Output: "b.nbt", To: FormatSchematic},
			mutate: func(c *config.Config) { c.Schematic.Format = "nbt" },
		},
		{
			name:   "negative radius",
			req:    Request{Input: "a.kml", Output: "b.json", To: FormatSchematic},
			mutate: func(c *config.Config) { c.Schematic.Radius = -1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			tt.req.Config = cfg
			_, err := NewOptions(tt.req)
			assert.ErrorIs(t, err, geo.ErrUnsupportedConversion)
		})
	}
}

func TestNewOptionsDefaults(t *testing.T) {
	o, err := NewOptions(Request{Input: "in.kml", Output: "out.geojson", To: FormatGeoJSON})
	require.NoError(t, err)
	assert.Equal(t, FormatKML, o.From())
	assert.Nil(t, o.Projection())
	assert.Equal(t, geojson.FullPrecision, o.Precision())
	assert.True(t, o.Edit().IsZero())

	o, err = NewOptions(Request{Input: "in.geojson", Output: "out.json", To: FormatBlueMap})
	require.NoError(t, err)
	require.NotNil(t, o.Projection())
	assert.Equal(t, projection.Global().Steps(), o.Projection().Steps())

	cfg := config.Default()
	cfg.Projection.Name = "none"
	o, err = NewOptions(Request{Input: "in.geojson", Output: "out.json", To: FormatBlueMap, Config: cfg})
	require.NoError(t, err)
	assert.Nil(t, o.Projection())
}

func TestNewOptionsDocumentID(t *testing.T) {
	cfg := config.Default()
	cfg.KML.DocumentID = AutoDocumentID
	o, err := NewOptions(Request{Input: "in.geojson", Output: "out.kml", To: FormatKML, Config: cfg})
	require.NoError(t, err)
	_, err = uuid.Parse(o.kmlWrite.DocumentID)
	assert.NoError(t, err)

	cfg.KML.DocumentID = "places"
	o, err = NewOptions(Request{Input: "in.geojson", Output: "out.kml", To: FormatKML, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, "places", o.kmlWrite.DocumentID)
}

func TestRunRoundTrip(t *testing.T) {
	src := writeInput(t, "in.geojson", sample)
	dir := t.TempDir()
	kmlPath := filepath.Join(dir, "mid.kml")
	backPath := filepath.Join(dir, "out.geojson")

	o, err := NewOptions(Request{Input: src, Output: kmlPath, To: FormatKML})
	require.NoError(t, err)
	stats, err := Run(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, Stats{Read: 3, Written: 3}, stats)

	o, err = NewOptions(Request{Input: kmlPath, Output: backPath, To: FormatGeoJSON})
	require.NoError(t, err)
	_, err = Run(context.Background(), o)
	require.NoError(t, err)

	in, err := os.Open(src)
	require.NoError(t, err)
	want := readAll(t, geojson.NewReader(in, in))

	back, err := os.Open(backPath)
	require.NoError(t, err)
	got := readAll(t, geojson.NewReader(back, back))

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Geometry.Type(), got[i].Geometry.Type())
		assert.Equal(t, geo.Coordinates(want[i].Geometry), geo.Coordinates(got[i].Geometry))
	}
	assert.Equal(t, "Paris", got[0].Properties["name"])
}

func TestRunElevationBeforeProjection(t *testing.T) {
	src := writeInput(t, "in.geojson", sample)
	out := filepath.Join(t.TempDir(), "out.kml")

	cfg := config.Default()
	cfg.Elevation.Offset = ptr(5.0)
	cfg.Projection.Name = "global"
	o, err := NewOptions(Request{Input: src, Output: out, To: FormatKML, Config: cfg})
	require.NoError(t, err)
	_, err = Run(context.Background(), o)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	got := readAll(t, kml.NewReader(f, f, kml.ReaderOptions{}))
	require.Len(t, got, 3)

	x, y, err := o.Projection().Forward(2.35, 48.85)
	require.NoError(t, err)
	p := got[0].Geometry.(*geo.Point).Coord
	assert.InDelta(t, x, p.X, 1e-6)
	assert.InDelta(t, y, p.Y, 1e-6)
	assert.InDelta(t, 40, p.Z, 1e-9)
}

func TestRunMarkers(t *testing.T) {
	src := writeInput(t, "in.geojson", sample)
	out := filepath.Join(t.TempDir(), "My Places.json")

	cfg := config.Default()
	cfg.Projection.Name = "none"
	cfg.Render.Elevation = "average"
	cfg.Render.Extrude = ptr(5.0)
	cfg.Render.NormalizeNaming = true
	o, err := NewOptions(Request{Input: src, Output: out, To: FormatBlueMap, Config: cfg})
	require.NoError(t, err)

	stats, err := Run(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, Stats{Read: 3, Written: 3, Emitted: 3}, stats)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc map[string]*marker.Set
	require.NoError(t, json.Unmarshal(data, &doc))

	set, ok := doc["my-places"]
	require.True(t, ok)
	assert.Equal(t, "My Places", set.Label)
	assert.True(t, set.Toggleable)
	assert.ElementsMatch(t, []string{"paris", "l1", "area"}, keys(set.Markers))

	area := set.Markers["area"]
	assert.Equal(t, marker.TypeExtrude, area.Type)
	require.NotNil(t, area.ShapeMinY)
	require.NotNil(t, area.ShapeMaxY)
	assert.InDelta(t, 10, *area.ShapeMinY, 1e-9)
	assert.InDelta(t, 15, *area.ShapeMaxY, 1e-9)

	poi := set.Markers["paris"]
	assert.Equal(t, marker.TypePOI, poi.Type)
	assert.Equal(t, marker.Vector3{X: 2.35, Y: 35, Z: 48.85}, poi.Position)
}

func TestRunSchematicWithPreview(t *testing.T) {
	src := writeInput(t, "in.geojson", sample)
	dir := t.TempDir()
	out := filepath.Join(dir, "blocks.yaml")

	cfg := config.Default()
	cfg.Projection.Name = "none"
	cfg.Schematic.Format = "yaml"
	cfg.Schematic.Preview = filepath.Join(dir, "preview.webp")
	cfg.Schematic.PreviewSize = 64
	o, err := NewOptions(Request{Input: src, Output: out, To: FormatSchematic, Config: cfg})
	require.NoError(t, err)

	stats, err := Run(context.Background(), o)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Emitted)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "diamond_block")

	info, err := os.Stat(cfg.Schematic.Preview)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRunFailureLeavesNoOutput(t *testing.T) {
	broken := strings.Replace(sample, `[[[0, 0, 10], [1, 0, 10], [1, 1, 10], [0, 0, 10]]]`, `[[[0, 0], [1, 0], [1, 1]]]`, 1)
	src := writeInput(t, "in.geojson", broken)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.geojson")

	o, err := NewOptions(Request{Input: src, Output: out, To: FormatGeoJSON})
	require.NoError(t, err)
	stats, err := Run(context.Background(), o)
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrIncompleteFeature)
	assert.Equal(t, 2, stats.Written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunCancelled(t *testing.T) {
	src := writeInput(t, "in.geojson", sample)
	out := filepath.Join(t.TempDir(), "out.geojson")

	o, err := NewOptions(Request{Input: src, Output: out, To: FormatGeoJSON})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, o)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, out)
}

func TestRunMissingInput(t *testing.T) {
	o, err := NewOptions(Request{
		Input:  filepath.Join(t.TempDir(), "absent.geojson"),
		Output: filepath.Join(t.TempDir(), "out.kml"),
		To:     FormatKML,
	})
	require.NoError(t, err)
	_, err = Run(context.Background(), o)
	assert.ErrorIs(t, err, geo.ErrResourceIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompact(t *testing.T) {
	src := writeInput(t, "in.geojson", sample)
	dir := t.TempDir()
	pretty := filepath.Join(dir, "pretty.kml")

	o, err := NewOptions(Request{Input: src, Output: pretty, To: FormatKML})
	require.NoError(t, err)
	_, err = Run(context.Background(), o)
	require.NoError(t, err)

	small := filepath.Join(dir, "small.kml")
	require.NoError(t, Compact(pretty, small))

	before, err := os.Stat(pretty)
	require.NoError(t, err)
	after, err := os.Stat(small)
	require.NoError(t, err)
	assert.Less(t, after.Size(), before.Size())

	f, err := os.Open(small)
	require.NoError(t, err)
	got := readAll(t, kml.NewReader(f, f, kml.ReaderOptions{}))
	assert.Len(t, got, 3)

	jsonOut := filepath.Join(dir, "small.geojson")
	require.NoError(t, Compact(src, jsonOut))
	data, err := os.ReadFile(jsonOut)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"coordinates":[2.35,48.85,35]`)

		assert.ErrorIs(t, Compact(writeInput(t, "a.txt", "x"), filepath.Join(dir, "y.txt")), geo.ErrUnsupportedConversion)
}

func keys(m map[string]*marker.Marker) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
