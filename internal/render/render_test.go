package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconv/internal/elevation"
	"github.com/woozymasta/geoconv/internal/geo"
)

type recorder struct {
	caps Capabilities
	got  []*Primitive
}

func (r *recorder) Capabilities() Capabilities { return r.caps }

func (r *recorder) Emit(p *Primitive) error {
	r.got = append(r.got, p)
	return nil
}

func (r *recorder) keys() []string {
	out := make([]string, len(r.got))
	for i, p := range r.got {
		out[i] = p.Key
	}
	return out
}

func ring(t *testing.T, coords ...geo.Coordinate) *geo.LinearRing {
	t.Helper()
	r, err := geo.NewLinearRing(coords)
	require.NoError(t, err)
	return r
}

func TestCollectionKeys(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, Options{})
	f := &geo.Feature{ID: "x", Geometry: &geo.Collection{Kind: geo.TypeGeometryCollection, Children: []geo.Geometry{
		&geo.Collection{Kind: geo.TypeMultiPoint, Children: []geo.Geometry{
			&geo.Point{Coord: geo.XY(0, 0)},
			&geo.Point{Coord: geo.XY(1, 1)},
		}},
		&geo.Point{Coord: geo.XY(2, 2)},
		&geo.LineString{Coords: geo.Sequence{geo.XY(0, 0), geo.XY(1, 0)}},
	}}}

	n, err := d.Render(f)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []string{"x-0-0", "x-0-1", "x-1", "x-2"}, rec.keys())
}

func TestUnsupportedGeometry(t *testing.T) {
	f := &geo.Feature{ID: "x", Geometry: &geo.Collection{Kind: geo.TypeGeometryCollection, Children: []geo.Geometry{
		&geo.Unsupported{Name: "Model"},
		&geo.Point{Coord: geo.XY(2, 2)},
	}}}

	rec := &recorder{}
	n, err := NewDispatcher(rec, Options{}).Render(f)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"x-1"}, rec.keys())

	_, err = NewDispatcher(&recorder{}, Options{Strict: true}).Render(f)
	assert.True(t, errors.Is(err, geo.ErrUnsupportedConversion))
}

func TestNaming(t *testing.T) {
	point := &geo.Point{Coord: geo.XY(0, 0)}
	tests := []struct {
		name      string
		opts      Options
		feature   *geo.Feature
		wantKey   string
		wantLabel string
	}{
		{"name property", Options{}, &geo.Feature{ID: "7", Properties: map[string]any{"name": "Eiffel Tower"}}, "Eiffel Tower", "Eiffel Tower"},
		{"id", Options{}, &geo.Feature{ID: "7"}, "7", "7"},
		{"ordinal", Options{}, &geo.Feature{}, "0", "0"},
		{"caller label", Options{Label: "Landmark"}, &geo.Feature{ID: "7"}, "7", "Landmark"},
		{"normalized", Options{NormalizeNaming: true}, &geo.Feature{Properties: map[string]any{"name": "Café de Flore"}}, "cafe-de-flore", "Café de Flore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			tt.feature.Geometry = point
			_, err := NewDispatcher(rec, tt.opts).Render(tt.feature)
			require.NoError(t, err)
			require.Len(t, rec.got, 1)
			assert.Equal(t, tt.wantKey, rec.got[0].Key)
			assert.Equal(t, tt.wantLabel, rec.got[0].Label)
		})
	}
}

func TestOrdinalAdvances(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, Options{})
	for i := 0; i < 3; i++ {
		_, err := d.Render(&geo.Feature{Geometry: &geo.Point{Coord: geo.XY(0, 0)}})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"0", "1", "2"}, rec.keys())
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Eiffel Tower":     "eiffel-tower",
		"Café_NotreDame":   "cafe-notre-dame",
		"  --Hello!!World": "hello-world",
		"Route66":          "route66",
		"!!!":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestSetKey(t *testing.T) {
	assert.Equal(t, "Paris Landmarks", SetKey("/tmp/Paris Landmarks.json", false))
	assert.Equal(t, "paris-landmarks", SetKey("/tmp/Paris Landmarks.json", true))
}

func TestExtrudedAverage(t *testing.T) {
	shell := ring(t, geo.XYZ(0, 0, 10), geo.XYZ(1, 0, 10), geo.XYZ(1, 1, 10), geo.XYZ(0, 0, 10))
	height := 5.0
	rec := &recorder{caps: Capabilities{PerVertexLines: true}}
	d := NewDispatcher(rec, Options{Policy: elevation.Policy{Mode: elevation.Average}, Extrude: &height})

	_, err := d.Render(&geo.Feature{ID: "b", Geometry: &geo.Polygon{Shell: shell}})
	require.NoError(t, err)
	require.Len(t, rec.got, 1)
	p := rec.got[0]
	assert.Equal(t, KindSolid, p.Kind)
	assert.Equal(t, 10.0, p.Elevation)
	assert.Equal(t, 15.0, p.Elevation+p.Height)
}

func TestRingFallsBackToAverage(t *testing.T) {
	r := ring(t, geo.XYZ(0, 0, 1), geo.XY(1, 0), geo.XYZ(1, 1, 3), geo.XYZ(0, 0, 1))
	rec := &recorder{caps: Capabilities{PerVertexLines: true}}
	_, err := NewDispatcher(rec, Options{}).Render(&geo.Feature{ID: "r", Geometry: r})
	require.NoError(t, err)

	p := rec.got[0]
	assert.Equal(t, KindRing, p.Kind)
	assert.False(t, p.PerVertex)
	assert.InDelta(t, 5.0/3.0, p.Elevation, 1e-12)
	for _, c := range p.Points {
		assert.InDelta(t, 5.0/3.0, c.Z, 1e-12)
	}
}

func TestLinePerVertex(t *testing.T) {
	line := &geo.LineString{Coords: geo.Sequence{geo.XYZ(0, 0, 1), geo.XY(1, 0), geo.XYZ(2, 0, 3)}}
	rec := &recorder{caps: Capabilities{PerVertexLines: true}}
	_, err := NewDispatcher(rec, Options{}).Render(&geo.Feature{ID: "l", Geometry: line})
	require.NoError(t, err)

	p := rec.got[0]
	assert.True(t, p.PerVertex)
	assert.Equal(t, []float64{1, 2, 3}, []float64{p.Points[0].Z, p.Points[1].Z, p.Points[2].Z})
}

func TestPointFixedElevation(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, Options{Policy: elevation.Policy{Mode: elevation.Fixed, Value: 64}})
	_, err := d.Render(&geo.Feature{ID: "p", Geometry: &geo.Point{Coord: geo.XYZ(0, 0, 12)}})
	require.NoError(t, err)
	assert.Equal(t, 64.0, rec.got[0].Position.Z)
}

func TestStyleResolution(t *testing.T) {
	styles, err := NewStyleTable(map[string]string{
		"Polygon":            "stone",
		"MultiPoint":         "gold",
		"GeometryCollection": "glass",
	})
	require.NoError(t, err)

	poly := &geo.Polygon{Shell: ring(t, geo.XY(0, 0), geo.XY(1, 0), geo.XY(1, 1), geo.XY(0, 0))}
	rec := &recorder{}
	d := NewDispatcher(rec, Options{Styles: styles, Default: "diamond"})

	_, err = d.Render(&geo.Feature{ID: "a", Geometry: poly})
	require.NoError(t, err)
	_, err = d.Render(&geo.Feature{ID: "b", Geometry: &geo.Point{Coord: geo.XY(0, 0)}})
	require.NoError(t, err)
	_, err = d.Render(&geo.Feature{ID: "c", Geometry: &geo.Collection{Kind: geo.TypeMultiPoint, Children: []geo.Geometry{&geo.Point{}}}})
	require.NoError(t, err)
	_, err = d.Render(&geo.Feature{ID: "d", Geometry: &geo.Collection{Kind: geo.TypeGeometryCollection, Children: []geo.Geometry{poly}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"stone", "diamond", "gold", "glass"},
		[]string{rec.got[0].Style, rec.got[1].Style, rec.got[2].Style, rec.got[3].Style})

	wild, err := NewStyleTable(map[string]string{"geometry": "wool", "polygon": "stone"})
	require.NoError(t, err)
	rec = &recorder{}
	_, err = NewDispatcher(rec, Options{Styles: wild}).Render(&geo.Feature{ID: "a", Geometry: poly})
	require.NoError(t, err)
	assert.Equal(t, "wool", rec.got[0].Style)

	_, err = NewStyleTable(map[string]string{"circle": "x"})
	assert.Error(t, err)
}
