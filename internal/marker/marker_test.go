package marker

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconv/internal/elevation"
	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/render"
	"github.com/woozymasta/geoconv/internal/stream"
)

func square(t *testing.T, z float64) geo.Sequence {
	t.Helper()
	return geo.Sequence{geo.XYZ(0, 0, z), geo.XYZ(4, 0, z), geo.XYZ(4, 4, z), geo.XYZ(0, 4, z), geo.XYZ(0, 0, z)}
}

func TestWriterDocument(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, nil, Options{
		Layout: stream.Layout{Compact: true},
		SetKey: "landmarks",
		Set:    SetOptions{Toggleable: true, Sorting: 3},
	})
	require.NoError(t, err)

	require.NoError(t, w.Write(&geo.Feature{ID: "p", Geometry: &geo.Point{Coord: geo.XYZ(10, 20, 30)}}))
	require.NoError(t, w.Close())

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	set := doc["landmarks"]
	require.NotNil(t, set)
	assert.Equal(t, "landmarks", set["label"])
	assert.Equal(t, true, set["toggleable"])
	assert.Equal(t, 3.0, set["sorting"])

	markers := set["markers"].(map[string]any)
	poi := markers["p"].(map[string]any)
	assert.Equal(t, TypePOI, poi["type"])
	assert.Equal(t, map[string]any{"x": 10.0, "y": 30.0, "z": 20.0}, poi["position"])
}

func TestExtrudedPolygonWithHole(t *testing.T) {
	hole := geo.Sequence{geo.XY(1, 1), geo.XY(2, 1), geo.XY(2, 2), geo.XY(1, 1)}
	poly, err := geo.NewPolygon([]geo.Sequence{square(t, 10), hole})
	require.NoError(t, err)

	height := 5.0
	var buf bytes.Buffer
	w, err := NewWriter(&buf, nil, Options{
		SetKey: "s",
		Render: render.Options{
			Policy:  elevation.Policy{Mode: elevation.Average},
			Extrude: &height,
			Default: "#ff000080",
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Write(&geo.Feature{ID: "b", Geometry: poly}))

	m := w.Set().Markers["b"]
	require.NotNil(t, m)
	assert.Equal(t, TypeExtrude, m.Type)
	assert.Equal(t, 10.0, *m.ShapeMinY)
	assert.Equal(t, 15.0, *m.ShapeMaxY)
	require.Len(t, m.Holes, 1)
	assert.Equal(t, Vector3{X: 2, Y: 10, Z: 2}, m.Position)
	assert.Equal(t, &Color{R: 255, A: 0.502}, m.LineColor)
	assert.Equal(t, 0.151, m.FillColor.A)

	require.NoError(t, w.Close())
	assert.Contains(t, buf.String(), "\n  \"s\": {")
}

func TestLineAndRing(t *testing.T) {
	w, err := NewWriter(&bytes.Buffer{}, nil, Options{SetKey: "s"})
	require.NoError(t, err)

	line := &geo.LineString{Coords: geo.Sequence{geo.XYZ(0, 0, 1), geo.XYZ(1, 2, 3)}}
	ring, err := geo.NewLinearRing(square(t, 7))
	require.NoError(t, err)
	require.NoError(t, w.Write(&geo.Feature{ID: "x", Geometry: &geo.Collection{
		Kind: geo.TypeGeometryCollection, Children: []geo.Geometry{line, ring},
	}}))

	l := w.Set().Markers["x-0"]
	assert.Equal(t, TypeLine, l.Type)
	assert.Equal(t, []Vector3{{0, 1, 0}, {1, 3, 2}}, l.Line)

	s := w.Set().Markers["x-1"]
	assert.Equal(t, TypeShape, s.Type)
	assert.Equal(t, 7.0, *s.ShapeY)
	assert.Len(t, s.Shape, 5)
}

func TestDuplicateKeyReplaces(t *testing.T) {
	w, err := NewWriter(&bytes.Buffer{}, nil, Options{SetKey: "s"})
	require.NoError(t, err)
	for _, x := range []float64{1, 2} {
		require.NoError(t, w.Write(&geo.Feature{ID: "same", Geometry: &geo.Point{Coord: geo.XY(x, 0)}}))
	}
	assert.Len(t, w.Set().Markers, 1)
	assert.Equal(t, 2.0, w.Set().Markers["same"].Position.X)
}

func TestInvalidColor(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, nil, Options{Render: render.Options{Default: "red"}})
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#0a0b0c")
	require.NoError(t, err)
	assert.Equal(t, &Color{R: 10, G: 11, B: 12, A: 1}, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
}
