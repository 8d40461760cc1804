package elevation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconv/internal/geo"
)

func TestApply(t *testing.T) {
	src := geo.Sequence{geo.XYZ(0, 0, 10), geo.XY(1, 1)}

	tests := []struct {
		name string
		edit Edit
		want []float64
	}{
		{"none", Edit{}, []float64{10, math.NaN()}},
		{"drop", Drop(), []float64{math.NaN(), math.NaN()}},
		{"normalize", Normalize(64), []float64{64, 64}},
		{"offset keeps absent", Offset(5), []float64{15, math.NaN()}},
		{"normalize wins over offset", Edit{Normalize: ptr(1.0), Offset: ptr(3.0)}, []float64{1, 1}},
		{"drop wins over normalize", Edit{Drop: true, Normalize: ptr(1.0)}, []float64{math.NaN(), math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.edit.Apply(src)
			require.Len(t, out, len(tt.want))
			for i, z := range tt.want {
				if math.IsNaN(z) {
					assert.True(t, math.IsNaN(out[i].Z), "index %d", i)
					continue
				}
				assert.Equal(t, z, out[i].Z, "index %d", i)
			}
		})
	}
	assert.Equal(t, 10.0, src[0].Z, "input must not change")
}

func TestDropIdempotent(t *testing.T) {
	src := geo.Sequence{geo.XYZ(1, 2, 3)}
	once := Drop().Apply(src)
	twice := Drop().Apply(once)
	assert.Equal(t, once[0].X, twice[0].X)
	assert.True(t, math.IsNaN(twice[0].Z))
}

func TestOffsetComposition(t *testing.T) {
	src := geo.Sequence{geo.XYZ(0, 0, 1), geo.XY(0, 0)}
	out := Offset(3).Apply(Offset(2).Apply(src))
	assert.Equal(t, 6.0, out[0].Z)
	assert.False(t, out[1].HasZ())
}

func TestGeometryDeepCopy(t *testing.T) {
	poly, err := geo.NewPolygon([]geo.Sequence{{
		geo.XYZ(0, 0, 1), geo.XYZ(1, 0, 1), geo.XYZ(1, 1, 1), geo.XYZ(0, 0, 1),
	}})
	require.NoError(t, err)

	out, err := Normalize(7).Geometry(poly)
	require.NoError(t, err)
	assert.Equal(t, 7.0, out.(*geo.Polygon).Shell.Coords[0].Z)
	assert.Equal(t, 1.0, poly.Shell.Coords[0].Z)
}

func TestPolicy(t *testing.T) {
	ring := geo.Sequence{geo.XYZ(0, 0, 1), geo.XY(1, 0), geo.XYZ(1, 1, 3)}
	assert.Equal(t, 2.0, Policy{Mode: Average}.Of(ring))
	assert.Equal(t, 0.0, Policy{Mode: Average}.Of(geo.Sequence{geo.XY(0, 0)}))
	assert.Equal(t, 9.0, Policy{Mode: Fixed, Value: 9}.Of(ring))

	assert.Equal(t, 5.0, Policy{}.Point(geo.XYZ(0, 0, 5)))
	assert.Equal(t, 0.0, Policy{}.Point(geo.XY(0, 0)))
	assert.Equal(t, 9.0, Policy{Mode: Fixed, Value: 9}.Point(geo.XYZ(0, 0, 5)))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("average")
	require.NoError(t, err)
	assert.Equal(t, Average, m)

	_, err = ParseMode("median")
	assert.Error(t, err)
}

func ptr(v float64) *float64 { return &v }
