package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareAround(lng, lat, half float64) orb.Polygon {
	return orb.Polygon{
		{
			{lng - half, lat - half},
			{lng + half, lat - half},
			{lng + half, lat + half},
			{lng - half, lat + half},
			{lng - half, lat - half},
		},
	}
}

func TestCollectPolygons(t *testing.T) {
	square := squareAround(0, 0, 1)

	tests := []struct {
		name     string
		geometry orb.Geometry
		want     int
	}{
		{name: "polygon", geometry: square, want: 1},
		{name: "multipolygon", geometry: orb.MultiPolygon{square, squareAround(5, 5, 1)}, want: 2},
		{name: "collection", geometry: orb.Collection{square, orb.MultiPolygon{square}}, want: 2},
		{name: "point ignored", geometry: orb.Point{1, 2}, want: 0},
		{name: "line ignored", geometry: orb.LineString{{0, 0}, {1, 1}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, CollectPolygons(tt.geometry), tt.want)
		})
	}
}

func TestCombine(t *testing.T) {
	first := squareAround(0, 0, 1)
	second := squareAround(10, 10, 1)

	region, ok := Combine([]orb.Polygon{first, second})
	require.True(t, ok)
	assert.Len(t, region, 2)
}

func TestCombine_DropsDegenerateFragments(t *testing.T) {
	degenerate := orb.Polygon{{{0, 0}, {1, 1}}} // two vertices is not a ring

	region, ok := Combine([]orb.Polygon{degenerate, squareAround(0, 0, 1)})
	require.True(t, ok)
	assert.Len(t, region, 1)
}

func TestCombine_Empty(t *testing.T) {
	_, ok := Combine(nil)
	assert.False(t, ok)

	_, ok = Combine([]orb.Polygon{{}})
	assert.False(t, ok)
}

func TestBounds(t *testing.T) {
	region := orb.MultiPolygon{squareAround(0, 0, 1), squareAround(10, 5, 1)}

	bound, ok := Bounds(region)
	require.True(t, ok)
	assert.Equal(t, orb.Point{-1, -1}, bound.Min)
	assert.Equal(t, orb.Point{11, 6}, bound.Max)
}

func TestBounds_SkipsNonFiniteCoordinates(t *testing.T) {
	region := orb.MultiPolygon{
		{
			{
				{math.NaN(), 0},
				{0, 0},
				{1, 0},
				{1, 1},
				{math.Inf(1), math.Inf(1)},
			},
		},
	}

	bound, ok := Bounds(region)
	require.True(t, ok)
	assert.Equal(t, orb.Point{0, 0}, bound.Min)
	assert.Equal(t, orb.Point{1, 1}, bound.Max)
}

func TestBounds_EmptyRegion(t *testing.T) {
	_, ok := Bounds(nil)
	assert.False(t, ok)

	onlyNaN := orb.MultiPolygon{{{{math.NaN(), math.NaN()}}}}
	_, ok = Bounds(onlyNaN)
	assert.False(t, ok)
}

func TestBoundsOverlap(t *testing.T) {
	base := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}}

	tests := []struct {
		name  string
		other orb.Bound
		want  bool
	}{
		{name: "overlapping", other: orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{3, 3}}, want: true},
		{name: "contained", other: orb.Bound{Min: orb.Point{0.5, 0.5}, Max: orb.Point{1.5, 1.5}}, want: true},
		{name: "touching edge", other: orb.Bound{Min: orb.Point{2, 0}, Max: orb.Point{4, 2}}, want: true},
		{name: "disjoint east", other: orb.Bound{Min: orb.Point{3, 0}, Max: orb.Point{4, 2}}, want: false},
		{name: "disjoint north", other: orb.Bound{Min: orb.Point{0, 3}, Max: orb.Point{2, 4}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoundsOverlap(base, tt.other))
			assert.Equal(t, tt.want, BoundsOverlap(tt.other, base))
		})
	}
}

func TestCentroid(t *testing.T) {
	region := orb.MultiPolygon{squareAround(-63.5827, 44.6511, 0.01)}

	center, ok := Centroid(region)
	require.True(t, ok)
	assert.InDelta(t, -63.5827, center[0], 1e-9)
	assert.InDelta(t, 44.6511, center[1], 1e-9)
}

func TestCentroid_EmptyRegion(t *testing.T) {
	_, ok := Centroid(nil)
	assert.False(t, ok)
}

func TestContains(t *testing.T) {
	region := orb.MultiPolygon{squareAround(0, 0, 1)}

	assert.True(t, Contains(region, orb.Point{0, 0}))
	assert.False(t, Contains(region, orb.Point{2, 2}))
}

func TestContains_HonorsHoles(t *testing.T) {
	outer := squareAround(0, 0, 2)[0]
	hole := squareAround(0, 0, 0.5)[0]
	region := orb.MultiPolygon{{outer, hole}}

	assert.False(t, Contains(region, orb.Point{0, 0}), "point inside the hole is outside the region")
	assert.True(t, Contains(region, orb.Point{1, 1}))
}

func TestContains_EmptyRegion(t *testing.T) {
	assert.False(t, Contains(nil, orb.Point{0, 0}))
	assert.False(t, Contains(orb.MultiPolygon{}, orb.Point{0, 0}))
}
