package impl

import (
	"testing"

	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Halifax downtown, the anchor destination used throughout these tests.
const (
	halifaxLat = 44.6511
	halifaxLng = -63.5827
)

func TestMatchService_EmptyCatchment(t *testing.T) {
	matcher := NewMatchService([]*entity.CandidateArea{
		namedArea("a", "North End", halifaxLng, halifaxLat, 0.002),
	}, newDiscardLogger())

	assert.Empty(t, matcher.Match(nil, entity.ModeWalking))
	assert.Empty(t, matcher.Match(geojson.NewFeatureCollection(), entity.ModeWalking))

	noGeometry := geojson.NewFeatureCollection()
	noGeometry.Features = append(noGeometry.Features, &geojson.Feature{})
	assert.Empty(t, matcher.Match(noGeometry, entity.ModeWalking))
}

func TestMatchService_NoCandidates(t *testing.T) {
	matcher := NewMatchService(nil, newDiscardLogger())

	catchment := catchmentAround(halifaxLng, halifaxLat, 0.01)
	assert.Empty(t, matcher.Match(catchment, entity.ModePublicTransport))
}

func TestMatchService_SingleAreaInsideCatchment(t *testing.T) {
	// One candidate centred inside a 0.01 degree box around the
	// destination, two well outside.
	areas := []*entity.CandidateArea{
		namedArea("inside", "Downtown Halifax", halifaxLng, halifaxLat, 0.002),
		namedArea("west", "Bayers Lake", halifaxLng-0.2, halifaxLat, 0.002),
		namedArea("north", "Bedford", halifaxLng, halifaxLat+0.2, 0.002),
	}
	matcher := NewMatchService(areas, newDiscardLogger())

	catchment := catchmentAround(halifaxLng, halifaxLat, 0.01)
	matches := matcher.Match(catchment, entity.ModePublicTransport)

	require.Len(t, matches, 1)
	assert.Equal(t, "Downtown Halifax", matches[0].Name)
	assert.Equal(t, "public_transport", matches[0].Mode)
}

func TestMatchService_PrefilterSkipsContainmentTest(t *testing.T) {
	areas := []*entity.CandidateArea{
		namedArea("inside", "Downtown Halifax", halifaxLng, halifaxLat, 0.002),
		namedArea("far-1", "Truro", halifaxLng+2, halifaxLat+1, 0.002),
		namedArea("far-2", "Yarmouth", halifaxLng-3, halifaxLat-0.7, 0.002),
	}
	svc := NewMatchService(areas, newDiscardLogger()).(*matchService)

	region := orb.MultiPolygon{squarePolygon(halifaxLng, halifaxLat, 0.01)}
	matches, stats := svc.matchRegion(region, entity.ModeDriving)

	require.Len(t, matches, 1)
	assert.Equal(t, 3, stats.candidates)
	assert.Equal(t, 2, stats.prefiltered, "far-off candidates must be rejected by the bbox test")
	assert.Equal(t, 1, stats.tested, "only bbox survivors get a containment test")
	assert.Equal(t, 1, stats.matched)
}

func TestMatchService_DedupByResolvedName(t *testing.T) {
	// Two distinct candidates resolve the same display name via
	// different attribute keys; both centroids are inside the catchment.
	first := namedArea("a", "", halifaxLng-0.003, halifaxLat, 0.002)
	first.Properties["NAME"] = "South End"
	second := namedArea("b", "", halifaxLng+0.003, halifaxLat, 0.002)
	second.Properties["title"] = "South End"

	matcher := NewMatchService([]*entity.CandidateArea{first, second}, newDiscardLogger())

	catchment := catchmentAround(halifaxLng, halifaxLat, 0.01)
	matches := matcher.Match(catchment, entity.ModeWalking)

	require.Len(t, matches, 1)
	assert.Equal(t, "South End", matches[0].Name)
}

func TestMatchService_UnnamedAreaFallback(t *testing.T) {
	area := namedArea("anon", "", halifaxLng, halifaxLat, 0.002)
	matcher := NewMatchService([]*entity.CandidateArea{area}, newDiscardLogger())

	matches := matcher.Match(catchmentAround(halifaxLng, halifaxLat, 0.01), entity.ModeWalking)

	require.Len(t, matches, 1)
	assert.Equal(t, entity.UnnamedArea, matches[0].Name)
}

func TestMatchService_SortedByName(t *testing.T) {
	areas := []*entity.CandidateArea{
		namedArea("c", "Woodside", halifaxLng+0.003, halifaxLat, 0.002),
		namedArea("a", "Armdale", halifaxLng-0.003, halifaxLat, 0.002),
		namedArea("b", "Clayton Park", halifaxLng, halifaxLat+0.003, 0.002),
	}
	matcher := NewMatchService(areas, newDiscardLogger())

	matches := matcher.Match(catchmentAround(halifaxLng, halifaxLat, 0.01), entity.ModeCycling)

	require.Len(t, matches, 3)
	assert.Equal(t, "Armdale", matches[0].Name)
	assert.Equal(t, "Clayton Park", matches[1].Name)
	assert.Equal(t, "Woodside", matches[2].Name)
}

func TestMatchService_Idempotent(t *testing.T) {
	areas := []*entity.CandidateArea{
		namedArea("a", "Armdale", halifaxLng-0.003, halifaxLat, 0.002),
		namedArea("b", "Clayton Park", halifaxLng, halifaxLat+0.003, 0.002),
	}
	matcher := NewMatchService(areas, newDiscardLogger())
	catchment := catchmentAround(halifaxLng, halifaxLat, 0.01)

	first := matcher.Match(catchment, entity.ModeWalking)
	second := matcher.Match(catchment, entity.ModeWalking)

	assert.Equal(t, first, second)
}

func TestMatchService_DegenerateCandidateExcluded(t *testing.T) {
	broken := &entity.CandidateArea{
		ID:         "broken",
		Region:     orb.MultiPolygon{},
		Properties: geojson.Properties{"name": "Ghost Area"},
	}
	areas := []*entity.CandidateArea{
		broken,
		namedArea("ok", "Downtown Halifax", halifaxLng, halifaxLat, 0.002),
	}
	matcher := NewMatchService(areas, newDiscardLogger())

	matches := matcher.Match(catchmentAround(halifaxLng, halifaxLat, 0.01), entity.ModeWalking)

	require.Len(t, matches, 1)
	assert.Equal(t, "Downtown Halifax", matches[0].Name)
}

func TestMatchService_MultiFragmentCatchmentIsOneRegion(t *testing.T) {
	// Two disjoint catchment fragments; candidates sit in either one.
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(squarePolygon(halifaxLng, halifaxLat, 0.01)))
	fc.Append(geojson.NewFeature(squarePolygon(halifaxLng+0.5, halifaxLat, 0.01)))

	areas := []*entity.CandidateArea{
		namedArea("a", "Downtown Halifax", halifaxLng, halifaxLat, 0.002),
		namedArea("b", "Eastern Passage", halifaxLng+0.5, halifaxLat, 0.002),
	}
	matcher := NewMatchService(areas, newDiscardLogger())

	matches := matcher.Match(fc, entity.ModeDriving)
	require.Len(t, matches, 2)

	region, ok := matcher.Region(fc)
	require.True(t, ok)
	assert.Len(t, region, 2)
}
