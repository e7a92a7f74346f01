package usecase

import (
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MatchUsecase is the containment engine: given a raw catchment response
// it determines which candidate areas fall within the catchment region.
// Both operations are pure functions of their inputs and never error;
// malformed or empty geometry degrades to an empty result.
type MatchUsecase interface {
	// Match returns the deduplicated, name-sorted list of candidate areas
	// whose centroid falls inside the catchment region.
	Match(catchment *geojson.FeatureCollection, mode entity.TravelMode) []entity.AreaMatch

	// Region reduces the catchment fragments to one logical region for
	// overlay display. Returns false when the catchment is empty or
	// degenerate.
	Region(catchment *geojson.FeatureCollection) (orb.MultiPolygon, bool)
}
