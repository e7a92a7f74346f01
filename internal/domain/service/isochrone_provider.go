package service

import (
	"context"

	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"

	"github.com/paulmach/orb/geojson"
)

// IsochroneProvider is the outbound boundary to a travel-time API. The
// implementation owns authentication, serialization and response-shape
// normalization into a GeoJSON feature collection.
type IsochroneProvider interface {
	// FetchCatchment returns the raw catchment polygon(s) reachable for the
	// query. Cancellation of ctx must abort the underlying transport call.
	FetchCatchment(ctx context.Context, query *entity.TravelQuery) (*geojson.FeatureCollection, error)
}
