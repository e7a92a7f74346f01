// Package areas loads the candidate boundary dataset the matcher runs against.
package areas

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/service"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/geometry"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"gocloud.dev/blob"

	// Registers the file:// bucket scheme for local datasets.
	_ "gocloud.dev/blob/fileblob"
)

// blobSource reads a GeoJSON feature collection from a gocloud bucket.
type blobSource struct {
	bucketURL string
	key       string
	logger    *slog.Logger
}

// NewBlobSource creates an AreaSource backed by a bucket object.
func NewBlobSource(bucketURL, key string, logger *slog.Logger) service.AreaSource {
	return &blobSource{
		bucketURL: bucketURL,
		key:       key,
		logger:    logger,
	}
}

// LoadAreas fetches and decodes the boundary dataset. Features without a
// usable polygonal geometry are skipped with a warning so one bad record
// cannot take the whole dataset down.
func (s *blobSource) LoadAreas(ctx context.Context) ([]*entity.CandidateArea, error) {
	bucket, err := blob.OpenBucket(ctx, s.bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", s.bucketURL)
	}
	defer bucket.Close()

	raw, err := bucket.ReadAll(ctx, s.key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read boundary dataset %s", s.key)
	}

	collection, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode boundary dataset")
	}

	areas := FromFeatureCollection(ctx, collection, s.logger)

	s.logger.InfoContext(ctx, "loaded candidate areas from blob",
		slog.String("bucket", s.bucketURL),
		slog.String("key", s.key),
		slog.Int("features", len(collection.Features)),
		slog.Int("usable", len(areas)))

	return areas, nil
}

// FromFeatureCollection converts dataset features into candidate areas,
// reducing each feature's geometry to a single polygonal region.
func FromFeatureCollection(ctx context.Context, collection *geojson.FeatureCollection, logger *slog.Logger) []*entity.CandidateArea {
	areas := make([]*entity.CandidateArea, 0, len(collection.Features))
	for i, feature := range collection.Features {
		if feature == nil {
			continue
		}

		region, ok := geometry.Combine(geometry.CollectPolygons(feature.Geometry))
		if !ok {
			logger.WarnContext(ctx, "skipping feature without usable polygon",
				slog.Int("index", i))

			continue
		}

		areas = append(areas, &entity.CandidateArea{
			ID:         featureID(feature, i),
			Region:     region,
			Properties: feature.Properties,
		})
	}

	return areas
}

func featureID(feature *geojson.Feature, index int) string {
	switch id := feature.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%.0f", id)
	case int:
		return fmt.Sprintf("%d", id)
	}

	return fmt.Sprintf("feature-%d", index)
}
