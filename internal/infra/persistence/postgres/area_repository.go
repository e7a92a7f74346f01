// Package postgres contains the concrete persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/service"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/geometry"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/persistence/model"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// areaRepository implements service.AreaSource over a boundary table.
type areaRepository struct {
	db     *gorm.DB
	table  string
	logger *slog.Logger
}

// NewAreaRepository is the constructor for areaRepository. An empty table
// name falls back to the model's default.
func NewAreaRepository(db *gorm.DB, table string, logger *slog.Logger) service.AreaSource {
	if table == "" {
		table = model.AreaModel{}.TableName()
	}

	return &areaRepository{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// LoadAreas reads every boundary row and converts it into a candidate area.
// Rows whose geometry cannot be decoded or reduced to a polygonal region are
// skipped with a warning rather than failing the whole dataset.
func (repo *areaRepository) LoadAreas(ctx context.Context) ([]*entity.CandidateArea, error) {
	var rows []model.AreaModel
	if err := repo.db.WithContext(ctx).Table(repo.table).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load candidate areas")
	}

	areas := make([]*entity.CandidateArea, 0, len(rows))
	for i := range rows {
		area, err := repo.toDomain(&rows[i])
		if err != nil {
			repo.logger.WarnContext(ctx, "skipping unusable boundary row",
				slog.String("id", rows[i].ID),
				slog.String("error", err.Error()))

			continue
		}

		areas = append(areas, area)
	}

	repo.logger.InfoContext(ctx, "loaded candidate areas from postgres",
		slog.String("table", repo.table),
		slog.Int("rows", len(rows)),
		slog.Int("usable", len(areas)))

	return areas, nil
}

func (repo *areaRepository) toDomain(row *model.AreaModel) (*entity.CandidateArea, error) {
	geom, err := geojson.UnmarshalGeometry(row.Geometry)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode boundary geometry")
	}

	region, ok := geometry.Combine(geometry.CollectPolygons(geom.Geometry()))
	if !ok {
		return nil, errors.New("boundary geometry has no usable polygon")
	}

	props := geojson.Properties{}
	if len(row.Properties) > 0 {
		if err := json.Unmarshal(row.Properties, &props); err != nil {
			return nil, errors.Wrap(err, "failed to decode boundary properties")
		}
	}
	if row.Name != "" {
		props["name"] = row.Name
	}

	return &entity.CandidateArea{
		ID:         row.ID,
		Region:     region,
		Properties: props,
	}, nil
}
