package areas

import (
	"log/slog"

	"github.com/td-lach-buckanen/commute-catchment/config"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/constants"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/service"
	infraPostgres "github.com/td-lach-buckanen/commute-catchment/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Params holds dependencies for the AreaSource, injected by Fx.
// DB is optional: it only exists when a postgres connection is configured.
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB `optional:"true"`
}

// NewAreaSource creates an AreaSource based on configuration.
func NewAreaSource(params Params) (service.AreaSource, error) {
	cfg := params.Config.Areas
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		return nil, errors.New("areas provider is not configured")
	}

	switch cfg.Provider {
	case constants.AreasProviderBlob:
		if cfg.BucketURL == "" || cfg.Key == "" {
			return nil, errors.New("bucket URL and key are required for blob provider")
		}
		logger.Info("Using blob area source",
			slog.String("bucket", cfg.BucketURL),
			slog.String("key", cfg.Key),
		)

		return NewBlobSource(cfg.BucketURL, cfg.Key, logger), nil

	case constants.AreasProviderPostgres:
		if params.DB == nil {
			return nil, errors.New("postgres connection is required for postgres provider")
		}
		logger.Info("Using postgres area source",
			slog.String("table", cfg.Table),
		)

		return infraPostgres.NewAreaRepository(params.DB, cfg.Table, logger), nil

	default:
		return nil, errors.Errorf("unknown areas provider: %s", cfg.Provider)
	}
}

// Module provides the area source FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewAreaSource),
)
