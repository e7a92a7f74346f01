package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/td-lach-buckanen/commute-catchment/config"
	"github.com/td-lach-buckanen/commute-catchment/internal/delivery"
	"github.com/td-lach-buckanen/commute-catchment/internal/delivery/http"
	"github.com/td-lach-buckanen/commute-catchment/internal/delivery/http/router/handler"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/constants"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/service"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/areas"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/isochrone"
	logs "github.com/td-lach-buckanen/commute-catchment/internal/infra/log"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/persistence/postgres"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/pubsub"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/qrcode"
	"github.com/td-lach-buckanen/commute-catchment/internal/usecase"
	"github.com/td-lach-buckanen/commute-catchment/internal/usecase/impl"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		newDatabase,
	)
}

// newDatabase creates a PostgreSQL connection only when the area dataset
// actually lives there; the blob provider needs no database at all.
func newDatabase(params postgres.Params) (*gorm.DB, error) {
	areasCfg := params.Config.Areas
	if areasCfg == nil || areasCfg.Provider != constants.AreasProviderPostgres {
		return nil, nil
	}
	if params.Config.Postgres == nil {
		return nil, fmt.Errorf("postgres configuration is required for the postgres areas provider")
	}

	return postgres.New(params)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			areas.NewAreaSource,
			pubsub.NewEventPublisher,
			isochrone.New,
			newQRCodeService,
		),
	)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.ShareLink == nil || cfg.ShareLink.QRSize <= 0 {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.ShareLink.QRSize, cfg.ShareLink.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			newMatchService,
			impl.NewCatchmentService,
		),
	)
}

// newMatchService loads the boundary dataset once at startup and builds the
// containment matcher over it.
func newMatchService(ctx context.Context, source service.AreaSource, logger *slog.Logger) (usecase.MatchUsecase, error) {
	candidates, err := source.LoadAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate areas: %w", err)
	}

	logger.Info("Candidate area dataset loaded", slog.Int("areas", len(candidates)))

	return impl.NewMatchService(candidates, logger), nil
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewCatchmentHandler,
			handler.NewSessionHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
