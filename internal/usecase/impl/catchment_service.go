package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/td-lach-buckanen/commute-catchment/config"
	deliveryctx "github.com/td-lach-buckanen/commute-catchment/internal/delivery/context"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/service"
	"github.com/td-lach-buckanen/commute-catchment/internal/infra/geometry"
	"github.com/td-lach-buckanen/commute-catchment/internal/usecase"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultDebounceWindow      = 300 * time.Millisecond
	defaultCacheTTL            = 10 * time.Minute
	defaultMinTravelMinutes    = 1
	defaultMaxTravelMinutes    = 240
	defaultCoordinatePrecision = 5
)

// ErrCatchmentUnavailable is returned when the travel-time provider could
// not supply a catchment for the query.
var ErrCatchmentUnavailable = errors.New("catchment fetch failed")

// CatchmentServiceParams holds dependencies for the catchment service,
// injected by Fx.
type CatchmentServiceParams struct {
	fx.In
	fx.Lifecycle

	Config    *config.Config
	Logger    *slog.Logger
	Provider  service.IsochroneProvider
	Matcher   usecase.MatchUsecase
	Publisher service.EventPublisher
}

type catchmentService struct {
	cfg       *config.CatchmentConfig
	logger    *slog.Logger
	provider  service.IsochroneProvider
	matcher   usecase.MatchUsecase
	publisher service.EventPublisher

	// cache is owned exclusively by this service; sessions share it and
	// it is written only on successful fetch completion.
	cache *fingerprintCache

	sessionsMu sync.Mutex
	sessions   map[uuid.UUID]*session
}

// NewCatchmentService creates the catchment query coordinator.
func NewCatchmentService(params CatchmentServiceParams) usecase.CatchmentUsecase {
	cfg := params.Config.Catchment
	if cfg == nil {
		cfg = &config.CatchmentConfig{}
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = defaultDebounceWindow
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.MinTravelMinutes <= 0 {
		cfg.MinTravelMinutes = defaultMinTravelMinutes
	}
	if cfg.MaxTravelMinutes <= 0 {
		cfg.MaxTravelMinutes = defaultMaxTravelMinutes
	}
	if cfg.CoordinatePrecision <= 0 {
		cfg.CoordinatePrecision = defaultCoordinatePrecision
	}

	svc := &catchmentService{
		cfg:       cfg,
		logger:    params.Logger,
		provider:  params.Provider,
		matcher:   params.Matcher,
		publisher: params.Publisher,
		cache:     newFingerprintCache(cfg.CacheTTL),
		sessions:  make(map[uuid.UUID]*session),
	}

	if params.Lifecycle != nil {
		params.Append(fx.Hook{
			OnStop: func(context.Context) error {
				svc.closeAllSessions()

				return nil
			},
		})
	}

	return svc
}

// Query resolves one catchment query synchronously.
func (s *catchmentService) Query(ctx context.Context, input usecase.QueryInput) (*usecase.QueryResult, error) {
	clamped := s.clampMinutes(input.TravelMinutes)
	fingerprint := s.fingerprint(input, clamped)

	catchment, fromCache := s.cache.Get(fingerprint)
	if !fromCache {
		fetched, err := s.provider.FetchCatchment(ctx, s.travelQuery(input, clamped))
		if err != nil {
			// Failed fetches are never cached and never block a retry.
			return nil, errors.Wrap(ErrCatchmentUnavailable, err.Error())
		}

		s.cache.Put(fingerprint, fetched)
		catchment = fetched
	}

	result := s.buildResult(fingerprint, catchment, input, fromCache)
	s.publishResult(ctx, input, clamped, result)

	return result, nil
}

// OpenSession creates a new interactive debounced session.
func (s *catchmentService) OpenSession() (uuid.UUID, usecase.CatchmentSession) {
	id := uuid.New()
	sess := newSession(s)

	s.sessionsMu.Lock()
	s.sessions[id] = sess
	s.sessionsMu.Unlock()

	return id, sess
}

// Session returns a previously opened session.
func (s *catchmentService) Session(id uuid.UUID) (usecase.CatchmentSession, bool) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	sess, ok := s.sessions[id]

	return sess, ok
}

// CloseSession tears down a session and removes it from the registry.
func (s *catchmentService) CloseSession(id uuid.UUID) bool {
	s.sessionsMu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.sessionsMu.Unlock()

	if ok {
		sess.Close()
	}

	return ok
}

func (s *catchmentService) closeAllSessions() {
	s.sessionsMu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		sessions = append(sessions, sess)
		delete(s.sessions, id)
	}
	s.sessionsMu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

// clampMinutes bounds the duration budget to guard against nonsensical or
// abusive inputs before anything is sent downstream.
func (s *catchmentService) clampMinutes(minutes int) int {
	if minutes < s.cfg.MinTravelMinutes {
		return s.cfg.MinTravelMinutes
	}
	if minutes > s.cfg.MaxTravelMinutes {
		return s.cfg.MaxTravelMinutes
	}

	return minutes
}

// fingerprint derives the normalized cache key for a query. Destination
// coordinates are rounded to a fixed precision so that logically
// identical queries fingerprint identically even with sub-precision
// noise from successive clicks near the same pixel.
func (s *catchmentService) fingerprint(input usecase.QueryInput, clampedMinutes int) string {
	precision := s.cfg.CoordinatePrecision

	return fmt.Sprintf("%.*f,%.*f|%s|%d|%s",
		precision, input.DestinationLng,
		precision, input.DestinationLat,
		input.ArrivalTime.UTC().Format(time.RFC3339),
		clampedMinutes,
		input.Mode,
	)
}

func (s *catchmentService) travelQuery(input usecase.QueryInput, clampedMinutes int) *entity.TravelQuery {
	return &entity.TravelQuery{
		Destination:   orb.Point{input.DestinationLng, input.DestinationLat},
		ArrivalTime:   input.ArrivalTime,
		TravelMinutes: clampedMinutes,
		Mode:          input.Mode,
	}
}

func (s *catchmentService) buildResult(fingerprint string, catchment *geojson.FeatureCollection, input usecase.QueryInput, fromCache bool) *usecase.QueryResult {
	region, _ := s.matcher.Region(catchment)

	return &usecase.QueryResult{
		Fingerprint: fingerprint,
		FromCache:   fromCache,
		Region:      region,
		Matches:     s.matcher.Match(catchment, input.Mode),
	}
}

// publishResult forwards a settled result to the rendering boundary.
// Publishing is best-effort: a publisher failure never fails the query.
func (s *catchmentService) publishResult(ctx context.Context, input usecase.QueryInput, clampedMinutes int, result *usecase.QueryResult) {
	if s.publisher == nil || result == nil {
		return
	}

	event := &service.CatchmentEvent{
		RequestID:      deliveryctx.GetRequestIDFromContext(ctx),
		Fingerprint:    result.Fingerprint,
		DestinationLat: input.DestinationLat,
		DestinationLng: input.DestinationLng,
		TravelMinutes:  clampedMinutes,
		Mode:           input.Mode.String(),
		FromCache:      result.FromCache,
	}
	for _, match := range result.Matches {
		event.MatchedAreas = append(event.MatchedAreas, match.Name)
	}
	if bound, ok := geometry.Bounds(result.Region); ok {
		event.RegionBBox = [4]float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]}
	}

	if err := s.publisher.PublishCatchmentEvent(ctx, event); err != nil {
		logger := deliveryctx.GetLoggerOrDefault(ctx, s.logger)
		logger.Warn("Failed to publish catchment event",
			slog.String("fingerprint", result.Fingerprint),
			slog.Any("error", err),
		)
	}
}
