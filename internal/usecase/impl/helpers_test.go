package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/td-lach-buckanen/commute-catchment/config"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Catchment = &config.CatchmentConfig{
		DebounceWindow:      20 * time.Millisecond,
		CacheTTL:            time.Minute,
		MinTravelMinutes:    1,
		MaxTravelMinutes:    240,
		CoordinatePrecision: 5,
	}

	return cfg
}

// squarePolygon returns a closed ring around (lng, lat) with the given
// half-extent in degrees.
func squarePolygon(lng, lat, half float64) orb.Polygon {
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

func catchmentAround(lng, lat, half float64) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(squarePolygon(lng, lat, half)))

	return fc
}

func namedArea(id, name string, lng, lat, half float64) *entity.CandidateArea {
	properties := geojson.Properties{}
	if name != "" {
		properties["name"] = name
	}

	return &entity.CandidateArea{
		ID:         id,
		Region:     orb.MultiPolygon{squarePolygon(lng, lat, half)},
		Properties: properties,
	}
}

// fakeProvider is an in-memory IsochroneProvider. When block is set, the
// call waits for a release or context cancellation, which lets tests
// exercise the in-flight cancellation path.
type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	response *geojson.FeatureCollection
	err      error
	block    chan struct{}
}

func (f *fakeProvider) FetchCatchment(ctx context.Context, _ *entity.TravelQuery) (*geojson.FeatureCollection, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-block:
		}
	}

	if f.err != nil {
		return nil, f.err
	}

	return f.response, nil
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*service.CatchmentEvent
}

func (f *fakePublisher) PublishCatchmentEvent(_ context.Context, event *service.CatchmentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)

	return nil
}

func (f *fakePublisher) Close() error {
	return nil
}

func (f *fakePublisher) Events() []*service.CatchmentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*service.CatchmentEvent(nil), f.events...)
}

func newTestService(cfg *config.Config, provider service.IsochroneProvider, areas []*entity.CandidateArea) (*catchmentService, *fakePublisher) {
	publisher := &fakePublisher{}
	matcher := NewMatchService(areas, newDiscardLogger())

	svc := NewCatchmentService(CatchmentServiceParams{
		Config:    cfg,
		Logger:    newDiscardLogger(),
		Provider:  provider,
		Matcher:   matcher,
		Publisher: publisher,
	})

	return svc.(*catchmentService), publisher
}
