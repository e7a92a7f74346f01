package isochrone

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/td-lach-buckanen/commute-catchment/config"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/service"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	timeMapPath    = "/v4/time-map"
	defaultTimeout = 15 * time.Second
)

// Sentinel errors for provider configuration and responses.
var (
	ErrMissingCredentials = errors.New("isochrone provider requires both appId and apiKey")
	ErrMissingBaseURL     = errors.New("isochrone provider requires a base URL")
	ErrEmptyCatchment     = errors.New("isochrone provider returned no features")
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Params defines the parameters required for the travel-time provider
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// travelTimeProvider fetches reachable-area polygons from a TravelTime-style
// time-map API. The response is requested in GeoJSON form so no intermediate
// shell/hole representation needs translating.
type travelTimeProvider struct {
	client  HTTPClient
	baseURL string
	appID   string
	apiKey  string
	logger  *slog.Logger
}

// arrivalSearch is the request body of a single arrival time-map search:
// "which points can reach coords by arrival_time within travel_time seconds".
type arrivalSearch struct {
	ID          string      `json:"id"`
	Coords      coordinates `json:"coords"`
	ArrivalTime string      `json:"arrival_time"`
	TravelTime  int         `json:"travel_time"`
	Transport   transport   `json:"transportation"`
}

type coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type transport struct {
	Type string `json:"type"`
}

type timeMapRequest struct {
	ArrivalSearches []arrivalSearch `json:"arrival_searches"`
}

// New creates the travel-time provider. Missing credentials are a
// configuration error and abort startup rather than failing per request.
func New(params Params) (service.IsochroneProvider, error) {
	cfg := params.Config.Isochrone
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.WithStack(ErrMissingBaseURL)
	}
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, errors.WithStack(ErrMissingCredentials)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &travelTimeProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		appID:   cfg.AppID,
		apiKey:  cfg.APIKey,
		logger:  params.Logger,
	}, nil
}

// NewWithClient creates a provider with a custom HTTP client, useful for tests.
func NewWithClient(client HTTPClient, baseURL, appID, apiKey string, logger *slog.Logger) service.IsochroneProvider {
	return &travelTimeProvider{
		client:  client,
		baseURL: baseURL,
		appID:   appID,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// FetchCatchment requests the reachable area for the given query and decodes
// it as a GeoJSON feature collection.
func (p *travelTimeProvider) FetchCatchment(ctx context.Context, query *entity.TravelQuery) (*geojson.FeatureCollection, error) {
	body := timeMapRequest{
		ArrivalSearches: []arrivalSearch{{
			ID: "catchment",
			Coords: coordinates{
				Lat: query.Destination.Lat(),
				Lng: query.Destination.Lon(),
			},
			ArrivalTime: query.ArrivalTime.Format(time.RFC3339),
			TravelTime:  query.TravelSeconds(),
			Transport:   transport{Type: query.Mode.String()},
		}},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode time-map request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+timeMapPath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create time-map request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/geo+json")
	req.Header.Set("X-Application-Id", p.appID)
	req.Header.Set("X-Api-Key", p.apiKey)

	p.logger.DebugContext(ctx, "fetching catchment",
		slog.Float64("lat", query.Destination.Lat()),
		slog.Float64("lng", query.Destination.Lon()),
		slog.Int("travelSeconds", query.TravelSeconds()),
		slog.String("mode", query.Mode.String()))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute time-map request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read time-map response")
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.ErrorContext(ctx, "time-map request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)))

		return nil, errors.Errorf("time-map API returned status %d", resp.StatusCode)
	}

	collection, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode time-map response")
	}

	if len(collection.Features) == 0 {
		return nil, errors.WithStack(ErrEmptyCatchment)
	}

	return collection, nil
}
