package service

import (
	"context"
)

// CatchmentEvent represents one settled catchment query published to the
// rendering boundary for overlay display and listing.
type CatchmentEvent struct {
	RequestID      string   `json:"request_id,omitempty"` // For distributed tracing
	Fingerprint    string   `json:"fingerprint"`
	DestinationLat float64  `json:"destination_lat"`
	DestinationLng float64  `json:"destination_lng"`
	TravelMinutes  int      `json:"travel_minutes"`
	Mode           string   `json:"mode"`
	MatchedAreas   []string `json:"matched_areas"`
	// RegionBBox is (minLng, minLat, maxLng, maxLat) of the reduced region.
	RegionBBox [4]float64 `json:"region_bbox"`
	FromCache  bool       `json:"from_cache"`
}

// EventPublisher defines the interface for publishing settled results to a
// downstream consumer.
type EventPublisher interface {
	// PublishCatchmentEvent publishes one settled catchment result
	PublishCatchmentEvent(ctx context.Context, event *CatchmentEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
