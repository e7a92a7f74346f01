package usecase

import (
	"context"
	"time"

	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// QueryInput is the complete fingerprint-defining input set for one
// catchment query, as supplied by the UI boundary.
type QueryInput struct {
	DestinationLat float64           `json:"destination_lat"`
	DestinationLng float64           `json:"destination_lng"`
	ArrivalTime    time.Time         `json:"arrival_time"`
	TravelMinutes  int               `json:"travel_minutes"`
	Mode           entity.TravelMode `json:"mode"`
}

// QueryResult is one settled catchment query: the reduced region for
// overlay display and the ordered match list. Err is set instead of the
// geometry fields when the fetch failed.
type QueryResult struct {
	Fingerprint string
	FromCache   bool
	Region      orb.MultiPolygon
	Matches     []entity.AreaMatch
	Err         error
}

// SessionState names the coordinator states of an interactive session.
type SessionState string

const (
	SessionIdle           SessionState = "idle"
	SessionDebouncing     SessionState = "debouncing"
	SessionFetching       SessionState = "fetching"
	SessionSettledSuccess SessionState = "settled_success"
	SessionSettledError   SessionState = "settled_error"
)

// CatchmentSession coordinates rapidly-changing inputs for one client:
// it debounces updates, keeps at most one fetch in flight (cancelling
// superseded ones) and applies results in last-request-wins order.
type CatchmentSession interface {
	// Update replaces the pending input and restarts the debounce window.
	// Safe to call from any goroutine; never blocks.
	Update(input QueryInput)

	// Updates delivers settled results. The channel holds only the most
	// recent unread result; stale results are replaced, never queued.
	Updates() <-chan QueryResult

	// Latest returns the most recently settled result, if any.
	Latest() (QueryResult, bool)

	// State reports the current coordinator state.
	State() SessionState

	// Close stops the debounce timer, cancels any in-flight fetch and
	// closes the updates channel. Safe to call more than once.
	Close()
}

// CatchmentUsecase is the entry point for catchment queries: a one-shot
// synchronous path and a session registry for the interactive debounced
// flow. The usecase exclusively owns the fingerprint cache; sessions
// share it.
type CatchmentUsecase interface {
	// Query resolves one catchment query synchronously: clamp, cache
	// lookup, fetch on miss, then containment matching.
	Query(ctx context.Context, input QueryInput) (*QueryResult, error)

	// OpenSession creates a new interactive session.
	OpenSession() (uuid.UUID, CatchmentSession)

	// Session returns a previously opened session.
	Session(id uuid.UUID) (CatchmentSession, bool)

	// CloseSession tears down a session and removes it from the registry.
	CloseSession(id uuid.UUID) bool
}
