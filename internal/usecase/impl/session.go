package impl

import (
	"context"
	"sync"
	"time"

	"github.com/td-lach-buckanen/commute-catchment/internal/usecase"

	"github.com/pkg/errors"
)

// session is the per-client request coordinator. It owns the debounce
// timer and the single in-flight-request slot; a new debounce-triggered
// fetch always cancels the previous one before starting, which is what
// enforces last-request-wins ordering.
type session struct {
	svc *catchmentService

	mu             sync.Mutex
	state          usecase.SessionState
	pending        usecase.QueryInput
	timer          *time.Timer
	cancelInflight context.CancelFunc
	latest         *usecase.QueryResult
	updates        chan usecase.QueryResult
	closed         bool
}

func newSession(svc *catchmentService) *session {
	return &session{
		svc:     svc,
		state:   usecase.SessionIdle,
		updates: make(chan usecase.QueryResult, 1),
	}
}

// Update replaces the pending input and restarts the debounce window so
// that only the final settled value of a burst triggers network work.
func (s *session) Update(input usecase.QueryInput) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.pending = input
	s.state = usecase.SessionDebouncing

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.svc.cfg.DebounceWindow, s.settle)
}

// settle runs when the debounce window elapses: it cancels any fetch from
// a previous cycle, consults the cache, and only on a miss issues a new
// outbound call.
func (s *session) settle() {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return
	}

	input := s.pending

	// Cancel the superseded call before anything else so its work is
	// abandoned at the transport, not merely ignored on receipt.
	if s.cancelInflight != nil {
		s.cancelInflight()
		s.cancelInflight = nil
	}

	clamped := s.svc.clampMinutes(input.TravelMinutes)
	fingerprint := s.svc.fingerprint(input, clamped)

	if catchment, ok := s.svc.cache.Get(fingerprint); ok {
		s.mu.Unlock()

		result := s.svc.buildResult(fingerprint, catchment, input, true)
		s.deliver(nil, *result, usecase.SessionSettledSuccess)
		s.svc.publishResult(context.Background(), input, clamped, result)

		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelInflight = cancel
	s.state = usecase.SessionFetching
	s.mu.Unlock()

	go s.fetch(ctx, input, clamped, fingerprint)
}

func (s *session) fetch(ctx context.Context, input usecase.QueryInput, clampedMinutes int, fingerprint string) {
	catchment, err := s.svc.provider.FetchCatchment(ctx, s.svc.travelQuery(input, clampedMinutes))

	if ctx.Err() != nil {
		// Superseded by a newer request: silently dropped, no error surfaced.
		return
	}

	if err != nil {
		s.deliver(ctx, usecase.QueryResult{
			Fingerprint: fingerprint,
			Err:         errors.Wrap(ErrCatchmentUnavailable, err.Error()),
		}, usecase.SessionSettledError)

		return
	}

	s.svc.cache.Put(fingerprint, catchment)

	result := s.svc.buildResult(fingerprint, catchment, input, false)
	s.deliver(ctx, *result, usecase.SessionSettledSuccess)
	s.svc.publishResult(context.Background(), input, clampedMinutes, result)
}

// deliver records a settled result and makes it available on the updates
// channel, replacing any unread stale result. A nil ctx means the result
// cannot have been superseded (cache hits settle synchronously).
func (s *session) deliver(ctx context.Context, result usecase.QueryResult, state usecase.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if ctx != nil && ctx.Err() != nil {
		// A newer settle cancelled this cycle while the result was on its
		// way; last request wins.
		return
	}

	s.state = state
	s.latest = &result

	select {
	case <-s.updates:
	default:
	}
	s.updates <- result
}

// Updates delivers settled results, most recent unread only.
func (s *session) Updates() <-chan usecase.QueryResult {
	return s.updates
}

// Latest returns the most recently settled result, if any.
func (s *session) Latest() (usecase.QueryResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return usecase.QueryResult{}, false
	}

	return *s.latest, true
}

// State reports the current coordinator state.
func (s *session) State() usecase.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Close stops the debounce timer, cancels any in-flight fetch and closes
// the updates channel. Safe to call more than once.
func (s *session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancelInflight != nil {
		s.cancelInflight()
		s.cancelInflight = nil
	}

	close(s.updates)
}
