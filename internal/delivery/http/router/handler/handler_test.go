package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/td-lach-buckanen/commute-catchment/config"
	"github.com/td-lach-buckanen/commute-catchment/internal/delivery/http/validator"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"
	"github.com/td-lach-buckanen/commute-catchment/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSession is a hand-rolled CatchmentSession for handler tests.
type fakeSession struct {
	state   usecase.SessionState
	latest  *usecase.QueryResult
	updated []usecase.QueryInput
	closed  bool
}

func (s *fakeSession) Update(input usecase.QueryInput) {
	s.updated = append(s.updated, input)
	s.state = usecase.SessionDebouncing
}

func (s *fakeSession) Updates() <-chan usecase.QueryResult {
	ch := make(chan usecase.QueryResult)
	close(ch)

	return ch
}

func (s *fakeSession) Latest() (usecase.QueryResult, bool) {
	if s.latest == nil {
		return usecase.QueryResult{}, false
	}

	return *s.latest, true
}

func (s *fakeSession) State() usecase.SessionState {
	return s.state
}

func (s *fakeSession) Close() {
	s.closed = true
}

// fakeCatchmentUC is a hand-rolled CatchmentUsecase for handler tests.
type fakeCatchmentUC struct {
	queryResult *usecase.QueryResult
	queryErr    error
	lastInput   usecase.QueryInput

	sessionID uuid.UUID
	session   *fakeSession
}

func (f *fakeCatchmentUC) Query(_ context.Context, input usecase.QueryInput) (*usecase.QueryResult, error) {
	f.lastInput = input
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return f.queryResult, nil
}

func (f *fakeCatchmentUC) OpenSession() (uuid.UUID, usecase.CatchmentSession) {
	return f.sessionID, f.session
}

func (f *fakeCatchmentUC) Session(id uuid.UUID) (usecase.CatchmentSession, bool) {
	if f.session == nil || id != f.sessionID {
		return nil, false
	}

	return f.session, true
}

func (f *fakeCatchmentUC) CloseSession(id uuid.UUID) bool {
	if f.session == nil || id != f.sessionID {
		return false
	}

	f.session.Close()

	return true
}

// fakeQRService returns canned PNG bytes.
type fakeQRService struct {
	lastURL string
	err     error
}

func (f *fakeQRService) GenerateShareQR(shareURL string) ([]byte, error) {
	f.lastURL = shareURL
	if f.err != nil {
		return nil, f.err
	}

	return []byte("png-bytes"), nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()

	return e
}

func newCatchmentHandler(uc usecase.CatchmentUsecase, qr *fakeQRService) *CatchmentHandler {
	return NewCatchmentHandler(CatchmentHandlerParams{
		CatchmentUC: uc,
		QRCode:      qr,
		Config: &config.Config{
			ShareLink: &config.ShareLinkConfig{BaseURL: "https://catchment.example.com/q"},
		},
		Logger: newDiscardLogger(),
	})
}

func matchRequestBody() string {
	return `{
		"destination_lat": 44.6511,
		"destination_lng": -63.5827,
		"arrival_time": "2025-11-03T08:30:00-04:00",
		"travel_minutes": 30,
		"mode": "public_transport"
	}`
}

func doJSON(e *echo.Echo, method, target, body string, fn echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}

	_ = fn(c)

	return rec
}

func TestCatchmentHandler_Match(t *testing.T) {
	uc := &fakeCatchmentUC{
		queryResult: &usecase.QueryResult{
			Fingerprint: "fp",
			Region: orb.MultiPolygon{
				{{{-63.6, 44.6}, {-63.5, 44.6}, {-63.5, 44.7}, {-63.6, 44.7}, {-63.6, 44.6}}},
			},
			Matches: []entity.AreaMatch{{Name: "Downtown Halifax", Mode: "public_transport"}},
		},
	}
	h := newCatchmentHandler(uc, &fakeQRService{})

	rec := doJSON(newTestEcho(), http.MethodPost, "/api/catchment/match", matchRequestBody(), h.Match)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool          `json:"success"`
		Data    QueryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "fp", envelope.Data.Fingerprint)
	require.Len(t, envelope.Data.Matches, 1)
	assert.Equal(t, "Downtown Halifax", envelope.Data.Matches[0].Name)
	require.NotNil(t, envelope.Data.Region)
	assert.Equal(t, "MultiPolygon", envelope.Data.Region.Type)

	assert.Equal(t, entity.ModePublicTransport, uc.lastInput.Mode)
	assert.Equal(t, 30, uc.lastInput.TravelMinutes)
}

func TestCatchmentHandler_Match_InvalidMode(t *testing.T) {
	h := newCatchmentHandler(&fakeCatchmentUC{}, &fakeQRService{})
	body := strings.Replace(matchRequestBody(), "public_transport", "teleport", 1)

	rec := doJSON(newTestEcho(), http.MethodPost, "/api/catchment/match", body, h.Match)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TRAVEL_MODE")
}

func TestCatchmentHandler_Match_InvalidArrivalTime(t *testing.T) {
	h := newCatchmentHandler(&fakeCatchmentUC{}, &fakeQRService{})
	body := strings.Replace(matchRequestBody(), "2025-11-03T08:30:00-04:00", "next tuesday", 1)

	rec := doJSON(newTestEcho(), http.MethodPost, "/api/catchment/match", body, h.Match)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARRIVAL_TIME")
}

func TestCatchmentHandler_Match_LatitudeOutOfRange(t *testing.T) {
	h := newCatchmentHandler(&fakeCatchmentUC{}, &fakeQRService{})
	body := strings.Replace(matchRequestBody(), "44.6511", "144.6511", 1)

	rec := doJSON(newTestEcho(), http.MethodPost, "/api/catchment/match", body, h.Match)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestCatchmentHandler_Match_FetchFailure(t *testing.T) {
	uc := &fakeCatchmentUC{queryErr: errors.New("catchment fetch failed: upstream timeout")}
	h := newCatchmentHandler(uc, &fakeQRService{})

	rec := doJSON(newTestEcho(), http.MethodPost, "/api/catchment/match", matchRequestBody(), h.Match)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "CATCHMENT_FETCH_FAILED")
}

func TestCatchmentHandler_Share(t *testing.T) {
	qr := &fakeQRService{}
	h := newCatchmentHandler(&fakeCatchmentUC{}, qr)

	rec := doJSON(newTestEcho(), http.MethodGet,
		"/api/catchment/share?lat=44.6511&lng=-63.5827&minutes=30&mode=walking", "", h.Share)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Contains(t, qr.lastURL, "https://catchment.example.com/q?")
	assert.Contains(t, qr.lastURL, "lat=44.6511")
	assert.Contains(t, qr.lastURL, "mode=walking")
}

func TestCatchmentHandler_Share_MissingCoordinates(t *testing.T) {
	h := newCatchmentHandler(&fakeCatchmentUC{}, &fakeQRService{})

	rec := doJSON(newTestEcho(), http.MethodGet, "/api/catchment/share?minutes=30", "", h.Share)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_Lifecycle(t *testing.T) {
	id := uuid.New()
	uc := &fakeCatchmentUC{
		sessionID: id,
		session:   &fakeSession{state: usecase.SessionIdle},
	}
	h := NewSessionHandler(SessionHandlerParams{CatchmentUC: uc, Logger: newDiscardLogger()})
	e := newTestEcho()

	rec := doJSON(e, http.MethodPost, "/api/sessions", "", h.Create)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), id.String())

	rec = doJSON(e, http.MethodPut, "/api/sessions/"+id.String()+"/query", matchRequestBody(), h.UpdateQuery, "id", id.String())
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, uc.session.updated, 1)
	assert.Equal(t, entity.ModePublicTransport, uc.session.updated[0].Mode)

	uc.session.state = usecase.SessionSettledSuccess
	uc.session.latest = &usecase.QueryResult{
		Fingerprint: "fp",
		Matches:     []entity.AreaMatch{{Name: "Downtown Halifax", Mode: "public_transport"}},
	}

	rec = doJSON(e, http.MethodGet, "/api/sessions/"+id.String()+"/result", "", h.GetResult, "id", id.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "settled_success")
	assert.Contains(t, rec.Body.String(), "Downtown Halifax")

	rec = doJSON(e, http.MethodDelete, "/api/sessions/"+id.String(), "", h.Delete, "id", id.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, uc.session.closed)
}

func TestSessionHandler_SettledError(t *testing.T) {
	id := uuid.New()
	uc := &fakeCatchmentUC{
		sessionID: id,
		session: &fakeSession{
			state:  usecase.SessionSettledError,
			latest: &usecase.QueryResult{Err: errors.New("catchment fetch failed: upstream timeout")},
		},
	}
	h := NewSessionHandler(SessionHandlerParams{CatchmentUC: uc, Logger: newDiscardLogger()})

	rec := doJSON(newTestEcho(), http.MethodGet, "/api/sessions/"+id.String()+"/result", "", h.GetResult, "id", id.String())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "settled_error")
	assert.Contains(t, rec.Body.String(), "CATCHMENT_FETCH_FAILED")
}

func TestSessionHandler_UnknownSession(t *testing.T) {
	h := NewSessionHandler(SessionHandlerParams{CatchmentUC: &fakeCatchmentUC{}, Logger: newDiscardLogger()})
	id := uuid.New()

	rec := doJSON(newTestEcho(), http.MethodGet, "/api/sessions/"+id.String()+"/result", "", h.GetResult, "id", id.String())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "SESSION_NOT_FOUND")

	rec = doJSON(newTestEcho(), http.MethodDelete, "/api/sessions/"+id.String(), "", h.Delete, "id", id.String())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionHandler_InvalidID(t *testing.T) {
	h := NewSessionHandler(SessionHandlerParams{CatchmentUC: &fakeCatchmentUC{}, Logger: newDiscardLogger()})

	rec := doJSON(newTestEcho(), http.MethodGet, "/api/sessions/nope/result", "", h.GetResult, "id", "nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ID")
}
