package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/td-lach-buckanen/commute-catchment/config"
	"github.com/td-lach-buckanen/commute-catchment/internal/delivery/http/response"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"
	domainerrors "github.com/td-lach-buckanen/commute-catchment/internal/domain/errors"
	"github.com/td-lach-buckanen/commute-catchment/internal/domain/service"
	"github.com/td-lach-buckanen/commute-catchment/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// CatchmentHandlerParams holds dependencies for CatchmentHandler, injected by Fx.
type CatchmentHandlerParams struct {
	fx.In

	CatchmentUC usecase.CatchmentUsecase
	QRCode      service.QRCodeService
	Config      *config.Config
	Logger      *slog.Logger
}

// CatchmentHandler holds dependencies for catchment query handlers
type CatchmentHandler struct {
	catchmentUC usecase.CatchmentUsecase
	qrcode      service.QRCodeService
	cfg         *config.Config
	logger      *slog.Logger
}

// NewCatchmentHandler is the constructor for CatchmentHandler
func NewCatchmentHandler(params CatchmentHandlerParams) *CatchmentHandler {
	return &CatchmentHandler{
		catchmentUC: params.CatchmentUC,
		qrcode:      params.QRCode,
		cfg:         params.Config,
		logger:      params.Logger,
	}
}

// QueryRequest represents the request body for a catchment query
type QueryRequest struct {
	DestinationLat float64 `json:"destination_lat" validate:"min=-90,max=90"`
	DestinationLng float64 `json:"destination_lng" validate:"min=-180,max=180"`
	ArrivalTime    string  `json:"arrival_time" validate:"required"`
	TravelMinutes  int     `json:"travel_minutes"`
	Mode           string  `json:"mode" validate:"required"`
}

// QueryResponse represents one settled catchment query
type QueryResponse struct {
	Fingerprint string             `json:"fingerprint"`
	FromCache   bool               `json:"from_cache"`
	Region      *geojson.Geometry  `json:"region,omitempty"`
	Matches     []entity.AreaMatch `json:"matches"`
}

// Match handles a synchronous one-shot catchment query
func (h *CatchmentHandler) Match(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid catchment query input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	input, err := req.toInput()
	if err != nil {
		return h.handleAppError(c, err)
	}

	result, err := h.catchmentUC.Query(c.Request().Context(), input)
	if err != nil {
		return h.handleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toQueryResponse(*result), "Catchment query resolved")
}

// Share handles generating a QR code PNG for a query permalink
func (h *CatchmentHandler) Share(c echo.Context) error {
	baseURL := ""
	if h.cfg.ShareLink != nil {
		baseURL = h.cfg.ShareLink.BaseURL
	}
	if baseURL == "" {
		return response.NotFound(c, "SHARE_DISABLED", "Share links are not configured")
	}

	values := url.Values{}
	for _, key := range []string{"lat", "lng", "arrival", "minutes", "mode"} {
		if v := c.QueryParam(key); v != "" {
			values.Set(key, v)
		}
	}
	if values.Get("lat") == "" || values.Get("lng") == "" {
		return response.BadRequest(c, "VALIDATION_ERROR", "lat and lng query parameters are required")
	}

	png, err := h.qrcode.GenerateShareQR(baseURL + "?" + values.Encode())
	if err != nil {
		h.logger.Error("Failed to generate share QR code", slog.Any("error", err))

		return response.InternalServerError(c, "QR_GENERATION_FAILED", "Failed to generate QR code")
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// toInput converts the wire request into a usecase query input, validating
// the fields the struct tags cannot express.
func (req *QueryRequest) toInput() (usecase.QueryInput, error) {
	arrival, err := time.Parse(time.RFC3339, req.ArrivalTime)
	if err != nil {
		return usecase.QueryInput{}, domainerrors.ErrInvalidArrivalTime.WithDetails(req.ArrivalTime)
	}

	mode := entity.TravelMode(req.Mode)
	if !mode.IsValid() {
		return usecase.QueryInput{}, domainerrors.ErrInvalidTravelMode.WithDetails(req.Mode)
	}

	return usecase.QueryInput{
		DestinationLat: req.DestinationLat,
		DestinationLng: req.DestinationLng,
		ArrivalTime:    arrival,
		TravelMinutes:  req.TravelMinutes,
		Mode:           mode,
	}, nil
}

func toQueryResponse(result usecase.QueryResult) QueryResponse {
	resp := QueryResponse{
		Fingerprint: result.Fingerprint,
		FromCache:   result.FromCache,
		Matches:     result.Matches,
	}
	if resp.Matches == nil {
		resp.Matches = []entity.AreaMatch{}
	}
	if len(result.Region) > 0 {
		resp.Region = geojson.NewGeometry(result.Region)
	}

	return resp
}

// handleAppError handles application errors
func (h *CatchmentHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	// The only non-AppError failure of a query is an upstream fetch failure.
	fetchErr := domainerrors.ErrCatchmentFetchFailed

	return response.Error(c, fetchErr.HTTPCode(), fetchErr.ErrorCode(), fetchErr.Message(), err.Error())
}
