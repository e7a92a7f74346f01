package handler

import (
	"log/slog"
	"net/http"

	"github.com/td-lach-buckanen/commute-catchment/internal/delivery/http/response"
	domainerrors "github.com/td-lach-buckanen/commute-catchment/internal/domain/errors"
	"github.com/td-lach-buckanen/commute-catchment/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// SessionHandlerParams holds dependencies for SessionHandler, injected by Fx.
type SessionHandlerParams struct {
	fx.In

	CatchmentUC usecase.CatchmentUsecase
	Logger      *slog.Logger
}

// SessionHandler exposes the interactive debounced query flow over HTTP:
// a session is opened once, fed query updates, and polled for the latest
// settled result.
type SessionHandler struct {
	catchmentUC usecase.CatchmentUsecase
	logger      *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler
func NewSessionHandler(params SessionHandlerParams) *SessionHandler {
	return &SessionHandler{
		catchmentUC: params.CatchmentUC,
		logger:      params.Logger,
	}
}

// SessionResponse describes an interactive session
type SessionResponse struct {
	SessionID string               `json:"session_id"`
	State     usecase.SessionState `json:"state"`
	Result    *QueryResponse       `json:"result,omitempty"`
	Error     *response.ErrorInfo  `json:"error,omitempty"`
}

// Create opens a new interactive session
func (h *SessionHandler) Create(c echo.Context) error {
	id, sess := h.catchmentUC.OpenSession()

	return response.Success(c, http.StatusCreated, SessionResponse{
		SessionID: id.String(),
		State:     sess.State(),
	}, "Session created")
}

// UpdateQuery replaces the session's pending query input
func (h *SessionHandler) UpdateQuery(c echo.Context) error {
	sess, err := h.getSession(c)
	if err != nil {
		return err
	}

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

	sess.Update(input)

	return response.Success(c, http.StatusAccepted, SessionResponse{
		SessionID: c.Param("id"),
		State:     sess.State(),
	}, "Query accepted")
}

// GetResult reports the session state and its latest settled result, if any
func (h *SessionHandler) GetResult(c echo.Context) error {
	sess, err := h.getSession(c)
	if err != nil {
		return err
	}

	resp := SessionResponse{
		SessionID: c.Param("id"),
		State:     sess.State(),
	}

	if result, ok := sess.Latest(); ok {
		if result.Err != nil {
			fetchErr := domainerrors.ErrCatchmentFetchFailed
			resp.Error = &response.ErrorInfo{
				Code:    fetchErr.ErrorCode(),
				Details: result.Err.Error(),
			}
		} else {
			converted := toQueryResponse(result)
			resp.Result = &converted
		}
	}

	return response.Success(c, http.StatusOK, resp, "Session state retrieved")
}

// Delete tears down a session
func (h *SessionHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid session ID")
	}

	if !h.catchmentUC.CloseSession(id) {
		notFound := domainerrors.ErrSessionNotFound

		return response.Error(c, notFound.HTTPCode(), notFound.ErrorCode(), notFound.Message(), id.String())
	}

	return response.Success(c, http.StatusOK, map[string]string{"session_id": id.String()}, "Session closed")
}

// getSession resolves the session from the path parameter
func (h *SessionHandler) getSession(c echo.Context) (usecase.CatchmentSession, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, response.BadRequest(c, "INVALID_ID", "Invalid session ID")
	}

	sess, ok := h.catchmentUC.Session(id)
	if !ok {
		notFound := domainerrors.ErrSessionNotFound

		return nil, response.Error(c, notFound.HTTPCode(), notFound.ErrorCode(), notFound.Message(), id.String())
	}

	return sess, nil
}

// handleAppError handles application errors
func (h *SessionHandler) handleAppError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())
	}

	return response.InternalServerError(c, "INTERNAL_ERROR", err.Error())
}
