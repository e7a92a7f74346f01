package errors

import (
	"net/http"

	"github.com/td-lach-buckanen/commute-catchment/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Query input errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed",
		"",
	)

	ErrInvalidTravelMode = NewBaseError(
		http.StatusBadRequest,
		"INVALID_TRAVEL_MODE",
		"Unknown travel mode",
		"",
	)

	ErrInvalidArrivalTime = NewBaseError(
		http.StatusBadRequest,
		"INVALID_ARRIVAL_TIME",
		"Arrival time must be ISO-8601 with an explicit offset",
		"",
	)

	// Travel-time provider errors
	ErrProviderNotConfigured = NewBaseError(
		http.StatusInternalServerError,
		"PROVIDER_NOT_CONFIGURED",
		"Travel-time provider credentials are missing",
		"",
	)

	ErrCatchmentFetchFailed = NewBaseError(
		http.StatusBadGateway,
		"CATCHMENT_FETCH_FAILED",
		"Failed to fetch the catchment polygon",
		"",
	)

	// Session errors
	ErrSessionNotFound = NewBaseError(
		http.StatusNotFound,
		"SESSION_NOT_FOUND",
		"Unknown or expired catchment session",
		"",
	)

	// Area dataset errors
	ErrAreaDatasetUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"AREA_DATASET_UNAVAILABLE",
		"Candidate area dataset could not be loaded",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found",
		"",
	)
)
