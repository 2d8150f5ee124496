// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/phisnet/backend/internal/logger"
	"github.com/phisnet/backend/internal/monitoring"
	"github.com/phisnet/backend/internal/reports"
	"github.com/phisnet/backend/internal/storage"
	"github.com/phisnet/backend/internal/threats"
	"github.com/phisnet/backend/internal/upload"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewUnprocessableError creates a 422 error for well-formed requests that
// could not be acted on
func NewUnprocessableError(message string, details string) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "UNPROCESSABLE",
		Message: message,
		Details: details,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// fromDomainError maps package sentinel errors to API errors.
func fromDomainError(err error, resource, id string) *APIError {
	switch {
	case errors.Is(err, upload.ErrRecordNotFound), errors.Is(err, threats.ErrThreatNotFound),
		errors.Is(err, storage.ErrFileNotFound),
		errors.Is(err, monitoring.ErrComponentNotFound), errors.Is(err, monitoring.ErrAlertNotFound),
		errors.Is(err, reports.ErrReportNotFound), errors.Is(err, reports.ErrModalityNotFound):
		return NewNotFoundError(resource, id)
	case errors.Is(err, upload.ErrClosed):
		return NewServiceUnavailableError("server is shutting down")
	default:
		return NewInternalError("unexpected failure", err)
	}
}

// NewErrorHandler returns the Echo error handler. showDetails controls
// whether unexpected errors carry their message to the client.
// Usage: e.HTTPErrorHandler = api.NewErrorHandler(debug)
func NewErrorHandler(showDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		handleError(err, c, showDetails)
	}
}

func handleError(err error, c echo.Context, showDetails bool) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
		if showDetails {
			apiErr.Details = err.Error()
		}
	}

	if apiErr.Status >= http.StatusInternalServerError {
		log := logger.Component("api")
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Int("status", apiErr.Status).
			Msg("request failed")
	}

	if err := c.JSON(apiErr.Status, apiErr); err != nil {
		c.Logger().Error(err)
	}
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
