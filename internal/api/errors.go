// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/labstack/echo/v4"
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

// NewForbiddenError creates a 403 Forbidden error
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Status:  http.StatusForbidden,
		Code:    "FORBIDDEN",
		Message: message,
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

// NewSummarizerError creates a 502 error for a failed summarizer call
func NewSummarizerError(cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadGateway,
		Code:    "SUMMARIZER_ERROR",
		Message: "summarization failed",
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewIngestError maps an ingestion failure to its HTTP status and code.
// The message is the failure's "Error <stage>: <cause>" text.
func NewIngestError(ierr *models.IngestError) *APIError {
	failure := ierr.Failure()
	apiErr := &APIError{Message: failure.Message}
	switch failure.Kind {
	case models.ErrorKindUnsupportedFormat:
		apiErr.Status, apiErr.Code = http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"
	case models.ErrorKindMalformedInput:
		apiErr.Status, apiErr.Code = http.StatusUnprocessableEntity, "MALFORMED_INPUT"
	case models.ErrorKindDecodeError:
		apiErr.Status, apiErr.Code = http.StatusUnprocessableEntity, "DECODE_ERROR"
	case models.ErrorKindIOFailure:
		if errors.Is(ierr, models.ErrTooLarge) {
			apiErr.Status, apiErr.Code = http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"
			break
		}
		fallthrough
	default:
		apiErr.Status, apiErr.Code = http.StatusInternalServerError, "IO_FAILURE"
	}
	return apiErr
}

// NewErrorHandler returns an Echo HTTPErrorHandler rendering every error as
// an APIError. Server-side failures are logged; details of unknown errors
// are only exposed when showDetails is set.
// Usage: e.HTTPErrorHandler = api.NewErrorHandler(logger, false)
func NewErrorHandler(logger *slog.Logger, showDetails bool) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			apiErr  *APIError
			ingErr  *models.IngestError
			httpErr *echo.HTTPError
		)

		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &ingErr):
			apiErr = NewIngestError(ingErr)
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    "HTTP_ERROR",
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
			if httpErr.Code == http.StatusRequestEntityTooLarge {
				apiErr.Code = "FILE_TOO_LARGE"
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
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"code", apiErr.Code,
				"error", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(apiErr.Status)
			return
		}
		if jsonErr := c.JSON(apiErr.Status, apiErr); jsonErr != nil {
			logger.Error("failed to write error response", "error", jsonErr)
		}
	}
}
