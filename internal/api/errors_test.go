package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestNewIngestError(t *testing.T) {
	tests := []struct {
		kind       models.ErrorKind
		wantStatus int
		wantCode   string
	}{
		{models.ErrorKindUnsupportedFormat, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{models.ErrorKindMalformedInput, http.StatusUnprocessableEntity, "MALFORMED_INPUT"},
		{models.ErrorKindDecodeError, http.StatusUnprocessableEntity, "DECODE_ERROR"},
		{models.ErrorKindIOFailure, http.StatusInternalServerError, "IO_FAILURE"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			apiErr := NewIngestError(models.NewIngestError(tt.kind, "reading file", errors.New("boom")))
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, "Error reading file: boom", apiErr.Message)
		})
	}
}

func TestNewIngestError_TooLarge(t *testing.T) {
	cause := fmt.Errorf("%w: exceeds the 16 byte limit", models.ErrTooLarge)
	apiErr := NewIngestError(models.NewIngestError(models.ErrorKindIOFailure, "reading file", cause))
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.Status)
	assert.Equal(t, "FILE_TOO_LARGE", apiErr.Code)
	assert.Equal(t, "Error reading file: file too large: exceeds the 16 byte limit", apiErr.Message)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		showDetails bool
		wantStatus  int
		wantBody    string
	}{
		{
			name:       "api error",
			err:        NewNotFoundError("file", "x"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"NOT_FOUND","message":"file not found: x"}`,
		},
		{
			name:       "ingest error",
			err:        models.NewIngestError(models.ErrorKindDecodeError, "sampling content", errors.New("invalid utf-8")),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"code":"DECODE_ERROR","message":"Error sampling content: invalid utf-8"}`,
		},
		{
			name:       "echo http error",
			err:        echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request Entity Too Large"),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantBody:   `{"code":"FILE_TOO_LARGE","message":"Request Entity Too Large"}`,
		},
		{
			name:       "echo not found",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"code":"HTTP_ERROR","message":"Not Found"}`,
		},
		{
			name:       "unknown error hidden",
			err:        errors.New("secret"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":"UNKNOWN_ERROR","message":"An unexpected error occurred"}`,
		},
		{
			name:        "unknown error with details",
			err:         errors.New("secret"),
			showDetails: true,
			wantStatus:  http.StatusInternalServerError,
			wantBody:    `{"code":"UNKNOWN_ERROR","message":"An unexpected error occurred","details":"secret"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewErrorHandler(nil, tt.showDetails)(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
