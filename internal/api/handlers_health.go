// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version      string
	formats      []models.FormatTag
	contentTypes []string
}

// NewHealthHandler creates a new health handler. formats and contentTypes
// are reported as-is so clients can check what the server accepts.
func NewHealthHandler(version string, formats []models.FormatTag, contentTypes []string) HealthHandler {
	return &HealthHandlerImpl{
		version:      version,
		formats:      formats,
		contentTypes: contentTypes,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":       "ok",
		"version":      h.version,
		"formats":      h.formats,
		"contentTypes": h.contentTypes,
	})
}
