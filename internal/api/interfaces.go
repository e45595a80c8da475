// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"
	"encoding/json"
	"io"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/labstack/echo/v4"
)

// UploadHandler handles the ingest-summarize-store flow
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
}

// FileHandler handles stored record operations
type FileHandler interface {
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Ingester turns an uploaded stream into metadata and a content sample.
// *ingest.Pipeline satisfies it.
type Ingester interface {
	Ingest(filename, contentType string, src io.Reader) (*models.IngestionResult, error)
}

// Summarizer produces the JSON summary for an ingestion result.
// *summarize.Gemini satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, meta models.FileMetadata, sample models.ContentSample) (json.RawMessage, error)
}
