// handlers_upload.go - Upload ingestion handler
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	pipeline   Ingester
	summarizer Summarizer
	store      storage.RecordStore
	logger     *slog.Logger
	newID      func() string
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(pipeline Ingester, summarizer Summarizer, store storage.RecordStore, logger *slog.Logger) UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandlerImpl{
		pipeline:   pipeline,
		summarizer: summarizer,
		store:      store,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// HandleUploadFile accepts a multipart "file" field, ingests it, asks the
// summarizer for a summary and persists the combined record.
func (h *UploadHandlerImpl) HandleUploadFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}
	contentType := file.Header.Get(echo.HeaderContentType)

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	result, err := h.pipeline.Ingest(file.Filename, contentType, src)
	if err != nil {
		var ierr *models.IngestError
		if errors.As(err, &ierr) {
			h.logger.Info("ingestion rejected",
				"file", file.Filename,
				"content_type", contentType,
				"kind", ierr.Kind,
				"error", ierr)
			return NewIngestError(ierr)
		}
		return NewInternalError("ingestion failed", err)
	}

	ctx := c.Request().Context()
	summary, err := h.summarizer.Summarize(ctx, result.Metadata, result.Sample)
	if err != nil {
		h.logger.Error("summarizer failed", "file", file.Filename, "error", err)
		return NewSummarizerError(err)
	}

	rec := &models.FileRecord{
		ID:       h.newID(),
		Metadata: result.Metadata,
		Sample:   result.Sample,
		Summary:  summary,
	}
	if err := h.store.Save(ctx, rec); err != nil {
		return NewInternalError("failed to save record", err)
	}

	h.logger.Info("file ingested",
		"id", rec.ID,
		"file", rec.Metadata.Name,
		"format", rec.Metadata.Format,
		"size", rec.Metadata.SizeBytes)

	return c.JSON(http.StatusCreated, rec)
}
