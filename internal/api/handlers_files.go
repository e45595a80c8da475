// handlers_files.go - Stored record handlers
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100

	mimeMsgpack = "application/msgpack"
)

// FileHandlerImpl implements the FileHandler interface
type FileHandlerImpl struct {
	store         storage.RecordStore
	allowDeletion bool
}

// NewFileHandler creates a new record handler instance
func NewFileHandler(store storage.RecordStore, allowDeletion bool) FileHandler {
	return &FileHandlerImpl{
		store:         store,
		allowDeletion: allowDeletion,
	}
}

// HandleGetRecentFiles returns the most recently ingested records
func (h *FileHandlerImpl) HandleGetRecentFiles(c echo.Context) error {
	limit := defaultRecentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = min(n, maxRecentLimit)
	}

	records, err := h.store.List(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, records)
}

// HandleGetFile returns a single record as JSON, or msgpack when requested
func (h *FileHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	rec, err := h.store.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("file", id)
		}
		return NewInternalError("failed to load file", err)
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), mimeMsgpack) {
		data, err := encodeRecordMsgpack(rec)
		if err != nil {
			return NewInternalError("failed to encode msgpack", err)
		}
		return c.Blob(http.StatusOK, mimeMsgpack, data)
	}
	return c.JSON(http.StatusOK, rec)
}

// HandleDeleteFile removes a record when deletion is enabled
func (h *FileHandlerImpl) HandleDeleteFile(c echo.Context) error {
	if !h.allowDeletion {
		return NewForbiddenError("file deletion is disabled")
	}
	id := c.Param("id")

	if err := h.store.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return NewNotFoundError("file", id)
		}
		return NewInternalError("failed to delete file", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// encodeRecordMsgpack uses the same field names as the JSON response. The
// summary is decoded first so it travels as a msgpack map, not raw bytes.
func encodeRecordMsgpack(rec *models.FileRecord) ([]byte, error) {
	var summary interface{}
	if len(rec.Summary) > 0 {
		if err := json.Unmarshal(rec.Summary, &summary); err != nil {
			return nil, err
		}
	}
	return msgpack.Marshal(map[string]interface{}{
		"id": rec.ID,
		"metadados": map[string]interface{}{
			"nomeDoArquivo":    rec.Metadata.Name,
			"formatoDoArquivo": string(rec.Metadata.Format),
			"tamanhoDoArquivo": rec.Metadata.SizeBytes,
			"dataDeCriacao":    rec.Metadata.CreatedAt.UTC().Format(time.RFC3339),
		},
		"resumoGemini": summary,
	})
}
