package ingest

import (
	"time"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// ExtractMetadata builds the metadata record for an upload whose full
// content is raw. at is the ingestion time; it is stored in UTC.
func ExtractMetadata(filename string, raw []byte, at time.Time) models.FileMetadata {
	return models.FileMetadata{
		Name:      filename,
		Format:    FormatFromFilename(filename),
		SizeBytes: int64(len(raw)),
		CreatedAt: at.UTC(),
	}
}
