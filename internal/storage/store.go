// Package storage persists ingested file records.
package storage

import (
	"context"
	"errors"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// RecordStore defines the persistence sink for file records.
type RecordStore interface {
	Save(ctx context.Context, rec *models.FileRecord) error
	Get(ctx context.Context, id string) (*models.FileRecord, error)
	List(ctx context.Context, limit int) ([]*models.FileRecord, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
