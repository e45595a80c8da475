// Package ingest classifies an uploaded file, records its metadata and
// extracts a bounded content sample.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/sampler"
)

// Stage names used in failure messages.
const (
	StageClassify = "classifying file"
	StageRead     = "reading file"
	StageSample   = "sampling content"
)

// Config configures a Pipeline. Zero values get defaults.
type Config struct {
	// MaxFileSize bounds the bytes read from one upload. 0 means unbounded.
	MaxFileSize int64
	Registry    *sampler.Registry
	Logger      *slog.Logger
	// Now returns the ingestion time. Defaults to time.Now.
	Now func() time.Time
}

func (c *Config) defaults() {
	if c.Registry == nil {
		c.Registry = sampler.NewRegistry()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Pipeline runs one ingestion per call. It holds no per-call state and is
// safe for concurrent use.
type Pipeline struct {
	cfg Config
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg}
}

// Ingest classifies the upload, reads src exactly once into memory, extracts
// metadata and samples the buffered bytes. Failures are *models.IngestError
// and are never accompanied by a result.
func (p *Pipeline) Ingest(filename, contentType string, src io.Reader) (*models.IngestionResult, error) {
	tag, err := Classify(filename, contentType)
	if err != nil {
		return nil, withStage(err, StageClassify)
	}

	raw, err := p.readAll(src)
	if err != nil {
		return nil, models.NewIngestError(models.ErrorKindIOFailure, StageRead, err)
	}

	meta := ExtractMetadata(filename, raw, p.cfg.Now())

	sample, err := p.cfg.Registry.Sample(tag, raw)
	if err != nil {
		return nil, withStage(err, StageSample)
	}

	p.cfg.Logger.Debug("file ingested",
		"name", meta.Name, "format", meta.Format, "size", meta.SizeBytes, "sample_chars", len([]rune(sample)))

	return &models.IngestionResult{Metadata: meta, Sample: sample}, nil
}

// Formats returns the format tags this pipeline can sample.
func (p *Pipeline) Formats() []models.FormatTag {
	return p.cfg.Registry.Formats()
}

func (p *Pipeline) readAll(src io.Reader) ([]byte, error) {
	if src == nil {
		return nil, errors.New("no content source")
	}
	if p.cfg.MaxFileSize <= 0 {
		return io.ReadAll(src)
	}
	raw, err := io.ReadAll(io.LimitReader(src, p.cfg.MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: exceeds the %d byte limit", models.ErrTooLarge, p.cfg.MaxFileSize)
	}
	return raw, nil
}

// withStage stamps the pipeline stage on a sampler or classifier error.
func withStage(err error, stage string) error {
	var ierr *models.IngestError
	if errors.As(err, &ierr) {
		if ierr.Stage == "" {
			return models.NewIngestError(ierr.Kind, stage, ierr.Err)
		}
		return ierr
	}
	return models.NewIngestError(models.ErrorKindMalformedInput, stage, err)
}
