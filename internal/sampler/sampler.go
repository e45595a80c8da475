// Package sampler turns the raw bytes of an uploaded file into a small,
// deterministic text excerpt suitable for summarization.
//
// Each supported format has its own Sampler; the Registry dispatches on the
// file's format tag. Every sampler keeps a prefix of the content:
//   - xml: the root element re-serialized, pruned to MaxSampleChars
//   - csv: the first MaxSampleRows rows as a JSON array of objects
//   - json: arrays cut to their first MaxSampleRows elements, compact JSON
//   - txt: the first MaxSampleChars characters
package sampler

import "github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"

const (
	// MaxSampleRows bounds CSV rows and JSON array elements.
	MaxSampleRows = 5
	// MaxSampleChars bounds text and XML samples, counted in characters.
	MaxSampleChars = 500
)

// Sampler extracts a bounded sample from one file format.
type Sampler interface {
	// Format returns the tag this sampler handles.
	Format() models.FormatTag
	// Sample parses raw and returns the excerpt. Failures are *models.IngestError.
	Sample(raw []byte) (models.ContentSample, error)
}

func malformed(err error) error {
	return models.NewIngestError(models.ErrorKindMalformedInput, "", err)
}

func undecodable(err error) error {
	return models.NewIngestError(models.ErrorKindDecodeError, "", err)
}
