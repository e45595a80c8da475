package sampler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// JSONSampler re-encodes a JSON document compactly, keeping only the first
// MaxSampleRows elements when the document is an array. Object key order and
// number literals are preserved as written.
type JSONSampler struct {
	maxElements int
}

func NewJSONSampler() *JSONSampler {
	return &JSONSampler{maxElements: MaxSampleRows}
}

func (s *JSONSampler) Format() models.FormatTag {
	return models.FormatJSON
}

func (s *JSONSampler) Sample(raw []byte) (models.ContentSample, error) {
	if !utf8.Valid(raw) {
		return "", undecodable(errors.New("content is not valid UTF-8"))
	}
	if !json.Valid(raw) {
		return "", malformed(describeJSONError(raw))
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] != '[' {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", malformed(err)
		}
		return models.ContentSample(buf.String()), nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return "", malformed(err)
	}
	if len(elems) > s.maxElements {
		elems = elems[:s.maxElements]
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, el := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := json.Compact(&buf, el); err != nil {
			return "", malformed(err)
		}
	}
	buf.WriteByte(']')
	return models.ContentSample(buf.String()), nil
}

// describeJSONError recovers the decoder's message for invalid input, which
// json.Valid does not report.
func describeJSONError(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return errors.New("invalid JSON")
}
