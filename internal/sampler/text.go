package sampler

import (
	"errors"
	"unicode/utf8"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// TextSampler keeps the first MaxSampleChars characters of UTF-8 text.
type TextSampler struct {
	maxChars int
}

func NewTextSampler() *TextSampler {
	return &TextSampler{maxChars: MaxSampleChars}
}

func (s *TextSampler) Format() models.FormatTag {
	return models.FormatText
}

func (s *TextSampler) Sample(raw []byte) (models.ContentSample, error) {
	if !utf8.Valid(raw) {
		return "", undecodable(errors.New("content is not valid UTF-8"))
	}
	return models.ContentSample(truncateRunes(string(raw), s.maxChars)), nil
}

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
