package ingest

import (
	"fmt"
	"mime"
	"sort"
	"strings"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// allowedContentTypes gates admission of an upload.
var allowedContentTypes = map[string]struct{}{
	"text/xml":         {},
	"text/csv":         {},
	"application/json": {},
	"text/plain":       {},
}

// Classify admits an upload by its declared content type and derives the
// format tag from its filename. The two signals are independent: the content
// type only decides admission, the extension decides how the file is sampled.
func Classify(filename, contentType string) (models.FormatTag, error) {
	if !ContentTypeAllowed(contentType) {
		return "", models.NewIngestError(models.ErrorKindUnsupportedFormat, "",
			fmt.Errorf("content type %q is not supported", contentType))
	}
	return FormatFromFilename(filename), nil
}

// ContentTypeAllowed reports whether the media type of contentType is on the
// allow-list. Parameters such as charset are ignored.
func ContentTypeAllowed(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	_, ok := allowedContentTypes[mediaType]
	return ok
}

// AllowedContentTypes lists the admitted media types in sorted order.
func AllowedContentTypes() []string {
	types := make([]string, 0, len(allowedContentTypes))
	for t := range allowedContentTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// FormatFromFilename returns the lower-cased text after the last dot of
// filename, or "" when there is none.
func FormatFromFilename(filename string) models.FormatTag {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return models.FormatTag(strings.ToLower(filename[i+1:]))
}
