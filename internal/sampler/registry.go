package sampler

import (
	"fmt"
	"sort"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// Registry maps format tags to samplers.
type Registry struct {
	samplers map[models.FormatTag]Sampler
}

// NewRegistry returns a registry with the four built-in samplers.
func NewRegistry() *Registry {
	r := &Registry{samplers: make(map[models.FormatTag]Sampler)}
	r.Register(NewXMLSampler())
	r.Register(NewCSVSampler())
	r.Register(NewJSONSampler())
	r.Register(NewTextSampler())
	return r
}

// Register adds or replaces the sampler for s.Format().
// Not safe to call concurrently with Sample.
func (r *Registry) Register(s Sampler) {
	r.samplers[s.Format()] = s
}

// Lookup returns the sampler for a format tag.
func (r *Registry) Lookup(tag models.FormatTag) (Sampler, bool) {
	s, ok := r.samplers[tag]
	return s, ok
}

// Sample dispatches raw to the sampler registered for tag.
func (r *Registry) Sample(tag models.FormatTag, raw []byte) (models.ContentSample, error) {
	s, ok := r.Lookup(tag)
	if !ok {
		return "", models.NewIngestError(models.ErrorKindUnsupportedFormat, "",
			fmt.Errorf("no sampler for format %q", tag))
	}
	return s.Sample(raw)
}

// Formats returns the registered format tags in sorted order.
func (r *Registry) Formats() []models.FormatTag {
	tags := make([]models.FormatTag, 0, len(r.samplers))
	for tag := range r.samplers {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
