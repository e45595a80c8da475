// Package summarize asks Gemini for a JSON summary of a file's metadata and
// content sample.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
)

// ErrInvalidSummary is returned when the model reply is not a JSON document.
var ErrInvalidSummary = errors.New("summary is not valid JSON")

// Options configures the Gemini client.
type Options struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *slog.Logger
}

// generator is the part of *genai.GenerativeModel the summarizer uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini summarizes uploads with a Gemini model. Create one per process and
// Close it on shutdown.
type Gemini struct {
	client  *genai.Client
	model   generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini creates the Gemini client.
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini API key not configured")
	}
	if opts.Model == "" {
		opts.Model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(opts.Temperature)
	model.ResponseMIMEType = "application/json"

	return newGemini(client, model, opts), nil
}

func newGemini(client *genai.Client, model generator, opts Options) *Gemini {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{client: client, model: model, timeout: opts.Timeout, logger: logger}
}

// Summarize sends metadata and sample to the model and returns its JSON reply.
func (g *Gemini) Summarize(ctx context.Context, meta models.FileMetadata, sample models.ContentSample) (json.RawMessage, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt, err := BuildPrompt(meta, sample)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	g.logger.Debug("gemini replied", "file", meta.Name, "elapsed", time.Since(start))

	text := responseText(resp)
	if text == "" {
		return nil, errors.New("gemini returned no candidates")
	}
	return ParseSummary(text)
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// BuildPrompt renders the summarization prompt.
func BuildPrompt(meta models.FileMetadata, sample models.ContentSample) (string, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return fmt.Sprintf("Analise os seguintes metadados e conteúdo de amostra de um arquivo:\n"+
		"Metadados: %s\n"+
		"Amostra: %s\n"+
		"Entregue um resumo em formato JSON:\n"+
		"Responda somente com o JSON e não adicione nenhuma quebra de linha a resposta.",
		metaJSON, sample), nil
}

// ParseSummary strips an optional Markdown code fence from text and checks
// that what remains is one JSON document.
func ParseSummary(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:] // drop the language tag line
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if !json.Valid([]byte(s)) {
		return nil, fmt.Errorf("%w: %.80q", ErrInvalidSummary, s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSummary, err)
	}
	return buf.Bytes(), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
