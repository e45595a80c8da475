package models

import "time"

// FormatTag is the lower-cased file extension used to select a content sampler.
type FormatTag string

const (
	FormatXML  FormatTag = "xml"
	FormatCSV  FormatTag = "csv"
	FormatJSON FormatTag = "json"
	FormatText FormatTag = "txt"
)

// FileMetadata is the canonical metadata record of one uploaded file.
// Field names on the wire follow the summarizer contract.
type FileMetadata struct {
	Name      string    `json:"nomeDoArquivo"`
	Format    FormatTag `json:"formatoDoArquivo"`
	SizeBytes int64     `json:"tamanhoDoArquivo"`
	CreatedAt time.Time `json:"dataDeCriacao"` // ingestion time, UTC
}

// ContentSample is the bounded text excerpt handed to the summarizer.
type ContentSample string

// IngestionResult is the successful outcome of ingesting one upload.
type IngestionResult struct {
	Metadata FileMetadata  `json:"metadados"`
	Sample   ContentSample `json:"amostra"`
}
