package models

import "encoding/json"

// FileRecord is the persisted combination of metadata, sample and summary.
type FileRecord struct {
	ID       string          `json:"id"`
	Metadata FileMetadata    `json:"metadados"`
	Sample   ContentSample   `json:"-"`
	Summary  json.RawMessage `json:"resumoGemini"`
}
