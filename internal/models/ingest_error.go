package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies ingestion failures.
type ErrorKind string

const (
	ErrorKindUnsupportedFormat ErrorKind = "unsupported_format"
	ErrorKindMalformedInput    ErrorKind = "malformed_input"
	ErrorKindDecodeError       ErrorKind = "decode_error"
	ErrorKindIOFailure         ErrorKind = "io_failure"
)

// Sentinels matched by errors.Is against any IngestError of the same kind.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMalformedInput    = errors.New("malformed input")
	ErrDecode            = errors.New("invalid utf-8 text")
	ErrIO                = errors.New("read failure")
)

// ErrTooLarge is wrapped in the io_failure raised when an upload exceeds the
// configured size limit.
var ErrTooLarge = errors.New("file too large")

var kindSentinels = map[ErrorKind]error{
	ErrorKindUnsupportedFormat: ErrUnsupportedFormat,
	ErrorKindMalformedInput:    ErrMalformedInput,
	ErrorKindDecodeError:       ErrDecode,
	ErrorKindIOFailure:         ErrIO,
}

// IngestError is the terminal failure of one ingestion. Stage names the
// pipeline step that failed and Err carries the originating cause.
type IngestError struct {
	Kind  ErrorKind
	Stage string
	Err   error
}

// NewIngestError builds an IngestError. Stage may be empty when the caller
// does not know it yet; the pipeline fills it in.
func NewIngestError(kind ErrorKind, stage string, err error) *IngestError {
	return &IngestError{Kind: kind, Stage: stage, Err: err}
}

// Error renders "Error <stage>: <cause>".
func (e *IngestError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("Error: %v", e.Err)
	}
	return fmt.Sprintf("Error %s: %v", e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *IngestError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// Failure returns the transport-neutral view of the error.
func (e *IngestError) Failure() IngestionFailure {
	return IngestionFailure{Kind: e.Kind, Message: e.Error()}
}

// IngestionFailure is what the orchestration layer reports to clients.
type IngestionFailure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}
