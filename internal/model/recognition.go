package model

import "time"

// Outcome of a recognition attempt.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

// Recognition is an audit record of one dispatch to the recognition engine.
// It carries metadata only: never the document bytes nor the extracted values.
type Recognition struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"request_id"`
	DocumentType  string    `json:"document_type"`
	FileExtension string    `json:"file_extension"`
	Size          int64     `json:"size"`
	Outcome       string    `json:"outcome"`
	FieldCount    int       `json:"field_count"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}
