// Package recognition defines the contract between the OCR API and a recognition engine.
// Engines live in subpackages (gemini, remote).
package recognition

import (
	"context"
	"errors"
	"fmt"
)

// DocumentTypeRIB is the document type for French bank account identity documents.
const DocumentTypeRIB = "rib"

// Fields maps an extracted field name (e.g. "IBAN", "BIC") to its value.
// An empty value means the engine could not resolve that field.
type Fields map[string]string

// Engine extracts structured fields from a document.
// Implementations must be safe for concurrent use.
type Engine interface {
	Recognize(ctx context.Context, content []byte, fileExtension, documentType string) (Fields, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, content []byte, fileExtension, documentType string) (Fields, error)

func (f EngineFunc) Recognize(ctx context.Context, content []byte, fileExtension, documentType string) (Fields, error) {
	return f(ctx, content, fileExtension, documentType)
}

// Error is a recognition failure: unreadable image, unsupported document type or an
// internal engine failure. Detail is a human-readable description.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return "recognition failed: " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error whose detail is the formatted message.
// A %w verb in format is kept as the wrapped cause.
func Errorf(format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Detail: err.Error(), Err: errors.Unwrap(err)}
}

// ErrUnsupportedDocumentType is wrapped by engines asked for a document type they do not handle.
var ErrUnsupportedDocumentType = errors.New("unsupported document type")

// ErrUnsupportedFormat is wrapped by engines that cannot read the file extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// AsError returns err as an *Error, wrapping it when it is not one already.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return &Error{Detail: err.Error(), Err: err}
}
