package envelope

import "fmt"

// Kind classifies why an envelope was rejected. Every Kind is a client error.
type Kind int

const (
	// MalformedInput means the body is not a JSON object.
	MalformedInput Kind = iota + 1
	// MissingField means one of the required keys is absent.
	MissingField
	// InvalidEncoding means filecontent is not a standard base64 string.
	InvalidEncoding
	// InvalidField means fileextension or documenttype is not a non-empty string.
	InvalidField
	// PayloadTooLarge means the decoded content exceeds the configured maximum.
	PayloadTooLarge
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed_input"
	case MissingField:
		return "missing_field"
	case InvalidEncoding:
		return "invalid_encoding"
	case InvalidField:
		return "invalid_field"
	case PayloadTooLarge:
		return "payload_too_large"
	default:
		return "unknown"
	}
}

// Error is returned by Parse and Decode.
type Error struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, field string, format string, args ...any) *Error {
	var err error
	if format != "" {
		err = fmt.Errorf(format, args...)
	}
	return &Error{Kind: kind, Field: field, Err: err}
}
