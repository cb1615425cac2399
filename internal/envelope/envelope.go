// Package envelope turns a raw /ocr/start body into a validated, decoded Envelope.
//
// Parse checks the body is a JSON object carrying the three required keys; Decode
// type-checks and base64-decodes their values. Both are pure functions: nothing here
// retains request data after returning.
package envelope

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	KeyFileContent   = "filecontent"
	KeyFileExtension = "fileextension"
	KeyDocumentType  = "documenttype"
)

const requestSchema = `{
  "type": "object",
  "required": ["filecontent", "fileextension", "documenttype"]
}`

var schema = jsonschema.MustCompileString("envelope.json", requestSchema)

// Envelope is a validated, decoded OCR request. It is built once per request and
// passed by value; it must never be stored on a long-lived object.
type Envelope struct {
	FileContent   []byte
	FileExtension string
	DocumentType  string
}

// Raw is the parsed but undecoded body. Values are whatever JSON type the client sent.
type Raw struct {
	FileContent   any
	FileExtension any
	DocumentType  any
}

// Parse validates that body is a JSON object with all required keys present.
// Values are not inspected.
func Parse(body []byte) (Raw, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return Raw{}, &Error{Kind: MalformedInput, Err: err}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Raw{}, newError(MalformedInput, "", "body is not a JSON object")
	}

	if err := schema.Validate(obj); err != nil {
		return Raw{}, &Error{Kind: MissingField, Field: missingKey(obj), Err: err}
	}

	return Raw{
		FileContent:   obj[KeyFileContent],
		FileExtension: obj[KeyFileExtension],
		DocumentType:  obj[KeyDocumentType],
	}, nil
}

// Decoder converts a Raw envelope into an Envelope.
// MaxDecodedBytes bounds the decoded content; zero disables the limit.
type Decoder struct {
	MaxDecodedBytes int64
}

// Decode type-checks the raw values and decodes the base64 file content.
func (d Decoder) Decode(raw Raw) (Envelope, error) {
	content, ok := raw.FileContent.(string)
	if !ok {
		return Envelope{}, newError(InvalidEncoding, KeyFileContent, "expected a base64 string")
	}
	data, err := DecodeContent(content, d.MaxDecodedBytes)
	if err != nil {
		return Envelope{}, err
	}

	ext, ok := raw.FileExtension.(string)
	ext = NormalizeExtension(ext)
	if !ok || ext == "" {
		return Envelope{}, newError(InvalidField, KeyFileExtension, "expected a non-empty string")
	}
	docType, ok := raw.DocumentType.(string)
	docType = strings.TrimSpace(docType)
	if !ok || docType == "" {
		return Envelope{}, newError(InvalidField, KeyDocumentType, "expected a non-empty string")
	}

	return Envelope{
		FileContent:   data,
		FileExtension: ext,
		DocumentType:  docType,
	}, nil
}

// ParseAndDecode runs Parse then Decode.
func (d Decoder) ParseAndDecode(body []byte) (Envelope, error) {
	raw, err := Parse(body)
	if err != nil {
		return Envelope{}, err
	}
	return d.Decode(raw)
}

// NormalizeExtension lower-cases ext and strips surrounding space and a leading dot.
func NormalizeExtension(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

func missingKey(obj map[string]any) string {
	for _, k := range []string{KeyFileContent, KeyFileExtension, KeyDocumentType} {
		if _, ok := obj[k]; !ok {
			return k
		}
	}
	return ""
}
