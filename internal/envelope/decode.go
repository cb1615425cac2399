package envelope

import (
	"encoding/base64"
	"strings"
)

// DecodeContent decodes standard (padded) base64. Line breaks are rejected even though
// base64.StdEncoding would skip them. When limit is positive, content whose decoded
// size would exceed it is rejected before any allocation.
func DecodeContent(s string, limit int64) ([]byte, error) {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return nil, newError(InvalidEncoding, KeyFileContent, "illegal line break at offset %d", i)
	}
	if limit > 0 && int64(base64.StdEncoding.DecodedLen(len(s))) > limit+2 {
		return nil, newError(PayloadTooLarge, KeyFileContent, "decoded size exceeds %d bytes", limit)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &Error{Kind: InvalidEncoding, Field: KeyFileContent, Err: err}
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, newError(PayloadTooLarge, KeyFileContent, "decoded size %d exceeds %d bytes", len(data), limit)
	}
	return data, nil
}

// EncodeContent is the inverse of DecodeContent.
func EncodeContent(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Body renders a request body for /ocr/start.
func Body(content []byte, fileExtension, documentType string) map[string]string {
	return map[string]string{
		KeyFileContent:   EncodeContent(content),
		KeyFileExtension: fileExtension,
		KeyDocumentType:  documentType,
	}
}
