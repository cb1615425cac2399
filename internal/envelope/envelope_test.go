package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func body(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func assertKind(t *testing.T, err error, kind Kind, field string) {
	t.Helper()
	var e *Error
	require.True(t, errors.As(err, &e), "expected *envelope.Error, got %v", err)
	assert.Equal(t, kind, e.Kind)
	assert.Equal(t, field, e.Field)
}

func TestParse(t *testing.T) {
	t.Run("all keys present", func(t *testing.T) {
		raw, err := Parse(body(t, Body([]byte("img"), "jpg", "rib")))
		require.NoError(t, err)
		assert.Equal(t, "aW1n", raw.FileContent)
		assert.Equal(t, "jpg", raw.FileExtension)
		assert.Equal(t, "rib", raw.DocumentType)
	})

	t.Run("values are not inspected", func(t *testing.T) {
		raw, err := Parse([]byte(`{"filecontent": 12, "fileextension": null, "documenttype": ""}`))
		require.NoError(t, err)
		assert.Equal(t, float64(12), raw.FileContent)
		assert.Nil(t, raw.FileExtension)
	})

	malformed := map[string]string{
		"not json":    `filecontent=abc`,
		"empty body":  ``,
		"truncated":   `{"filecontent": "abc"`,
		"json array":  `["filecontent", "fileextension", "documenttype"]`,
		"json string": `"hello"`,
		"json null":   `null`,
		"json number": `42`,
	}
	for name, b := range malformed {
		t.Run("malformed "+name, func(t *testing.T) {
			_, err := Parse([]byte(b))
			assertKind(t, err, MalformedInput, "")
		})
	}

	for _, key := range []string{KeyFileContent, KeyFileExtension, KeyDocumentType} {
		t.Run("missing "+key, func(t *testing.T) {
			m := map[string]any{
				KeyFileContent:   "aW1n",
				KeyFileExtension: "jpg",
				KeyDocumentType:  "rib",
			}
			delete(m, key)
			_, err := Parse(body(t, m))
			assertKind(t, err, MissingField, key)
		})
	}

	t.Run("keys are case sensitive", func(t *testing.T) {
		_, err := Parse([]byte(`{"fileContent": "aW1n", "fileextension": "jpg", "documenttype": "rib"}`))
		assertKind(t, err, MissingField, KeyFileContent)
	})
}

func TestDecoder_Decode(t *testing.T) {
	d := Decoder{MaxDecodedBytes: 16}

	t.Run("success", func(t *testing.T) {
		env, err := d.Decode(Raw{FileContent: "aGVsbG8=", FileExtension: " .JPG ", DocumentType: " rib "})
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), env.FileContent)
		assert.Equal(t, "jpg", env.FileExtension)
		assert.Equal(t, "rib", env.DocumentType)
	})

	tests := []struct {
		name  string
		raw   Raw
		kind  Kind
		field string
	}{
		{"non-alphabet characters", Raw{"aGV$bG8=", "jpg", "rib"}, InvalidEncoding, KeyFileContent},
		{"bad padding", Raw{"aGVsbG8", "jpg", "rib"}, InvalidEncoding, KeyFileContent},
		{"url alphabet", Raw{"-_-_", "jpg", "rib"}, InvalidEncoding, KeyFileContent},
		{"embedded newline", Raw{"aGVs\nbG8=", "jpg", "rib"}, InvalidEncoding, KeyFileContent},
		{"mime line wrapping", Raw{"aGVs\r\nbG8=", "jpg", "rib"}, InvalidEncoding, KeyFileContent},
		{"trailing newline", Raw{"aGVsbG8=\n", "jpg", "rib"}, InvalidEncoding, KeyFileContent},
		{"content not a string", Raw{float64(1), "jpg", "rib"}, InvalidEncoding, KeyFileContent},
		{"content null", Raw{nil, "jpg", "rib"}, InvalidEncoding, KeyFileContent},
		{"extension empty", Raw{"aGVsbG8=", "  ", "rib"}, InvalidField, KeyFileExtension},
		{"extension not a string", Raw{"aGVsbG8=", true, "rib"}, InvalidField, KeyFileExtension},
		{"document type empty", Raw{"aGVsbG8=", "jpg", ""}, InvalidField, KeyDocumentType},
		{"document type null", Raw{"aGVsbG8=", "jpg", nil}, InvalidField, KeyDocumentType},
		{"too large", Raw{EncodeContent(make([]byte, 17)), "jpg", "rib"}, PayloadTooLarge, KeyFileContent},
		{"far too large", Raw{EncodeContent(make([]byte, 300)), "jpg", "rib"}, PayloadTooLarge, KeyFileContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Decode(tt.raw)
			assertKind(t, err, tt.kind, tt.field)
		})
	}

	t.Run("limit is inclusive", func(t *testing.T) {
		env, err := d.Decode(Raw{EncodeContent(make([]byte, 16)), "png", "rib"})
		require.NoError(t, err)
		assert.Len(t, env.FileContent, 16)
	})

	t.Run("zero limit disables check", func(t *testing.T) {
		env, err := Decoder{}.Decode(Raw{EncodeContent(make([]byte, 1024)), "png", "rib"})
		require.NoError(t, err)
		assert.Len(t, env.FileContent, 1024)
	})

	t.Run("empty content decodes to empty bytes", func(t *testing.T) {
		env, err := d.Decode(Raw{"", "pdf", "rib"})
		require.NoError(t, err)
		assert.Empty(t, env.FileContent)
	})
}

func TestDecoder_ParseAndDecode(t *testing.T) {
	d := Decoder{}

	env, err := d.ParseAndDecode(body(t, Body([]byte("%PDF-1.4"), "PDF", "rib")))
	require.NoError(t, err)
	assert.Equal(t, Envelope{FileContent: []byte("%PDF-1.4"), FileExtension: "pdf", DocumentType: "rib"}, env)

	_, err = d.ParseAndDecode([]byte(`{`))
	assertKind(t, err, MalformedInput, "")
}

func TestContentRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		b := make([]byte, r.Intn(512))
		r.Read(b)

		got, err := DecodeContent(EncodeContent(b), 0)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(b, got), "round trip mismatch for %d bytes", len(b))
	}
}

func TestError(t *testing.T) {
	err := &Error{Kind: MissingField, Field: KeyDocumentType, Err: errors.New("boom")}
	assert.Equal(t, "missing_field (documenttype): boom", err.Error())
	assert.Equal(t, "boom", errors.Unwrap(err).Error())
	assert.Equal(t, "unknown", Kind(99).String())
}
