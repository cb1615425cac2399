package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"ocrapi/internal/recognition"
)

func sample() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 80), B: 200, A: 255})
		}
	}
	return img
}

func encode(t *testing.T, f func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, f(&buf, sample()))
	return buf.Bytes()
}

func TestPrepare_Passthrough(t *testing.T) {
	pngData := encode(t, func(b *bytes.Buffer, i image.Image) error { return png.Encode(b, i) })
	img, err := Prepare(pngData, "png")
	require.NoError(t, err)
	assert.Equal(t, pngData, img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "png", img.Format)

	jpegData := encode(t, func(b *bytes.Buffer, i image.Image) error { return jpeg.Encode(b, i, nil) })
	img, err = Prepare(jpegData, "jpg")
	require.NoError(t, err)
	assert.Equal(t, jpegData, img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)
	assert.Equal(t, "jpeg", img.Format)
}

func TestPrepare_Converted(t *testing.T) {
	tests := map[string][]byte{
		"tiff": encode(t, func(b *bytes.Buffer, i image.Image) error { return tiff.Encode(b, i, nil) }),
		"tif":  encode(t, func(b *bytes.Buffer, i image.Image) error { return tiff.Encode(b, i, nil) }),
		"gif":  encode(t, func(b *bytes.Buffer, i image.Image) error { return gif.Encode(b, i, nil) }),
	}
	for ext, data := range tests {
		t.Run(ext, func(t *testing.T) {
			img, err := Prepare(data, ext)
			require.NoError(t, err)
			assert.Equal(t, "image/png", img.MIMEType)

			decoded, err := png.Decode(bytes.NewReader(img.Data))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 3), decoded.Bounds())
		})
	}
}

func TestPrepare_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		ext     string
	}{
		{"empty content", nil, "png"},
		{"garbage png", []byte("definitely not an image"), "png"},
		{"garbage tiff", []byte("II*\x00garbage"), "tiff"},
		{"garbage pdf", []byte("not a pdf"), "pdf"},
		{"unsupported extension", []byte("data"), "docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Prepare(tt.content, tt.ext)
			var re *recognition.Error
			require.True(t, errors.As(err, &re), "expected *recognition.Error, got %v", err)
			assert.NotEmpty(t, re.Detail)
		})
	}

	_, err := Prepare([]byte("data"), "docx")
	assert.ErrorIs(t, err, recognition.ErrUnsupportedFormat)
}
