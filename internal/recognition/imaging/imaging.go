// Package imaging normalizes submitted documents into an image a vision model accepts.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
	"golang.org/x/image/tiff"

	"ocrapi/internal/recognition"
)

// Image is a prepared document page.
type Image struct {
	Data     []byte
	MIMEType string
	// Format is the short format name ("png", "jpeg") some SDKs expect instead of a MIME type.
	Format string
}

// Prepare converts content to an Image based on its file extension.
// PNG and JPEG are passed through after a header check; PDF renders its first page;
// TIFF, GIF and HEIC/HEIF are re-encoded as PNG.
func Prepare(content []byte, ext string) (Image, error) {
	if len(content) == 0 {
		return Image{}, recognition.Errorf("empty file content")
	}

	switch ext {
	case "png", "jpg", "jpeg":
		_, format, err := image.DecodeConfig(bytes.NewReader(content))
		if err != nil {
			return Image{}, recognition.Errorf("cannot parse %s image: %w", ext, err)
		}
		return Image{Data: content, MIMEType: "image/" + format, Format: format}, nil
	case "gif":
		img, _, err := image.Decode(bytes.NewReader(content))
		if err != nil {
			return Image{}, recognition.Errorf("cannot parse gif image: %w", err)
		}
		return encodePNG(img)
	case "tif", "tiff":
		img, err := tiff.Decode(bytes.NewReader(content))
		if err != nil {
			return Image{}, recognition.Errorf("cannot parse tiff image: %w", err)
		}
		return encodePNG(img)
	case "heic", "heif":
		img, err := heic.Decode(bytes.NewReader(content))
		if err != nil {
			return Image{}, recognition.Errorf("cannot parse heic image: %w", err)
		}
		return encodePNG(img)
	case "pdf":
		return renderPDF(content)
	default:
		return Image{}, recognition.Errorf("file extension %q: %w", ext, recognition.ErrUnsupportedFormat)
	}
}

// renderPDF renders the first page; RIBs are single-page documents.
func renderPDF(content []byte) (Image, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return Image{}, recognition.Errorf("cannot open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return Image{}, recognition.Errorf("pdf has no pages")
	}
	img, err := doc.Image(0)
	if err != nil {
		return Image{}, recognition.Errorf("cannot render pdf page: %w", err)
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) (Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("encoding png: %w", err)
	}
	return Image{Data: buf.Bytes(), MIMEType: "image/png", Format: "png"}, nil
}
