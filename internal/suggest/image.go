package suggest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"unicode"

	// Registered decoders.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// DefaultMaxImagePixels bounds the pixel count of images accepted for decoding.
const DefaultMaxImagePixels = 40_000_000

// imageFrame is a decoded image ready to send to the face detector.
type imageFrame struct {
	img    image.Image
	format string
	raw    []byte
}

// jpeg returns the frame encoded as JPEG. JPEG input is passed through
// unchanged.
func (f imageFrame) jpeg() ([]byte, error) {
	if f.format == "jpeg" {
		return f.raw, nil
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeImage decodes JPEG, PNG, GIF, BMP, TIFF or WebP data. The header is
// checked first and images over maxPixels are rejected without decoding.
func decodeImage(data []byte, maxPixels int) (imageFrame, error) {
	if len(data) == 0 {
		return imageFrame{}, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return imageFrame{}, fmt.Errorf("%w: invalid image file: %v", ErrInvalidInput, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return imageFrame{}, fmt.Errorf("%w: image has no pixels", ErrInvalidInput)
	}
	if cfg.Width > maxPixels/cfg.Height {
		return imageFrame{}, fmt.Errorf("%w: image is %dx%d, over the %d pixel limit",
			ErrInvalidInput, cfg.Width, cfg.Height, maxPixels)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return imageFrame{}, fmt.Errorf("%w: invalid image file: %v", ErrInvalidInput, err)
	}
	return imageFrame{img: img, format: format, raw: data}, nil
}

// decodeBase64Payload strips an optional data URI prefix and decodes the
// base64 body. Whitespace anywhere in the payload is ignored and padding is
// optional.
func decodeBase64Payload(payload string) ([]byte, error) {
	raw := strings.TrimSpace(payload)
	if strings.HasPrefix(raw, "data:") {
		if _, body, ok := strings.Cut(raw, ","); ok {
			raw = body
		}
	}
	raw = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	if raw == "" {
		return nil, fmt.Errorf("%w: image payload is empty", ErrInvalidInput)
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image data", ErrInvalidInput)
	}
	return data, nil
}
