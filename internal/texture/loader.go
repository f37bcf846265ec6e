package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// LoadTexture reads a PNG, JPEG, GIF, WebP or TGA file and returns an NRGBA image.
func LoadTexture(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}

	img, err := Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return img, nil
}

// Decode sniffs the format from the leading bytes. TGA has no magic number
// and registers an empty one, so formats are dispatched here rather than
// through image.Decode.
func Decode(r io.Reader) (*image.NRGBA, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var dec func(io.Reader) (image.Image, error)
	switch {
	case bytes.HasPrefix(raw, []byte("\x89PNG\r\n\x1a\n")):
		dec = png.Decode
	case bytes.HasPrefix(raw, []byte{0xff, 0xd8}):
		dec = jpeg.Decode
	case bytes.HasPrefix(raw, []byte("GIF8")):
		dec = gif.Decode
	case len(raw) >= 12 && string(raw[:4]) == "RIFF" && string(raw[8:12]) == "WEBP":
		dec = webp.Decode
	default:
		dec = tga.Decode
	}

	img, err := dec(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return ToNRGBA(img), nil
}

// ToNRGBA converts any image to NRGBA with its origin at (0, 0).
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
