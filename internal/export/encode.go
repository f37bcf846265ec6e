// Package export encodes finished cards and hands them to the user.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// Format is an output image encoding.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// ParseFormat accepts a format name or file extension, case-insensitive.
// The empty string means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "", "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// Ext returns the file extension for f, with the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// MIME returns the media type for f.
func (f Format) MIME() string {
	if f == WebP {
		return "image/webp"
	}
	return "image/png"
}

// Encode writes img to w. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("export: png encode: %w", err)
		}
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("export: webp encode: %w", err)
		}
	default:
		return fmt.Errorf("export: unknown format %q", f)
	}
	return nil
}
