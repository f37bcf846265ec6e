package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel (1/w, larger is closer), len = W*H
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	n := w * h
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   make([]float64, n),
	}
	fb.clearDepth()
	return fb
}

// Clear fills the color buffer with bg and resets depth.
func (fb *FrameBuffer) Clear(bg color.NRGBA) {
	if len(fb.Color) >= 4 {
		fb.Color[0], fb.Color[1], fb.Color[2], fb.Color[3] = bg.R, bg.G, bg.B, bg.A
		// copy-doubling fill
		for i := 4; i < len(fb.Color); i *= 2 {
			copy(fb.Color[i:], fb.Color[:i])
		}
	}
	fb.clearDepth()
}

func (fb *FrameBuffer) clearDepth() {
	if len(fb.ZBuf) == 0 {
		return
	}
	fb.ZBuf[0] = math.Inf(-1)
	for i := 1; i < len(fb.ZBuf); i *= 2 {
		copy(fb.ZBuf[i:], fb.ZBuf[:i])
	}
}

// CopyTo writes the color buffer into dst, which must match in size.
func (fb *FrameBuffer) CopyTo(dst *image.NRGBA) {
	copy(dst.Pix, fb.Color)
}
