package raster

import (
	"image"
	"math"
)

// Filter selects how texels are sampled.
type Filter int

const (
	// FilterNearest keeps pixel-art texels crisp.
	FilterNearest Filter = iota
	// FilterLinear blends the four nearest texels.
	FilterLinear
)

// ParseFilter maps a config name to a Filter. Unknown names are nearest.
func ParseFilter(name string) Filter {
	if name == "linear" {
		return FilterLinear
	}
	return FilterNearest
}

// Sampler returns the texel function for f.
func (f Filter) Sampler() func(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	if f == FilterLinear {
		return SampleLinear
	}
	return SampleNearest
}

// texelIndex maps a wrapped coordinate t in texture units onto [0, n).
func texelIndex(t float64, n int) int {
	i := int(math.Floor(t)) % n
	if i < 0 {
		i += n
	}
	return i
}

func texel(tex *image.NRGBA, x, y int) []uint8 {
	i := tex.PixOffset(tex.Rect.Min.X+x, tex.Rect.Min.Y+y)
	return tex.Pix[i : i+4 : i+4]
}

// SampleNearest returns the texel containing (u, v). UVs repeat outside [0, 1).
func SampleNearest(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}
	p := texel(tex, texelIndex(u*float64(w), w), texelIndex(v*float64(h), h))
	return p[0], p[1], p[2], p[3]
}

// SampleLinear blends the four texels around (u, v), sampling at texel
// centers and wrapping across edges.
func SampleLinear(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5
	bx, by := math.Floor(fx), math.Floor(fy)
	dx, dy := fx-bx, fy-by

	x0, y0 := texelIndex(bx, w), texelIndex(by, h)
	x1, y1 := (x0+1)%w, (y0+1)%h

	var acc [4]float64
	for _, s := range [4]struct {
		x, y int
		k    float64
	}{
		{x0, y0, (1 - dx) * (1 - dy)},
		{x1, y0, dx * (1 - dy)},
		{x0, y1, (1 - dx) * dy},
		{x1, y1, dx * dy},
	} {
		if s.k == 0 {
			continue
		}
		p := texel(tex, s.x, s.y)
		for c := range acc {
			acc[c] += float64(p[c]) * s.k
		}
	}
	return uint8(acc[0] + 0.5), uint8(acc[1] + 0.5), uint8(acc[2] + 0.5), uint8(acc[3] + 0.5)
}
