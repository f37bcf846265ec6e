package raster

import (
	"image"
	"image/color"
	"math"
)

// ScreenVertex is a projected vertex: pixel position, 1/w for depth and
// perspective correction, and texture coordinates.
type ScreenVertex struct {
	X, Y float64
	InvW float64
	U, V float64
}

// Paint describes how a triangle's pixels are colored.
type Paint struct {
	Tex     *image.NRGBA // nil draws Color
	Sample  func(tex *image.NRGBA, u, v float64) (r, g, b, a uint8)
	Color   color.NRGBA
	Shade   float64 // lighting scalar for the face
	Shading Shading
	Light   *LightConfig
}

// RasterizeTriangle rasterizes a single triangle with perspective-correct
// texture mapping, z-buffer, alpha test and flat (per-face) shading.
//
// Hot path: the inner loop must not allocate.
func RasterizeTriangle(fb *FrameBuffer, sv [3]ScreenVertex, p *Paint) {
	x0, y0 := sv[0].X, sv[0].Y
	x1, y1 := sv[1].X, sv[1].Y
	x2, y2 := sv[2].X, sv[2].Y

	// Bounding box, clamped before the int conversion
	w, h := fb.Width, fb.Height
	minX := clampInt(math.Floor(math.Min(math.Min(x0, x1), x2)), 0, w-1)
	maxX := clampInt(math.Ceil(math.Max(math.Max(x0, x1), x2)), 0, w-1)
	minY := clampInt(math.Floor(math.Min(math.Min(y0, y1), y2)), 0, h-1)
	maxY := clampInt(math.Ceil(math.Max(math.Max(y0, y1), y2)), 0, h-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	iw0, iw1, iw2 := sv[0].InvW, sv[1].InvW, sv[2].InvW
	uw0, uw1, uw2 := sv[0].U*iw0, sv[1].U*iw1, sv[2].U*iw2
	vw0, vw1, vw2 := sv[0].V*iw0, sv[1].V*iw1, sv[2].V*iw2

	hasTex := p.Tex != nil && p.Sample != nil

	// Pixel loop
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * w
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			b0 := (dy12*dsx + dx21*dsy) * invDet
			b1 := (dy20*dsx + dx02*dsy) * invDet
			b2 := 1.0 - b0 - b1

			if b0 < -0.001 || b1 < -0.001 || b2 < -0.001 {
				continue
			}

			z := b0*iw0 + b1*iw1 + b2*iw2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := p.Color.R, p.Color.G, p.Color.B, p.Color.A
			if hasTex {
				u := (b0*uw0 + b1*uw1 + b2*uw2) / z
				v := (b0*vw0 + b1*vw1 + b2*vw2) / z
				cr, cg, cb, ca = p.Sample(p.Tex, u, v)
			}

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			fr, fg, fbl := shadePixel(cr, cg, cb, p)
			blendPixel(fb.Color[zIdx*4:zIdx*4+4], fr, fg, fbl, ca)
		}
	}
}

// shadePixel applies the lighting model to an sRGB texel and returns sRGB
// channels in [0, 255].
func shadePixel(r, g, b uint8, p *Paint) (float64, float64, float64) {
	if p.Shading != ShadingStudio || p.Light == nil {
		return float64(r) * p.Shade, float64(g) * p.Shade, float64(b) * p.Shade
	}

	k := p.Shade * p.Light.Exposure
	return toneMap(r, k), toneMap(g, k), toneMap(b, k)
}

// blendPixel composites a color with coverage a over px (source-over).
func blendPixel(px []uint8, r, g, b float64, a uint8) {
	if a == 255 {
		px[0], px[1], px[2], px[3] = clamp255(r), clamp255(g), clamp255(b), 255
		return
	}
	af := float64(a) / 255
	inv := 1 - af
	px[0] = clamp255(r*af + float64(px[0])*inv)
	px[1] = clamp255(g*af + float64(px[1])*inv)
	px[2] = clamp255(b*af + float64(px[2])*inv)
	px[3] = clamp255(float64(a) + float64(px[3])*inv)
}

func clampInt(v float64, lo, hi int) int {
	if v < float64(lo) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
