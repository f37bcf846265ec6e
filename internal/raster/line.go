package raster

import (
	"image/color"
	"math"
)

// depthBias lets lines drawn on a surface win the depth test against it.
const depthBias = 1e-4

// RasterizeLine draws a depth-tested, one-pixel line between two projected
// vertices. Depth is interpolated in 1/w like triangles.
func RasterizeLine(fb *FrameBuffer, a, b ScreenVertex, c color.NRGBA) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	// Lines far outside the viewport would otherwise loop for a long time.
	if limit := 4 * (fb.Width + fb.Height); steps > limit {
		steps = limit
	}

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Floor(a.X + dx*t))
		y := int(math.Floor(a.Y + dy*t))
		if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
			continue
		}

		z := a.InvW + (b.InvW-a.InvW)*t
		idx := y*fb.Width + x
		if z+depthBias*z < fb.ZBuf[idx] {
			continue
		}
		fb.ZBuf[idx] = z
		blendPixel(fb.Color[idx*4:idx*4+4], float64(c.R), float64(c.G), float64(c.B), c.A)
	}
}
