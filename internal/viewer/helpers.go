package viewer

import (
	"image/color"

	"model-asset-preview/internal/mathutil"
	"model-asset-preview/internal/raster"
)

const (
	axesLength    = 50
	gridSize      = 20
	gridDivisions = 20
)

var (
	axisX      = color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}
	axisY      = color.NRGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}
	axisZ      = color.NRGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}
	gridCenter = color.NRGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	gridLine   = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	boxColor   = color.NRGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}
)

// helperLines returns the axes, the ground grid and the edges of box.
func helperLines(box mathutil.Box3) []raster.Line {
	lines := []raster.Line{
		{B: mathutil.Vec3{axesLength, 0, 0}, Color: axisX},
		{B: mathutil.Vec3{0, axesLength, 0}, Color: axisY},
		{B: mathutil.Vec3{0, 0, axesLength}, Color: axisZ},
	}
	lines = append(lines, gridLines()...)
	if !box.IsEmpty() {
		lines = append(lines, boxLines(box)...)
	}
	return lines
}

// gridLines is a square grid on y = 0 centered on the origin.
func gridLines() []raster.Line {
	half := float64(gridSize) / 2
	step := float64(gridSize) / gridDivisions
	out := make([]raster.Line, 0, 2*(gridDivisions+1))
	for i := 0; i <= gridDivisions; i++ {
		k := -half + float64(i)*step
		c := gridLine
		if i == gridDivisions/2 {
			c = gridCenter
		}
		out = append(out,
			raster.Line{A: mathutil.Vec3{-half, 0, k}, B: mathutil.Vec3{half, 0, k}, Color: c},
			raster.Line{A: mathutil.Vec3{k, 0, -half}, B: mathutil.Vec3{k, 0, half}, Color: c},
		)
	}
	return out
}

func boxLines(b mathutil.Box3) []raster.Line {
	var corner [8]mathutil.Vec3
	for i := range corner {
		p := b.Min
		if i&1 != 0 {
			p[0] = b.Max[0]
		}
		if i&2 != 0 {
			p[1] = b.Max[1]
		}
		if i&4 != 0 {
			p[2] = b.Max[2]
		}
		corner[i] = p
	}
	out := make([]raster.Line, 0, 12)
	for i := range corner {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				out = append(out, raster.Line{A: corner[i], B: corner[i|bit], Color: boxColor})
			}
		}
	}
	return out
}
