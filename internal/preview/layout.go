// Package preview lays out and composites the multi-angle preview card.
package preview

import (
	"image"
	"math"
)

// Card geometry in units of the resolution multiplier.
const (
	CardWidth  = 1400
	CardHeight = 600

	// Renders is the number of model snapshots on a card.
	Renders = 7
)

// Source identifies what a placement draws.
type Source int

const (
	// SourceRender draws model snapshot Placement.Index.
	SourceRender Source = iota
	SourceTexture
	SourceLogo
)

// Placement is a destination rectangle on the card in pixels. Coordinates
// are fractional like a 2D canvas drawImage call.
type Placement struct {
	Source Source
	Index  int
	X, Y   float64
	W, H   float64
}

// Rect rounds the placement to whole pixels.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(
		int(math.Round(p.X)),
		int(math.Round(p.Y)),
		int(math.Round(p.X+p.W)),
		int(math.Round(p.Y+p.H)),
	)
}

// CanvasSize returns the card size in pixels for res. Fractions truncate.
func CanvasSize(res float64) (int, int) {
	return int(CardWidth * res), int(CardHeight * res)
}

// Layout returns where each image goes for a card at res whose renders
// have the given width/height aspect. The order is the draw order: the main
// render, two columns of three renders, the texture swatch and the logo.
func Layout(res, aspect float64) []Placement {
	w, h := CanvasSize(res)
	out := make([]Placement, 0, Renders+2)

	out = append(out, Placement{
		Source: SourceRender, Index: 0,
		X: 0, Y: 100 * res,
		W: 400 * res, H: 400 * res / aspect,
	})
	for i := 0; i < 3; i++ {
		out = append(out, Placement{
			Source: SourceRender, Index: i + 1,
			X: 650 * res, Y: float64(i) * 200 * res,
			W: 200 * res, H: 200 * res / aspect,
		})
	}
	for i := 0; i < 3; i++ {
		out = append(out, Placement{
			Source: SourceRender, Index: i + 4,
			X: 1050 * res, Y: float64(i) * 200 * res,
			W: 200 * res, H: 200 * res / aspect,
		})
	}

	out = append(out,
		Placement{Source: SourceTexture, X: 400 * res, Y: 200 * res, W: 200 * res, H: 200 * res},
		Placement{Source: SourceLogo, X: float64(w) - 50*res, Y: float64(h) - 50*res, W: 50 * res, H: 50 * res},
	)
	return out
}
