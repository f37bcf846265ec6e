package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// MaxPixels bounds the card area; larger cards cannot be allocated.
const MaxPixels = 1 << 28

// ErrCanvas means the card canvas could not be created for the requested
// resolution.
var ErrCanvas = errors.New("preview: cannot create canvas")

// Card is everything needed to composite one preview.
type Card struct {
	Res        float64
	Aspect     float64
	Renders    []image.Image // exactly Renders snapshots, in capture order
	Texture    image.Image
	Logo       image.Image
	Background color.NRGBA
	// Caption, when set, is printed above the texture swatch.
	Caption string
}

// CheckCanvas reports ErrCanvas when a card at res would be empty or too
// large to allocate.
func CheckCanvas(res float64) error {
	if math.IsNaN(res) || res <= 0 || res*res*CardWidth*CardHeight > MaxPixels {
		return fmt.Errorf("%w: res %v", ErrCanvas, res)
	}
	w, h := CanvasSize(res)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrCanvas, w, h)
	}
	return nil
}

// NewCanvas allocates a card canvas for res, or returns ErrCanvas.
func NewCanvas(res float64) (*image.NRGBA, error) {
	if err := CheckCanvas(res); err != nil {
		return nil, err
	}
	w, h := CanvasSize(res)
	return image.NewNRGBA(image.Rect(0, 0, w, h)), nil
}

// Compose draws the card. Images are scaled with nearest-neighbour sampling
// and composited source-over onto the background.
func Compose(c Card) (*image.NRGBA, error) {
	if len(c.Renders) != Renders {
		return nil, fmt.Errorf("preview: want %d renders, got %d", Renders, len(c.Renders))
	}
	if c.Aspect <= 0 || math.IsNaN(c.Aspect) || math.IsInf(c.Aspect, 0) {
		return nil, fmt.Errorf("preview: invalid aspect %v", c.Aspect)
	}

	dst, err := NewCanvas(c.Res)
	if err != nil {
		return nil, err
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c.Background), image.Point{}, draw.Src)

	for _, p := range Layout(c.Res, c.Aspect) {
		var src image.Image
		switch p.Source {
		case SourceRender:
			src = c.Renders[p.Index]
		case SourceTexture:
			src = c.Texture
		case SourceLogo:
			src = c.Logo
		}
		if src == nil {
			continue
		}
		r := p.Rect().Intersect(dst.Bounds())
		if r.Empty() {
			continue
		}
		draw.NearestNeighbor.Scale(dst, p.Rect(), src, src.Bounds(), draw.Over, nil)
	}

	if c.Caption != "" {
		drawCaption(dst, c.Caption, c.Res)
	}
	return dst, nil
}

// drawCaption prints text in the fixed 7x13 face, scaled up by res with
// nearest-neighbour so the glyphs stay crisp, and clipped to the column
// between the main render and the side renders.
func drawCaption(dst *image.NRGBA, text string, res float64) {
	face := basicfont.Face7x13
	adv := font.MeasureString(face, text).Ceil()
	if adv <= 0 {
		return
	}

	glyphs := image.NewNRGBA(image.Rect(0, 0, adv, face.Height))
	d := font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	target := image.Rect(
		int(400*res),
		int(170*res),
		int(400*res+float64(adv)*res),
		int(170*res+float64(face.Height)*res),
	)
	clip := image.Rect(int(400*res), 0, int(650*res), dst.Bounds().Dy())
	sub, ok := dst.SubImage(clip).(*image.NRGBA)
	if !ok {
		return
	}
	draw.NearestNeighbor.Scale(sub, target, glyphs, glyphs.Bounds(), draw.Over, nil)
}
