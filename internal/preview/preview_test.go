package preview

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bg = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xff}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestLayoutOffsets(t *testing.T) {
	got := Layout(2, 2)
	want := []Placement{
		{Source: SourceRender, Index: 0, X: 0, Y: 200, W: 800, H: 400},
		{Source: SourceRender, Index: 1, X: 1300, Y: 0, W: 400, H: 200},
		{Source: SourceRender, Index: 2, X: 1300, Y: 400, W: 400, H: 200},
		{Source: SourceRender, Index: 3, X: 1300, Y: 800, W: 400, H: 200},
		{Source: SourceRender, Index: 4, X: 2100, Y: 0, W: 400, H: 200},
		{Source: SourceRender, Index: 5, X: 2100, Y: 400, W: 400, H: 200},
		{Source: SourceRender, Index: 6, X: 2100, Y: 800, W: 400, H: 200},
		{Source: SourceTexture, X: 800, Y: 400, W: 400, H: 400},
		{Source: SourceLogo, X: 2700, Y: 1100, W: 100, H: 100},
	}
	assert.Equal(t, want, got)
}

func TestLayoutCountsAndDeterminism(t *testing.T) {
	for _, res := range []float64{0.5, 1, 10} {
		l := Layout(res, 16.0/9)
		renders, statics := 0, 0
		for _, p := range l {
			if p.Source == SourceRender {
				renders++
			} else {
				statics++
			}
		}
		assert.Equal(t, Renders, renders)
		assert.Equal(t, 2, statics)
		assert.Equal(t, l, Layout(res, 16.0/9))
	}
}

func TestCanvasSize(t *testing.T) {
	w, h := CanvasSize(10)
	assert.Equal(t, 14000, w)
	assert.Equal(t, 6000, h)

	w, h = CanvasSize(0.25)
	assert.Equal(t, 350, w)
	assert.Equal(t, 150, h)
}

func TestNewCanvasRejectsBadResolution(t *testing.T) {
	for _, res := range []float64{0, -1, 1e6} {
		_, err := NewCanvas(res)
		assert.True(t, errors.Is(err, ErrCanvas), "res %v", res)
	}
}

func card(res float64) Card {
	renders := make([]image.Image, Renders)
	for i := range renders {
		renders[i] = solid(20, 10, color.NRGBA{R: uint8(10 * (i + 1)), A: 255})
	}
	return Card{
		Res:        res,
		Aspect:     2,
		Renders:    renders,
		Texture:    solid(4, 4, color.NRGBA{G: 200, A: 255}),
		Logo:       solid(2, 2, color.NRGBA{B: 200, A: 255}),
		Background: bg,
	}
}

func TestComposePlacesImages(t *testing.T) {
	img, err := Compose(card(1))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1400, 600), img.Bounds())

	assert.Equal(t, bg, img.NRGBAAt(0, 0))
	// main render: x 0..400, y 100..300
	assert.Equal(t, color.NRGBA{R: 10, A: 255}, img.NRGBAAt(200, 200))
	assert.Equal(t, bg, img.NRGBAAt(200, 350))
	// second column, last row: render 3 at y 400..500
	assert.Equal(t, color.NRGBA{R: 40, A: 255}, img.NRGBAAt(700, 450))
	// third column, first row: render 4
	assert.Equal(t, color.NRGBA{R: 50, A: 255}, img.NRGBAAt(1100, 50))
	assert.Equal(t, color.NRGBA{G: 200, A: 255}, img.NRGBAAt(500, 300))
	assert.Equal(t, color.NRGBA{B: 200, A: 255}, img.NRGBAAt(1399, 599))
}

func TestComposeBlendsTransparentRenders(t *testing.T) {
	c := card(1)
	c.Renders[0] = solid(20, 10, color.NRGBA{})
	img, err := Compose(c)
	require.NoError(t, err)
	assert.Equal(t, bg, img.NRGBAAt(200, 200))
}

func TestComposeCaption(t *testing.T) {
	c := card(1)
	c.Caption = "geometry.crate"
	img, err := Compose(c)
	require.NoError(t, err)

	lit := 0
	for y := 170; y < 183; y++ {
		for x := 400; x < 650; x++ {
			if img.NRGBAAt(x, y) != bg {
				lit++
			}
		}
	}
	assert.Greater(t, lit, 0)
	// nothing spills into the side render column
	assert.Equal(t, bg, img.NRGBAAt(640, 175))
}

func TestComposeValidates(t *testing.T) {
	c := card(1)
	c.Renders = c.Renders[:6]
	_, err := Compose(c)
	assert.Error(t, err)

	c = card(1)
	c.Aspect = 0
	_, err = Compose(c)
	assert.Error(t, err)

	c = card(0)
	_, err = Compose(c)
	assert.ErrorIs(t, err, ErrCanvas)
}
