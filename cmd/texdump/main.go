package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"golang.org/x/image/draw"

	"model-asset-preview/internal/export"
	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/texture"
)

// faceColors outlines each face direction in its own color.
var faceColors = map[geo.Direction]color.NRGBA{
	geo.North: {R: 0xff, A: 0xff},
	geo.East:  {G: 0xff, A: 0xff},
	geo.South: {B: 0xff, A: 0xff},
	geo.West:  {R: 0xff, G: 0xff, A: 0xff},
	geo.Up:    {R: 0xff, B: 0xff, A: 0xff},
	geo.Down:  {G: 0xff, B: 0xff, A: 0xff},
}

func main() {
	identifier := flag.String("id", "", "Geometry identifier (default: first in file)")
	texPath := flag.String("texture", "", "Texture to draw under the layout")
	out := flag.String("out", "uv.png", "Output image")
	zoom := flag.Int("zoom", 8, "Pixels per texel")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: texdump [-texture file] [-out uv.png] geometry.json")
		os.Exit(2)
	}

	g, err := geo.Load(flag.Arg(0), *identifier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}

	img, err := dumpLayout(g, *texPath, max(*zoom, 1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := export.Encode(f, img, export.PNG); err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK  %s -> %s  (%dx%d texels)\n", g.Description.Identifier, *out,
		g.Description.TextureWidth, g.Description.TextureHeight)
}

// dumpLayout draws the texture, scaled up, with every face's UV rectangle
// outlined on top.
func dumpLayout(g *geo.Geometry, texPath string, zoom int) (*image.NRGBA, error) {
	tw, th := g.Description.TextureWidth, g.Description.TextureHeight
	dst := image.NewNRGBA(image.Rect(0, 0, tw*zoom, th*zoom))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}), image.Point{}, draw.Src)

	if texPath != "" {
		tex, err := texture.LoadTexture(texPath)
		if err != nil {
			return nil, err
		}
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), tex, tex.Bounds(), draw.Over, nil)
	}

	for _, part := range geo.Build(g) {
		for _, q := range part.Quads {
			u0, v0 := math.Inf(1), math.Inf(1)
			u1, v1 := math.Inf(-1), math.Inf(-1)
			for _, uv := range q.UV {
				u0, u1 = math.Min(u0, uv[0]), math.Max(u1, uv[0])
				v0, v1 = math.Min(v0, uv[1]), math.Max(v1, uv[1])
			}
			r := image.Rect(
				int(math.Round(u0*float64(tw*zoom))),
				int(math.Round(v0*float64(th*zoom))),
				int(math.Round(u1*float64(tw*zoom)))-1,
				int(math.Round(v1*float64(th*zoom)))-1,
			)
			outline(dst, r, faceColors[q.Dir])
		}
	}
	return dst, nil
}

func outline(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for x := r.Min.X; x <= r.Max.X; x++ {
		dst.SetNRGBA(x, r.Min.Y, c)
		dst.SetNRGBA(x, r.Max.Y, c)
	}
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		dst.SetNRGBA(r.Min.X, y, c)
		dst.SetNRGBA(r.Max.X, y, c)
	}
}
