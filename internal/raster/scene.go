package raster

import (
	"image"
	"image/color"

	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/mathutil"
)

// Mesh is a batch of world-space quads sharing one texture.
type Mesh struct {
	Quads   []geo.Quad
	Texture *image.NRGBA
	Color   color.NRGBA // used where Texture is nil
}

// Line is a world-space segment, used for helpers.
type Line struct {
	A, B  mathutil.Vec3
	Color color.NRGBA
}

// Scene is everything one render draws.
type Scene struct {
	Background color.NRGBA
	Meshes     []Mesh
	Lines      []Line
}
