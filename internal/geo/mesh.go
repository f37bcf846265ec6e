package geo

import (
	"math"

	"model-asset-preview/internal/mathutil"
)

// Build converts every cube into textured quads in model space. Cube
// rotation is baked in; bone transforms are left to the skeleton.
func Build(g *Geometry) []Part {
	tw := float64(g.Description.TextureWidth)
	th := float64(g.Description.TextureHeight)

	var parts []Part
	for bi := range g.Bones {
		bone := &g.Bones[bi]
		for ci := range bone.Cubes {
			cube := &bone.Cubes[ci]
			quads := cubeQuads(cube, bone, tw, th)
			if len(quads) == 0 {
				continue
			}
			parts = append(parts, Part{Bone: bi, Quads: quads})
		}
	}
	return parts
}

// Rotation converts authored Euler degrees into a rotation matrix. X and Z
// turn clockwise in the authoring convention, hence the sign flips.
func Rotation(deg [3]float64) mathutil.Mat3 {
	return mathutil.EulerZYX(
		-mathutil.Deg2Rad(deg[0]),
		mathutil.Deg2Rad(deg[1]),
		-mathutil.Deg2Rad(deg[2]),
	)
}

func cubeQuads(c *Cube, bone *Bone, tw, th float64) []Quad {
	inflate := bone.Inflate
	if c.Inflate != nil {
		inflate = *c.Inflate
	}
	mirror := bone.Mirror
	if c.Mirror != nil {
		mirror = *c.Mirror
	}

	lo := mathutil.Vec3{c.Origin[0] - inflate, c.Origin[1] - inflate, c.Origin[2] - inflate}
	hi := mathutil.Vec3{
		c.Origin[0] + c.Size[0] + inflate,
		c.Origin[1] + c.Size[1] + inflate,
		c.Origin[2] + c.Size[2] + inflate,
	}

	rects := faceRects(c, mirror)

	var xf mathutil.Mat4
	rotated := c.Rotation != [3]float64{}
	if rotated {
		pivot := lo.Add(hi).Scale(0.5)
		if c.Pivot != nil {
			pivot = mathutil.Vec3(*c.Pivot)
		}
		xf = mathutil.AroundPivot(Rotation(c.Rotation), pivot)
	}

	quads := make([]Quad, 0, 6)
	for _, dir := range Directions {
		r, ok := rects[dir]
		if !ok || r.Size[0] == 0 || r.Size[1] == 0 {
			continue
		}

		q := Quad{Dir: dir, Pos: faceCorners(dir, lo, hi)}
		if rotated {
			for i := range q.Pos {
				q.Pos[i] = xf.MulPoint(q.Pos[i])
			}
		}

		u0, v0 := r.UV[0], r.UV[1]
		u1, v1 := u0+r.Size[0], v0+r.Size[1]
		if mirror {
			u0, u1 = u1, u0
		}
		q.UV = [4][2]float64{
			{u0 / tw, v0 / th},
			{u1 / tw, v0 / th},
			{u1 / tw, v1 / th},
			{u0 / tw, v1 / th},
		}
		quads = append(quads, q)
	}
	return quads
}

// faceRects resolves the texture rectangle of each face. Box UV follows the
// standard unwrap: a strip of east, north, west, south below up and down.
func faceRects(c *Cube, mirror bool) map[Direction]FaceUV {
	if c.UV.Faces != nil {
		return c.UV.Faces
	}

	var u, v float64
	if c.UV.Box != nil {
		u, v = c.UV.Box[0], c.UV.Box[1]
	}
	w := math.Floor(c.Size[0])
	h := math.Floor(c.Size[1])
	d := math.Floor(c.Size[2])

	rects := map[Direction]FaceUV{
		East:  {UV: [2]float64{u, v + d}, Size: [2]float64{d, h}},
		North: {UV: [2]float64{u + d, v + d}, Size: [2]float64{w, h}},
		West:  {UV: [2]float64{u + d + w, v + d}, Size: [2]float64{d, h}},
		South: {UV: [2]float64{u + d + w + d, v + d}, Size: [2]float64{w, h}},
		Up:    {UV: [2]float64{u + d, v}, Size: [2]float64{w, d}},
		Down:  {UV: [2]float64{u + d + w, v + d}, Size: [2]float64{w, -d}},
	}
	if mirror {
		rects[East], rects[West] = rects[West], rects[East]
	}
	return rects
}

// faceCorners returns the face corners top-left, top-right, bottom-right,
// bottom-left as seen from outside. East is +X, north is -Z.
func faceCorners(dir Direction, lo, hi mathutil.Vec3) [4]mathutil.Vec3 {
	x0, y0, z0 := lo[0], lo[1], lo[2]
	x1, y1, z1 := hi[0], hi[1], hi[2]

	switch dir {
	case North:
		return [4]mathutil.Vec3{{x1, y1, z0}, {x0, y1, z0}, {x0, y0, z0}, {x1, y0, z0}}
	case South:
		return [4]mathutil.Vec3{{x0, y1, z1}, {x1, y1, z1}, {x1, y0, z1}, {x0, y0, z1}}
	case East:
		return [4]mathutil.Vec3{{x1, y1, z1}, {x1, y1, z0}, {x1, y0, z0}, {x1, y0, z1}}
	case West:
		return [4]mathutil.Vec3{{x0, y1, z0}, {x0, y1, z1}, {x0, y0, z1}, {x0, y0, z0}}
	case Up:
		return [4]mathutil.Vec3{{x1, y1, z1}, {x0, y1, z1}, {x0, y1, z0}, {x1, y1, z0}}
	default: // Down
		return [4]mathutil.Vec3{{x1, y0, z0}, {x0, y0, z0}, {x0, y0, z1}, {x1, y0, z1}}
	}
}
