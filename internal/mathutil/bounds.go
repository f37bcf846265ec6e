package mathutil

import "math"

// Box3 is an axis-aligned bounding box. The zero value is not empty; use
// EmptyBox to start an accumulation.
type Box3 struct {
	Min, Max Vec3
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vec3
	Radius float64
}

// EmptyBox returns a box that contains nothing.
func EmptyBox() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether no point has been added.
func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Expand grows the box to contain p.
func (b Box3) Expand(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Center returns the box midpoint, or the origin for an empty box.
func (b Box3) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent per axis.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// BoundingSphere returns the sphere through the box corners: centered on the
// box with radius half its diagonal.
func (b Box3) BoundingSphere() Sphere {
	if b.IsEmpty() {
		return Sphere{Radius: -1}
	}
	return Sphere{Center: b.Center(), Radius: b.Size().Len() * 0.5}
}
