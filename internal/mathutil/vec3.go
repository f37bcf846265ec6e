// Package mathutil holds the value-type vectors and row-major matrices the
// model pipeline works in. Heavier operations go through mathgl.
package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a point or direction in model space.
type Vec3 [3]float64

// GL converts v for use with mathgl.
func (v Vec3) GL() mgl64.Vec3 { return mgl64.Vec3(v) }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3(v.GL().Add(o.GL())) }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3(v.GL().Sub(o.GL())) }

// Scale multiplies every component by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3(v.GL().Mul(s)) }

// Mul multiplies component-wise.
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]}
}

func (v Vec3) Dot(o Vec3) float64 { return v.GL().Dot(o.GL()) }
func (v Vec3) Cross(o Vec3) Vec3  { return Vec3(v.GL().Cross(o.GL())) }
func (v Vec3) Len() float64       { return v.GL().Len() }

// Normalize returns the unit vector along v, or zero for a (near) zero v.
func (v Vec3) Normalize() Vec3 {
	if v.Len() < 1e-12 {
		return Vec3{}
	}
	return Vec3(v.GL().Normalize())
}

// Min returns the component-wise minimum.
func (v Vec3) Min(o Vec3) Vec3 {
	for i := range v {
		v[i] = math.Min(v[i], o[i])
	}
	return v
}

// Max returns the component-wise maximum.
func (v Vec3) Max(o Vec3) Vec3 {
	for i := range v {
		v[i] = math.Max(v[i], o[i])
	}
	return v
}

// Lerp moves from v toward o by t; t = 1 yields o.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}
