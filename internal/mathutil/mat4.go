package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mat4 is an affine transform stored row-major, like Mat3. Bones and cubes
// compose these.
type Mat4 [16]float64

func mat4(m mgl64.Mat4) Mat4 { return Mat4(m.Transpose()) }

// GL converts m to mathgl's column-major layout.
func (m Mat4) GL() mgl64.Mat4 { return mgl64.Mat4(m).Transpose() }

func Mat4Identity() Mat4 { return Mat4(mgl64.Ident4()) }

// Mat4Mul returns a × b: b is applied first.
func Mat4Mul(a, b Mat4) Mat4 { return mat4(a.GL().Mul4(b.GL())) }

// MulPoint transforms a point (w = 1).
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3(m.GL().Mul4x1(v.GL().Vec4(1)).Vec3())
}

// FromMat3Translation is the affine map p ↦ r·p + t.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	m := Mat4Identity()
	for row := 0; row < 3; row++ {
		copy(m[row*4:row*4+3], r[row*3:row*3+3])
		m[row*4+3] = t[row]
	}
	return m
}

// Translate returns a pure translation.
func Translate(t Vec3) Mat4 { return mat4(mgl64.Translate3D(t[0], t[1], t[2])) }

// AroundPivot returns T(pivot) × L × T(-pivot): the linear map l applied
// about pivot instead of the origin.
func AroundPivot(l Mat3, pivot Vec3) Mat4 {
	return FromMat3Translation(l, pivot.Sub(l.MulVec3(pivot)))
}

// IsIdentity reports whether m is the identity within 1e-8.
func (m Mat4) IsIdentity() bool {
	id := Mat4Identity()
	for i := range m {
		if math.Abs(m[i]-id[i]) > 1e-8 {
			return false
		}
	}
	return true
}
