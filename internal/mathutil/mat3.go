package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mat3 is a 3×3 linear map stored row-major: m[r*3+c]. mathgl is
// column-major, so conversions transpose.
type Mat3 [9]float64

func mat3(m mgl64.Mat3) Mat3 { return Mat3(m.Transpose()) }

// GL converts m to mathgl's column-major layout.
func (m Mat3) GL() mgl64.Mat3 { return mgl64.Mat3(m).Transpose() }

func Mat3Identity() Mat3 { return Mat3(mgl64.Ident3()) }

// Mat3Diag is a per-axis scale.
func Mat3Diag(x, y, z float64) Mat3 {
	return Mat3(mgl64.Diag3(mgl64.Vec3{x, y, z}))
}

// Mat3Mul returns a × b: b is applied first.
func Mat3Mul(a, b Mat3) Mat3 { return mat3(a.GL().Mul3(b.GL())) }

// MulVec3 applies m to v.
func (m Mat3) MulVec3(v Vec3) Vec3 { return Vec3(m.GL().Mul3x1(v.GL())) }

// Det is negative for maps that mirror.
func (m Mat3) Det() float64 { return m.GL().Det() }

func (m Mat3) Transpose() Mat3 { return mat3(m.GL().Transpose()) }

// ApproxEqual reports whether every element differs by at most eps.
// mathgl's threshold compare is relative, which is too strict near zero.
func (m Mat3) ApproxEqual(o Mat3, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}
