package mathutil

import "github.com/go-gl/mathgl/mgl64"

// RotX, RotY and RotZ are right-handed rotations by a radians.
func RotX(a float64) Mat3 { return mat3(mgl64.Rotate3DX(a)) }
func RotY(a float64) Mat3 { return mat3(mgl64.Rotate3DY(a)) }
func RotZ(a float64) Mat3 { return mat3(mgl64.Rotate3DZ(a)) }

// EulerXYZ returns Rx(x) × Ry(y) × Rz(z), the order object rotations are
// set in.
func EulerXYZ(x, y, z float64) Mat3 {
	return Mat3Mul(Mat3Mul(RotX(x), RotY(y)), RotZ(z))
}

// EulerZYX returns Rz(z) × Ry(y) × Rx(x), the order geometry bones and cubes
// are authored in.
func EulerZYX(x, y, z float64) Mat3 {
	return Mat3Mul(Mat3Mul(RotZ(z), RotY(y)), RotX(x))
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 { return mgl64.DegToRad(d) }
