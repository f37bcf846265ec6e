// Package camera provides the perspective camera and the orbit controls that
// move it around a target point.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Defaults for a freshly constructed viewer camera.
const (
	DefaultFOV  = 70
	DefaultNear = 0.1
	DefaultFar  = 1000
)

// Perspective is a pinhole camera with a vertical field of view in degrees.
// Call UpdateProjectionMatrix after changing FOV, Aspect, Near or Far.
type Perspective struct {
	FOV    float64
	Aspect float64
	Near   float64
	Far    float64

	Position mgl64.Vec3
	Up       mgl64.Vec3

	target mgl64.Vec3
	proj   mgl64.Mat4
}

// NewPerspective returns a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float64) *Perspective {
	c := &Perspective{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     mgl64.Vec3{0, 1, 0},
		target: mgl64.Vec3{0, 0, -1},
	}
	c.UpdateProjectionMatrix()
	return c
}

// LookAt points the camera at t. The camera keeps facing t as it moves.
func (c *Perspective) LookAt(t mgl64.Vec3) {
	c.target = t
}

// Target returns the point the camera faces.
func (c *Perspective) Target() mgl64.Vec3 {
	return c.target
}

// UpdateProjectionMatrix recomputes the projection from the lens settings.
func (c *Perspective) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		aspect = 1
	}
	c.proj = mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Projection returns the cached projection matrix.
func (c *Perspective) Projection() mgl64.Mat4 {
	return c.proj
}

// View returns the world-to-camera matrix.
func (c *Perspective) View() mgl64.Mat4 {
	up := c.Up
	dir := c.target.Sub(c.Position)
	if dir.Len() < 1e-12 {
		dir = mgl64.Vec3{0, 0, -1}
	}
	// Looking straight along up leaves the roll undefined.
	if dir.Normalize().Cross(up.Normalize()).Len() < 1e-9 {
		up = mgl64.Vec3{0, 0, -1}
	}
	return mgl64.LookAtV(c.Position, c.Position.Add(dir), up)
}

// ViewProjection returns Projection × View.
func (c *Perspective) ViewProjection() mgl64.Mat4 {
	return c.proj.Mul4(c.View())
}

// Project maps a world point to normalized device coordinates. w is the
// clip-space w; points with w <= 0 are behind the camera.
func (c *Perspective) Project(p mgl64.Vec3) (ndc mgl64.Vec3, w float64) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	w = clip.W()
	if w == 0 {
		return mgl64.Vec3{}, 0
	}
	return clip.Vec3().Mul(1 / w), w
}
