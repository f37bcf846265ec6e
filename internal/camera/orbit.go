package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const orbitEPS = 1e-6

// OrbitControls rotate, dolly and pan a camera around Target. Input methods
// accumulate deltas and apply them through Update, which notifies change
// listeners whenever the camera actually moved.
type OrbitControls struct {
	Target mgl64.Vec3

	Enabled     bool
	MinDistance float64
	MaxDistance float64
	MinPolar    float64
	MaxPolar    float64
	RotateSpeed float64
	ZoomSpeed   float64

	cam *Perspective

	dTheta, dPhi float64
	scale        float64
	pan          mgl64.Vec3

	lastPos    mgl64.Vec3
	lastTarget mgl64.Vec3
	listeners  []func()
}

// NewOrbitControls binds controls to cam with the target at the origin.
func NewOrbitControls(cam *Perspective) *OrbitControls {
	o := &OrbitControls{
		Enabled:     true,
		MaxDistance: math.Inf(1),
		MaxPolar:    math.Pi,
		RotateSpeed: 1,
		ZoomSpeed:   1,
		cam:         cam,
		scale:       1,
	}
	o.lastPos = cam.Position
	return o
}

// OnChange registers fn to run after every Update that moved the camera.
func (o *OrbitControls) OnChange(fn func()) {
	o.listeners = append(o.listeners, fn)
}

// Rotate orbits by the given azimuth and polar angles in radians, then updates.
func (o *OrbitControls) Rotate(azimuth, polar float64) {
	if !o.Enabled {
		return
	}
	o.dTheta -= azimuth * o.RotateSpeed
	o.dPhi -= polar * o.RotateSpeed
	o.Update()
}

// Zoom dollies toward the target when steps > 0 and away when steps < 0.
func (o *OrbitControls) Zoom(steps float64) {
	if !o.Enabled || steps == 0 {
		return
	}
	o.scale *= math.Pow(0.95, steps*o.ZoomSpeed)
	o.Update()
}

// Pan moves target and camera along the view plane by dx, dy world units.
func (o *OrbitControls) Pan(dx, dy float64) {
	if !o.Enabled {
		return
	}
	view := o.cam.View()
	right := mgl64.Vec3{view.At(0, 0), view.At(0, 1), view.At(0, 2)}
	up := mgl64.Vec3{view.At(1, 0), view.At(1, 1), view.At(1, 2)}
	o.pan = o.pan.Add(right.Mul(-dx)).Add(up.Mul(dy))
	o.Update()
}

// Update applies pending input, keeps the camera facing Target and reports
// whether the camera moved.
func (o *OrbitControls) Update() bool {
	offset := o.cam.Position.Sub(o.Target)

	radius := offset.Len()
	theta, phi := 0.0, math.Pi/2
	if radius > 1e-12 {
		theta = math.Atan2(offset.X(), offset.Z())
		phi = math.Acos(mgl64.Clamp(offset.Y()/radius, -1, 1))
	}

	theta += o.dTheta
	phi += o.dPhi
	phi = mgl64.Clamp(phi, math.Max(o.MinPolar, orbitEPS), math.Min(o.MaxPolar, math.Pi-orbitEPS))

	radius = mgl64.Clamp(radius*o.scale, o.MinDistance, o.MaxDistance)

	o.Target = o.Target.Add(o.pan)

	sinPhi := math.Sin(phi)
	offset = mgl64.Vec3{
		radius * sinPhi * math.Sin(theta),
		radius * math.Cos(phi),
		radius * sinPhi * math.Cos(theta),
	}
	o.cam.Position = o.Target.Add(offset)
	o.cam.LookAt(o.Target)

	o.dTheta, o.dPhi = 0, 0
	o.scale = 1
	o.pan = mgl64.Vec3{}

	moved := o.cam.Position.Sub(o.lastPos).LenSqr() > orbitEPS ||
		o.Target.Sub(o.lastTarget).LenSqr() > orbitEPS
	if !moved {
		return false
	}
	o.lastPos = o.cam.Position
	o.lastTarget = o.Target
	for _, fn := range o.listeners {
		fn()
	}
	return true
}
