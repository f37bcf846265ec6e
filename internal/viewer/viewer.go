// Package viewer renders a model on demand, frames it with an orbiting
// camera and captures multi-angle preview cards.
//
// A Viewer owns its renderer, camera, controls and model. Renders are pulled:
// resizes, control changes and animation ticks request a render, and at most
// one is scheduled per frame.
package viewer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"model-asset-preview/internal/anim"
	"model-asset-preview/internal/camera"
	"model-asset-preview/internal/export"
	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/logging"
	"model-asset-preview/internal/mathutil"
	"model-asset-preview/internal/model"
	"model-asset-preview/internal/raster"
	"model-asset-preview/internal/texture"
)

// DefaultBackground is the scene and card background, #121212.
var DefaultBackground = color.NRGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xff}

// DefaultLogo is the logo asset drawn in the card corner.
const DefaultLogo = "gm1.webp"

// untextured is the face color when a model has no texture.
var untextured = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}

// Options configures a Viewer. Zero values pick the defaults.
type Options struct {
	// Antialias enables supersampling, at Supersample× or 2× when unset.
	Antialias   bool
	Supersample int

	// Width and Height, when positive, fix the canvas size instead of
	// following the window.
	Width  int
	Height int

	Shading    raster.Shading
	Filter     raster.Filter
	Background color.NRGBA

	// LogoPath is the card logo. Empty means DefaultLogo.
	LogoPath string
	// Images resolves the texture and logo. Nil means a fresh texture.Cache.
	Images texture.Resolver
	// Animations become playable on the model.
	Animations anim.Set
	// Clock drives animation timing. Nil means time.Now.
	Clock func() time.Time
	// Opener receives finished preview cards. Nil writes PNGs to the
	// working directory.
	Opener export.Opener
	// Caption prints the geometry identifier on cards.
	Caption bool
}

// Stats is a snapshot of the viewer's render bookkeeping.
type Stats struct {
	Renders       int
	Pending       bool
	Width, Height int
}

// Viewer displays one model. Its methods are safe for concurrent use;
// scheduled renders run on whatever goroutine drives the Scheduler.
type Viewer struct {
	mu sync.Mutex

	win   Window
	sched Scheduler
	opts  Options

	renderer *raster.Renderer
	cam      *camera.Perspective
	controls *camera.OrbitControls
	model    *model.Model

	texturePath string
	helpers     bool

	renderingRequested bool
	frameQueued        bool
	renders            int
}

// New builds a viewer for g textured from texturePath, binds it to win and
// sched, and sizes it without rendering.
func New(win Window, sched Scheduler, g *geo.Geometry, texturePath string, opts Options) (*Viewer, error) {
	if opts.Supersample < 2 {
		opts.Supersample = 1
		if opts.Antialias {
			opts.Supersample = 2
		}
	} else if !opts.Antialias {
		opts.Supersample = 1
	}
	if opts.Background == (color.NRGBA{}) {
		opts.Background = DefaultBackground
	}
	if opts.LogoPath == "" {
		opts.LogoPath = DefaultLogo
	}
	if opts.Images == nil {
		opts.Images = texture.NewCache()
	}
	if opts.Opener == nil {
		opts.Opener = export.FileOpener{Dir: ".", Format: export.PNG}
	}

	mopts := []model.Option{model.WithAnimations(opts.Animations)}
	if opts.Clock != nil {
		mopts = append(mopts, model.WithClock(opts.Clock))
	}
	m, err := model.Load(g, texturePath, opts.Images, mopts...)
	if err != nil {
		return nil, fmt.Errorf("viewer: %w", err)
	}

	cam := camera.NewPerspective(camera.DefaultFOV, 1, camera.DefaultNear, camera.DefaultFar)
	cam.Position = mgl64.Vec3{-20, 20, -20}
	cam.LookAt(mgl64.Vec3{})

	v := &Viewer{
		win:   win,
		sched: sched,
		opts:  opts,
		renderer: raster.NewRenderer(raster.Options{
			Supersample: opts.Supersample,
			Shading:     opts.Shading,
			Filter:      opts.Filter,
		}),
		cam:         cam,
		controls:    camera.NewOrbitControls(cam),
		model:       m,
		texturePath: texturePath,
	}

	win.OnResize(func() { v.OnResize(true) })
	v.controls.OnChange(func() { v.requestRendering(false) })

	v.mu.Lock()
	v.onResize(false)
	v.mu.Unlock()

	logging.Logger().Debug("viewer created",
		"geometry", g.Description.Identifier,
		"texture", texturePath,
		"supersample", opts.Supersample)
	return v, nil
}

// size is the configured size, falling back to the window per axis.
func (v *Viewer) size() (int, int) {
	w, h := v.win.InnerSize()
	if v.opts.Width > 0 {
		w = v.opts.Width
	}
	if v.opts.Height > 0 {
		h = v.opts.Height
	}
	return w, h
}

// RequestRendering renders now when immediate is set, skipping the animation
// tick. Otherwise it schedules one render for the next frame unless one is
// already pending.
func (v *Viewer) RequestRendering(immediate bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.requestRendering(immediate)
}

// requestRendering requires v.mu. Controls listeners call it from inside
// Update, which always runs under the lock.
func (v *Viewer) requestRendering(immediate bool) {
	if immediate {
		v.render(false)
		return
	}
	if v.renderingRequested {
		return
	}
	v.renderingRequested = true
	v.frameQueued = true
	v.sched.RequestFrame(v.frame)
}

func (v *Viewer) frame() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frameQueued = false
	v.render(true)
}

// render requires v.mu.
func (v *Viewer) render(checkShouldTick bool) {
	v.controls.Update()
	v.renderer.Render(v.scene(), v.cam)
	// A queued frame keeps the request pending so later requests join it.
	if !v.frameQueued {
		v.renderingRequested = false
	}
	v.renders++

	if checkShouldTick && v.model.ShouldTick() {
		v.model.Tick()
		v.requestRendering(false)
	}
}

func (v *Viewer) scene() *raster.Scene {
	s := &raster.Scene{
		Background: v.opts.Background,
		Meshes: []raster.Mesh{{
			Quads:   v.model.Faces(),
			Texture: v.model.Texture(),
			Color:   untextured,
		}},
	}
	if v.helpers {
		s.Lines = helperLines(v.model.BoundingBox())
	}
	return s
}

// OnResize matches the canvas, renderer and camera aspect to the configured
// or window size, then optionally requests a render.
func (v *Viewer) OnResize(requestRendering bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onResize(requestRendering)
}

func (v *Viewer) onResize(requestRendering bool) {
	v.renderer.SetSize(v.size())
	// The renderer clamps empty sizes to one pixel; the aspect follows it.
	w, h := v.renderer.Size()
	v.cam.Aspect = float64(w) / float64(h)
	v.cam.UpdateProjectionMatrix()

	if requestRendering {
		v.requestRendering(false)
	}
}

// AddHelpers shows world axes, a ground grid and the model's bounding box.
func (v *Viewer) AddHelpers() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.helpers = true
	v.requestRendering(false)
}

// Fit describes a camera placement chosen by PositionCamera.
type Fit struct {
	Sphere   mathutil.Sphere
	Distance float64
	Position mgl64.Vec3
}

// PositionCamera frames the model's bounding sphere. scale multiplies the
// field of view to leave a margin; rotate first turns the model to face the
// camera. The camera sits on the (1, 1, 1) diagonal at √2·distance per axis.
func (v *Viewer) PositionCamera(scale float64, rotate bool) Fit {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.positionCamera(scale, rotate)
}

func (v *Viewer) positionCamera(scale float64, rotate bool) Fit {
	if rotate {
		v.model.SetRotation(0, math.Pi, 0)
	}
	sphere := v.model.BoundingBox().BoundingSphere()

	angular := v.cam.FOV * math.Pi / 180 * scale
	distance := sphere.Radius / math.Tan(angular/2)
	l := math.Sqrt(distance*distance + distance*distance)

	v.cam.Position = mgl64.Vec3{l, l, l}
	v.controls.Update()

	center := mgl64.Vec3(sphere.Center)
	v.cam.LookAt(center)
	v.controls.Target = center

	v.cam.UpdateProjectionMatrix()

	return Fit{Sphere: sphere, Distance: distance, Position: v.cam.Position}
}

// Model runs fn with the model under the viewer lock and requests a render.
func (v *Viewer) Model(fn func(m *model.Model)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.model)
	v.requestRendering(false)
}

// Interact runs fn with the orbit controls under the viewer lock. Control
// moves request their own render.
func (v *Viewer) Interact(fn func(c *camera.OrbitControls)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.controls)
}

// Camera returns a copy of the camera state.
func (v *Viewer) Camera() camera.Perspective {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.cam
}

// Canvas returns a copy of the last rendered frame.
func (v *Viewer) Canvas() *image.NRGBA {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renderer.Snapshot()
}

// CopyCanvas copies the last frame into dst when the sizes match, avoiding
// an allocation per frame for window hosts.
func (v *Viewer) CopyCanvas(dst []byte) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	src := v.renderer.Image().Pix
	if len(dst) != len(src) {
		return false
	}
	copy(dst, src)
	return true
}

// Stats returns render counters and the canvas size.
func (v *Viewer) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	w, h := v.renderer.Size()
	return Stats{
		Renders: v.renders,
		Pending: v.renderingRequested,
		Width:   w,
		Height:  h,
	}
}
