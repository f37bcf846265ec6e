package raster

import (
	"image"

	"github.com/go-gl/mathgl/mgl64"

	"model-asset-preview/internal/camera"
	"model-asset-preview/internal/mathutil"
)

// Options configures a Renderer.
type Options struct {
	// Supersample renders at this multiple of the output size and filters
	// down; values below 2 disable it.
	Supersample int
	Shading     Shading
	Filter      Filter
	// Ambient is the ambient light intensity. Zero means 1.
	Ambient float64
}

// Renderer draws a Scene from a camera into an output image that persists
// between renders, so it can be read back at any time.
type Renderer struct {
	opts   Options
	light  LightConfig
	sample func(tex *image.NRGBA, u, v float64) (r, g, b, a uint8)

	width, height int
	fb            *FrameBuffer
	out           *image.NRGBA
	draws         int
}

// NewRenderer returns a renderer with a 1×1 output.
func NewRenderer(opts Options) *Renderer {
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.Ambient <= 0 {
		opts.Ambient = 1
	}
	r := &Renderer{
		opts:   opts,
		light:  DefaultLightConfig(),
		sample: opts.Filter.Sampler(),
	}
	r.SetSize(1, 1)
	return r
}

// SetSize resizes the output. The contents are cleared.
func (r *Renderer) SetSize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if r.out != nil && w == r.width && h == r.height {
		return
	}
	r.width, r.height = w, h
	ss := r.opts.Supersample
	r.fb = NewFrameBuffer(w*ss, h*ss)
	r.out = image.NewNRGBA(image.Rect(0, 0, w, h))
}

// Size returns the output size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// Draws returns how many times Render has run.
func (r *Renderer) Draws() int {
	return r.draws
}

// Image returns the output image. It is overwritten by the next Render.
func (r *Renderer) Image() *image.NRGBA {
	return r.out
}

// Snapshot returns a copy of the current output.
func (r *Renderer) Snapshot() *image.NRGBA {
	cp := image.NewNRGBA(r.out.Rect)
	copy(cp.Pix, r.out.Pix)
	return cp
}

// Render draws s as seen by cam.
func (r *Renderer) Render(s *Scene, cam *camera.Perspective) {
	r.draws++
	fb := r.fb
	fb.Clear(s.Background)

	vp := cam.ViewProjection()
	fw, fh := float64(fb.Width), float64(fb.Height)

	project := func(p mathutil.Vec3) (ScreenVertex, bool) {
		clip := vp.Mul4x1(mgl64.Vec4{p[0], p[1], p[2], 1})
		w := clip.W()
		if w <= 1e-6 {
			return ScreenVertex{}, false
		}
		iw := 1 / w
		return ScreenVertex{
			X:    (clip.X()*iw + 1) * 0.5 * fw,
			Y:    (1 - clip.Y()*iw) * 0.5 * fh,
			InvW: iw,
		}, true
	}

	for mi := range s.Meshes {
		m := &s.Meshes[mi]
		paint := Paint{
			Tex:     m.Texture,
			Sample:  r.sample,
			Color:   m.Color,
			Shading: r.opts.Shading,
			Light:   &r.light,
		}

		for qi := range m.Quads {
			q := &m.Quads[qi]

			var sv [4]ScreenVertex
			visible := true
			for i := range sv {
				v, ok := project(q.Pos[i])
				if !ok {
					visible = false
					break
				}
				v.U, v.V = q.UV[i][0], q.UV[i][1]
				sv[i] = v
			}
			// Quads crossing the near plane are dropped rather than clipped.
			if !visible {
				continue
			}

			paint.Shade = r.shade(q.Pos)
			RasterizeTriangle(fb, [3]ScreenVertex{sv[0], sv[1], sv[2]}, &paint)
			RasterizeTriangle(fb, [3]ScreenVertex{sv[0], sv[2], sv[3]}, &paint)
		}
	}

	for _, l := range s.Lines {
		a, okA := project(l.A)
		b, okB := project(l.B)
		if okA && okB {
			RasterizeLine(fb, a, b, l.Color)
		}
	}

	if r.opts.Supersample > 1 {
		full := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
		fb.CopyTo(full)
		small := Downsample(full, r.width, r.height)
		copy(r.out.Pix, small.Pix)
		return
	}
	fb.CopyTo(r.out)
}

func (r *Renderer) shade(pos [4]mathutil.Vec3) float64 {
	if r.opts.Shading != ShadingStudio {
		return r.opts.Ambient
	}
	n := pos[1].Sub(pos[0]).Cross(pos[2].Sub(pos[0])).Normalize()
	return r.light.ComputeShade(n)
}
