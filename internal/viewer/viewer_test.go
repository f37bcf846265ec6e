package viewer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-asset-preview/internal/anim"
	"model-asset-preview/internal/camera"
	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/mathutil"
	"model-asset-preview/internal/model"
	"model-asset-preview/internal/preview"
)

// centeredCube is an 8-unit cube around the origin.
func centeredCube() *geo.Geometry {
	return &geo.Geometry{
		Description: geo.Description{Identifier: "geometry.cube", TextureWidth: 32, TextureHeight: 16},
		Bones: []geo.Bone{{
			Name: "root",
			Cubes: []geo.Cube{{
				Origin: [3]float64{-4, -4, -4},
				Size:   [3]float64{8, 8, 8},
				UV:     geo.UV{Box: &[2]float64{0, 0}},
			}},
		}},
	}
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

type images map[string]*image.NRGBA

func (m images) Resolve(path string) (*image.NRGBA, error) {
	if img, ok := m[path]; ok {
		return img, nil
	}
	return nil, errors.New("not found")
}

type recordingOpener struct {
	mu    sync.Mutex
	names []string
	cards []image.Image
}

func (o *recordingOpener) Open(_ context.Context, name string, img image.Image) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
	o.cards = append(o.cards, img)
	return name + ".png", nil
}

var (
	green = color.NRGBA{G: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
)

func testAssets() images {
	return images{
		"cube.png":   solid(32, 16, green),
		DefaultLogo: solid(8, 8, blue),
	}
}

type fixture struct {
	v      *Viewer
	win    *HeadlessWindow
	sched  *ManualScheduler
	opener *recordingOpener
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	f := fixture{
		win:    NewHeadlessWindow(80, 40),
		sched:  &ManualScheduler{},
		opener: &recordingOpener{},
	}
	if opts.Images == nil {
		opts.Images = testAssets()
	}
	if opts.Opener == nil {
		opts.Opener = f.opener
	}
	v, err := New(f.win, f.sched, centeredCube(), "cube.png", opts)
	require.NoError(t, err)
	f.v = v
	return f
}

func TestNewDoesNotRender(t *testing.T) {
	f := newFixture(t, Options{})
	st := f.v.Stats()
	assert.Equal(t, 0, st.Renders)
	assert.False(t, st.Pending)
	assert.Equal(t, 0, f.sched.Pending())
}

func TestNewFailsOnMissingTexture(t *testing.T) {
	_, err := New(NewHeadlessWindow(8, 8), &ManualScheduler{}, centeredCube(), "missing.png", Options{Images: images{}})
	assert.Error(t, err)
}

func TestRequestRenderingCoalescesPerFrame(t *testing.T) {
	f := newFixture(t, Options{})

	for i := 0; i < 5; i++ {
		f.v.RequestRendering(false)
	}
	assert.Equal(t, 1, f.sched.Pending())
	assert.True(t, f.v.Stats().Pending)

	assert.Equal(t, 1, f.sched.Flush())
	st := f.v.Stats()
	assert.Equal(t, 1, st.Renders)
	assert.False(t, st.Pending)

	// next frame accepts a new request
	f.v.RequestRendering(false)
	f.v.RequestRendering(false)
	f.sched.Flush()
	assert.Equal(t, 2, f.v.Stats().Renders)
	assert.Equal(t, 0, f.sched.Pending())
}

func TestImmediateRenderIsSynchronous(t *testing.T) {
	f := newFixture(t, Options{})
	f.v.RequestRendering(true)
	assert.Equal(t, 1, f.v.Stats().Renders)
	assert.Equal(t, 0, f.sched.Pending())

	canvas := f.v.Canvas()
	assert.Equal(t, DefaultBackground, canvas.NRGBAAt(0, 0))
}

func TestResizeFollowsWindow(t *testing.T) {
	f := newFixture(t, Options{})
	st := f.v.Stats()
	assert.Equal(t, 80, st.Width)
	assert.Equal(t, 40, st.Height)
	assert.InDelta(t, 2, f.v.Camera().Aspect, 1e-12)

	f.win.Resize(30, 60)
	st = f.v.Stats()
	assert.Equal(t, 30, st.Width)
	assert.Equal(t, 60, st.Height)
	assert.InDelta(t, 0.5, f.v.Camera().Aspect, 1e-12)
	assert.True(t, st.Pending, "window resize requests a render")
	f.sched.Flush()
	assert.Equal(t, image.Rect(0, 0, 30, 60), f.v.Canvas().Bounds())
}

func TestResizeToEmptyWindow(t *testing.T) {
	f := newFixture(t, Options{})
	f.win.Resize(0, 0)
	st := f.v.Stats()
	assert.Equal(t, 1, st.Width)
	assert.Equal(t, 1, st.Height)
	assert.Equal(t, 1.0, f.v.Camera().Aspect)

	f.win.Resize(0, 50)
	assert.InDelta(t, 0.02, f.v.Camera().Aspect, 1e-12)
	f.sched.Flush()
	assert.Equal(t, image.Rect(0, 0, 1, 50), f.v.Canvas().Bounds())
}

func TestResizeKeepsConfiguredSize(t *testing.T) {
	f := newFixture(t, Options{Width: 64, Height: 32})
	f.win.Resize(500, 500)
	st := f.v.Stats()
	assert.Equal(t, 64, st.Width)
	assert.Equal(t, 32, st.Height)
	assert.InDelta(t, 2, f.v.Camera().Aspect, 1e-12)

	f.v.OnResize(false)
	assert.Equal(t, 64, f.v.Stats().Width)
}

func TestAntialiasKeepsCanvasSize(t *testing.T) {
	f := newFixture(t, Options{Antialias: true, Width: 20, Height: 10})
	f.v.RequestRendering(true)
	assert.Equal(t, image.Rect(0, 0, 20, 10), f.v.Canvas().Bounds())
}

func TestPositionCameraFramesBoundingSphere(t *testing.T) {
	f := newFixture(t, Options{Width: 60, Height: 60})

	fit := f.v.PositionCamera(1.5, true)
	radius := math.Sqrt(3*64) / 2
	assert.InDelta(t, radius, fit.Sphere.Radius, 1e-9)
	assert.InDelta(t, 0, fit.Sphere.Center.Len(), 1e-9)

	want := radius / math.Tan(70*math.Pi/180*1.5/2)
	assert.InDelta(t, want, fit.Distance, 1e-9)
	l := math.Sqrt2 * want
	assert.InDelta(t, l, fit.Position.X(), 1e-6)
	assert.InDelta(t, l, fit.Position.Y(), 1e-6)
	assert.InDelta(t, l, fit.Position.Z(), 1e-6)

	cam := f.v.Camera()
	assert.InDelta(t, 0, cam.Target().Len(), 1e-9)

	var faces []geo.Quad
	f.v.Model(func(m *model.Model) {
		assert.True(t, m.Rotation().ApproxEqual(mathutil.EulerXYZ(0, math.Pi, 0), 1e-12))
		faces = m.Faces()
	})
	require.NotEmpty(t, faces)
	for _, q := range faces {
		for _, p := range q.Pos {
			ndc, w := cam.Project(mgl64.Vec3(p))
			require.Greater(t, w, 0.0)
			assert.LessOrEqual(t, math.Abs(ndc.X()), 1.0)
			assert.LessOrEqual(t, math.Abs(ndc.Y()), 1.0)
		}
	}
}

func TestPositionCameraTargetsOffsetModel(t *testing.T) {
	f := newFixture(t, Options{})
	f.v.Model(func(m *model.Model) { m.Position = mathutil.Vec3{10, 0, 0} })

	fit := f.v.PositionCamera(1, false)
	assert.InDelta(t, 10, fit.Sphere.Center[0], 1e-9)
	f.v.Interact(func(c *camera.OrbitControls) {
		assert.InDelta(t, 10, c.Target.X(), 1e-9)
	})
}

func TestControlsChangeRequestsRender(t *testing.T) {
	f := newFixture(t, Options{})
	f.v.Interact(func(c *camera.OrbitControls) { c.Rotate(0.3, 0.1) })
	assert.Equal(t, 1, f.sched.Pending())

	f.v.Interact(func(c *camera.OrbitControls) { c.Zoom(2) })
	assert.Equal(t, 1, f.sched.Pending())
	f.sched.Flush()
	assert.Equal(t, 1, f.v.Stats().Renders)
}

func TestImmediateRenderKeepsQueuedFrameSingle(t *testing.T) {
	f := newFixture(t, Options{})
	f.v.Model(func(m *model.Model) { m.Position = mathutil.Vec3{5, 0, 0} })
	f.sched.Flush()
	f.v.PositionCamera(DefaultPreviewScale, true)
	f.v.RequestRendering(true)
	f.v.RequestRendering(false)
	f.v.RequestRendering(false)
	assert.Equal(t, 1, f.sched.Pending())

	before := f.v.Stats().Renders
	f.sched.Flush()
	assert.Equal(t, before+1, f.v.Stats().Renders)
	assert.False(t, f.v.Stats().Pending)
}

func TestAnimationSustainsRendering(t *testing.T) {
	set, err := anim.Parse([]byte(`{"animations": {"animation.cube.spin": {
		"loop": true,
		"animation_length": 2,
		"bones": {"root": {"rotation": {"0": [0, 0, 0], "2": [0, 360, 0]}}}
	}}}`))
	require.NoError(t, err)

	now := time.Unix(0, 0)
	f := newFixture(t, Options{
		Animations: set,
		Clock:      func() time.Time { return now },
	})
	f.v.Model(func(m *model.Model) { require.NoError(t, m.Play("animation.cube.spin")) })

	for i := 1; i <= 3; i++ {
		now = now.Add(16 * time.Millisecond)
		require.Equal(t, 1, f.sched.Flush())
		assert.Equal(t, i, f.v.Stats().Renders)
		assert.Equal(t, 1, f.sched.Pending(), "a ticking model schedules the next frame")
	}

	f.v.Model(func(m *model.Model) { m.Stop("animation.cube.spin") })
	f.sched.Flush()
	assert.Equal(t, 0, f.sched.Pending())
}

func TestImmediateRenderDoesNotTick(t *testing.T) {
	set, err := anim.Parse([]byte(`{"animations": {"animation.cube.spin": {
		"loop": true,
		"bones": {"root": {"rotation": {"0": [0, 0, 0], "1": [0, 90, 0]}}}
	}}}`))
	require.NoError(t, err)
	f := newFixture(t, Options{Animations: set})
	f.v.Model(func(m *model.Model) { require.NoError(t, m.Play("animation.cube.spin")) })
	f.sched.Flush()
	f.sched.Flush()

	f.v.RequestRendering(true)
	assert.Equal(t, 1, f.sched.Pending())
}

func TestGeneratePreview(t *testing.T) {
	f := newFixture(t, Options{Width: 40, Height: 20, Caption: true})

	card, err := f.v.GeneratePreview(context.Background(), DefaultPreviewScale, 0.1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 140, 60), card.Bounds())
	assert.Equal(t, preview.Renders, f.v.Stats().Renders)

	require.Len(t, f.opener.names, 1)
	assert.Equal(t, "geometry.cube", f.opener.names[0])
	assert.Same(t, card, f.opener.cards[0])

	assert.Equal(t, green, card.NRGBAAt(50, 30), "texture swatch")
	assert.Equal(t, blue, card.NRGBAAt(139, 59), "logo")
	assert.Equal(t, DefaultBackground, card.NRGBAAt(100, 55))

	f.v.Model(func(m *model.Model) {
		assert.True(t, m.Rotation().ApproxEqual(mathutil.EulerXYZ(0, 1.75*math.Pi, 1.75*math.Pi), 1e-9))
		assert.Equal(t, 0.0, m.Position[1])
	})
}

func TestGeneratePreviewIsReproducible(t *testing.T) {
	a := newFixture(t, Options{Width: 40, Height: 20})
	b := newFixture(t, Options{Width: 40, Height: 20})

	ca, err := a.v.GeneratePreview(context.Background(), 1.5, 0.2)
	require.NoError(t, err)
	cb, err := b.v.GeneratePreview(context.Background(), 1.5, 0.2)
	require.NoError(t, err)
	assert.Equal(t, ca.Pix, cb.Pix)
}

func TestGeneratePreviewWithoutCanvas(t *testing.T) {
	f := newFixture(t, Options{})
	for _, res := range []float64{0, -2, 1e5} {
		_, err := f.v.GeneratePreview(context.Background(), 1.5, res)
		assert.ErrorIs(t, err, ErrNoContext)
	}
	assert.Empty(t, f.opener.names)
	assert.Equal(t, 0, f.v.Stats().Renders)
}

func TestGeneratePreviewMissingLogo(t *testing.T) {
	f := newFixture(t, Options{LogoPath: "nope.webp"})
	_, err := f.v.GeneratePreview(context.Background(), 1.5, 0.1)
	assert.Error(t, err)
	assert.Empty(t, f.opener.names)
}

func TestGeneratePreviewCanceled(t *testing.T) {
	f := newFixture(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.v.GeneratePreview(ctx, 1.5, 0.1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.opener.names)
}

func TestHelperLines(t *testing.T) {
	box := mathutil.Box3{Min: mathutil.Vec3{-1, -1, -1}, Max: mathutil.Vec3{1, 1, 1}}
	assert.Len(t, helperLines(box), 3+2*(gridDivisions+1)+12)
	assert.Len(t, helperLines(mathutil.EmptyBox()), 3+2*(gridDivisions+1))

	for _, l := range boxLines(box) {
		assert.InDelta(t, 2, l.B.Sub(l.A).Len(), 1e-12, "box edges are axis aligned")
	}
}

func TestAddHelpersRequestsRender(t *testing.T) {
	f := newFixture(t, Options{})
	f.v.AddHelpers()
	assert.Equal(t, 1, f.sched.Pending())
	f.sched.Flush()
	assert.Equal(t, 1, f.v.Stats().Renders)
}
