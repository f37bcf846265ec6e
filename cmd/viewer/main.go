package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"model-asset-preview/internal/app"
	"model-asset-preview/internal/camera"
	"model-asset-preview/internal/config"
	"model-asset-preview/internal/logging"
	"model-asset-preview/internal/model"
	"model-asset-preview/internal/texture"
	"model-asset-preview/internal/viewer"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (.json, .yaml or .toml)")
	geometry := flag.String("geometry", "", "Bedrock geometry file")
	identifier := flag.String("id", "", "Geometry identifier (default: first in file)")
	texturePath := flag.String("texture", "", "Texture file (default: looked up by identifier)")
	animations := flag.String("anim", "", "Bedrock animation file")
	play := flag.String("play", "", "Animation to start with")
	logo := flag.String("logo", "", "Logo image for preview cards (default: gm1.webp)")
	outputDir := flag.String("out", "", "Card output directory (default: .)")
	helpers := flag.Bool("helpers", false, "Show axes, grid and bounding box")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		Geometry:   *geometry,
		Identifier: *identifier,
		Texture:    *texturePath,
		Animations: *animations,
		Logo:       *logo,
		OutputDir:  *outputDir,
	})

	s, err := app.Open(cfg, texture.NewCache())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	opener, err := s.Opener(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	win := viewer.NewHeadlessWindow(cfg.Width, cfg.Height)
	sched := &viewer.ManualScheduler{}
	opts := s.Options(opener)
	v, err := viewer.New(win, sched, s.Geometry, s.Texture, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	v.PositionCamera(viewer.DefaultPreviewScale, true)
	if *helpers {
		v.AddHelpers()
	}
	if *play != "" {
		var playErr error
		v.Model(func(m *model.Model) { playErr = m.Play(*play) })
		if playErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", playErr)
			os.Exit(1)
		}
	}
	v.RequestRendering(false)

	g := &game{v: v, win: win, sched: sched, scale: cfg.Scale, res: cfg.Res}
	ebiten.SetWindowTitle(s.Geometry.Description.Identifier)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.FPS)
	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// game hosts a viewer in an ebiten window. Update is the animation frame:
// it feeds input to the orbit controls and runs queued renders.
type game struct {
	v     *viewer.Viewer
	win   *viewer.HeadlessWindow
	sched *viewer.ManualScheduler

	scale, res float64
	done       chan error

	img      *ebiten.Image
	pix      []byte
	lastX    int
	lastY    int
	dragging bool
}

func (g *game) Update() error {
	g.handleInput()

	if g.done != nil {
		select {
		case err := <-g.done:
			if err != nil {
				logging.Logger().Error("preview failed", "err", err)
			}
			g.done = nil
		default:
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) && g.done == nil {
		g.done = make(chan error, 1)
		go func(done chan<- error) {
			_, err := g.v.GeneratePreview(context.Background(), g.scale, g.res)
			done <- err
		}(g.done)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.v.AddHelpers()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.v.PositionCamera(g.scale, false)
		g.v.RequestRendering(false)
	}

	g.sched.Flush()
	return nil
}

func (g *game) handleInput() {
	x, y := ebiten.CursorPosition()
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)

	if (left || right) && g.dragging {
		dx, dy := float64(x-g.lastX), float64(y-g.lastY)
		if dx != 0 || dy != 0 {
			st := g.v.Stats()
			h := float64(max(st.Height, 1))
			if left {
				g.v.Interact(func(c *camera.OrbitControls) {
					c.Rotate(2*math.Pi*dx/h, 2*math.Pi*dy/h)
				})
			} else {
				cam := g.v.Camera()
				dist := cam.Position.Sub(cam.Target()).Len()
				unit := 2 * dist * math.Tan(cam.FOV*math.Pi/360) / h
				g.v.Interact(func(c *camera.OrbitControls) { c.Pan(dx*unit, dy*unit) })
			}
		}
	}
	g.dragging = left || right
	g.lastX, g.lastY = x, y

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.v.Interact(func(c *camera.OrbitControls) { c.Zoom(wy) })
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	st := g.v.Stats()
	if g.img == nil || g.img.Bounds().Dx() != st.Width || g.img.Bounds().Dy() != st.Height {
		if g.img != nil {
			g.img.Deallocate()
		}
		g.img = ebiten.NewImage(st.Width, st.Height)
		g.pix = make([]byte, 4*st.Width*st.Height)
	}
	if !g.v.CopyCanvas(g.pix) {
		return
	}
	premultiply(g.pix)
	g.img.WritePixels(g.pix)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.win.Resize(outsideWidth, outsideHeight)
	st := g.v.Stats()
	return st.Width, st.Height
}

// premultiply converts the viewer's straight-alpha pixels to the
// premultiplied form ebiten expects.
func premultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		if a == 0xff {
			continue
		}
		pix[i] = uint8(uint32(pix[i]) * a / 0xff)
		pix[i+1] = uint8(uint32(pix[i+1]) * a / 0xff)
		pix[i+2] = uint8(uint32(pix[i+2]) * a / 0xff)
	}
}
