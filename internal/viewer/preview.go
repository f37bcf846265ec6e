package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"

	"model-asset-preview/internal/logging"
	"model-asset-preview/internal/preview"
)

// Defaults for GeneratePreview.
const (
	DefaultPreviewScale = 1.5
	DefaultPreviewRes   = 10
)

// ErrNoContext means the card canvas could not be created, so nothing was
// captured or exported.
var ErrNoContext = errors.New("viewer: no drawing context for preview")

// GeneratePreview captures the model from seven angles, composes them with
// the texture and logo into a card at res× and hands the card to the
// configured Opener. The model is left in its last capture pose.
func (v *Viewer) GeneratePreview(ctx context.Context, scale, res float64) (*image.NRGBA, error) {
	if err := preview.CheckCanvas(res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContext, err)
	}

	v.mu.Lock()
	renders, err := v.capture(ctx, scale)
	aspect := v.cam.Aspect
	texturePath := v.texturePath
	identifier := v.model.Geometry().Description.Identifier
	v.mu.Unlock()
	if err != nil {
		return nil, err
	}

	tex, logo, err := v.loadAssets(ctx, texturePath)
	if err != nil {
		return nil, err
	}

	card := preview.Card{
		Res:        res,
		Aspect:     aspect,
		Renders:    renders,
		Texture:    tex,
		Logo:       logo,
		Background: v.opts.Background,
	}
	if v.opts.Caption {
		card.Caption = identifier
	}
	img, err := preview.Compose(card)
	if err != nil {
		if errors.Is(err, preview.ErrCanvas) {
			return nil, fmt.Errorf("%w: %v", ErrNoContext, err)
		}
		return nil, fmt.Errorf("viewer: compose: %w", err)
	}

	path, err := v.opts.Opener.Open(ctx, identifier, img)
	if err != nil {
		return img, fmt.Errorf("viewer: export: %w", err)
	}
	logging.Logger().Info("preview exported", "path", path, "width", img.Rect.Dx(), "height", img.Rect.Dy())
	return img, nil
}

// capture requires v.mu. Each step rotates, renders and snapshots before the
// next starts, so the order of the renders is fixed: five yaw steps, the
// bottom pose and the top pose.
func (v *Viewer) capture(ctx context.Context, scale float64) ([]image.Image, error) {
	m := v.model
	shots := make([]image.Image, 0, preview.Renders)
	snap := func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		v.render(false)
		shots = append(shots, v.renderer.Snapshot())
		return nil
	}

	v.positionCamera(scale, true)
	for i := 0; i < 5; i++ {
		if i == 1 {
			m.RotateY(math.Pi / 4)
		}
		if i != 0 {
			m.RotateY(math.Pi / 2)
		}
		if err := snap(); err != nil {
			return nil, err
		}
	}

	// Bottom
	center := m.BoundingBox().Center()
	m.Position[1] = center[1]
	m.SetRotation(0.25*math.Pi, 1.75*math.Pi, 0.75*math.Pi)
	v.positionCamera(scale, false)
	if err := snap(); err != nil {
		return nil, err
	}
	m.Position[1] = 0

	// Top
	m.SetRotation(0, 1.75*math.Pi, 1.75*math.Pi)
	v.positionCamera(scale, false)
	if err := snap(); err != nil {
		return nil, err
	}
	return shots, nil
}

// loadAssets resolves the texture and the logo concurrently and fails if
// either does. An empty texture path leaves the swatch blank.
func (v *Viewer) loadAssets(ctx context.Context, texturePath string) (tex, logo *image.NRGBA, err error) {
	g, ctx := errgroup.WithContext(ctx)
	if texturePath != "" {
		g.Go(func() error {
			img, err := v.opts.Images.Resolve(texturePath)
			if err != nil {
				return fmt.Errorf("viewer: load texture %s: %w", texturePath, err)
			}
			tex = img
			return nil
		})
	}
	g.Go(func() error {
		img, err := v.opts.Images.Resolve(v.opts.LogoPath)
		if err != nil {
			return fmt.Errorf("viewer: load logo %s: %w", v.opts.LogoPath, err)
		}
		logo = img
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tex, logo, nil
}
