package batch

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"model-asset-preview/internal/anim"
	"model-asset-preview/internal/export"
	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/logging"
	"model-asset-preview/internal/texture"
	"model-asset-preview/internal/viewer"
)

// Render size used when Config leaves it unset.
const (
	defaultWidth  = 700
	defaultHeight = 300
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir string
	Format    export.Format
	// Images is shared by every worker; it must be safe for concurrent use.
	Images texture.Resolver
	// Textures finds textures for items that do not name one.
	Textures *texture.Index
	// Viewer is the template for each item's viewer. Images and Opener are
	// replaced per item.
	Viewer  viewer.Options
	Width   int
	Height  int
	Scale   float64
	Res     float64
	Workers int
}

// Result holds the outcome of processing one item.
type Result struct {
	Name     string
	Geometry string
	Texture  string
	Output   string
	Success  bool
	Error    string
}

// Run renders a card per item using a worker pool. Item failures are
// recorded in the results; Run stops early only when ctx is canceled.
func Run(ctx context.Context, cfg Config, items []Item) ([]Result, error) {
	total := len(items)
	results := make([]Result, total)
	var processed atomic.Int64
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Images == nil {
		cfg.Images = texture.NewCache()
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaultWidth, defaultHeight
	}
	if cfg.Scale <= 0 {
		cfg.Scale = viewer.DefaultPreviewScale
	}
	if cfg.Res <= 0 {
		cfg.Res = viewer.DefaultPreviewRes
	}

	start := time.Now()
	log := logging.Logger()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					log.Info("batch progress", "done", p, "total", total, "rate", fmt.Sprintf("%.1f/s", float64(p)/elapsed))
				}
			}
		}
	}()
	defer close(done)

	// Worker pool
	itemChan := make(chan int, cfg.Workers*2)
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			for idx := range itemChan {
				results[idx] = processItem(gctx, cfg, items[idx])
				processed.Add(1)
			}
			return nil
		})
	}

	// Send work
	g.Go(func() error {
		defer close(itemChan)
		for i := range items {
			select {
			case itemChan <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	for i := range results {
		if results[i].Name == "" && results[i].Geometry == "" {
			results[i] = Result{Name: items[i].Name, Geometry: items[i].Geometry, Error: "not processed"}
		}
	}
	log.Info("batch finished", "items", total, "elapsed", time.Since(start).Round(time.Millisecond))
	return results, err
}

// pathOpener saves cards under the item name instead of the geometry
// identifier, and remembers the path.
type pathOpener struct {
	export.Opener
	name string
	path string
}

func (o *pathOpener) Open(ctx context.Context, _ string, img image.Image) (string, error) {
	path, err := o.Opener.Open(ctx, o.name, img)
	o.path = path
	return path, err
}

func processItem(ctx context.Context, cfg Config, item Item) Result {
	res := Result{Name: item.Name, Geometry: item.Geometry, Texture: item.Texture}
	fail := func(err error) Result {
		res.Error = err.Error()
		logging.Logger().Warn("batch item failed", "name", item.Name, "err", err)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if _, err := os.Stat(item.Geometry); os.IsNotExist(err) {
		return fail(fmt.Errorf("geometry not found: %s", item.Geometry))
	}

	g, err := geo.Load(item.Geometry, item.Identifier)
	if err != nil {
		return fail(err)
	}

	if res.Texture == "" && cfg.Textures != nil {
		if p, ok := cfg.Textures.ResolvePath(g.Description.Identifier); ok {
			res.Texture = p
		} else if p, ok := cfg.Textures.ResolvePath(item.Name); ok {
			res.Texture = p
		}
	}

	opts := cfg.Viewer
	opts.Images = cfg.Images
	opener := &pathOpener{
		Opener: export.FileOpener{Dir: cfg.OutputDir, Format: cfg.Format},
		name:   item.Name,
	}
	opts.Opener = opener
	if item.Animations != "" {
		set, err := anim.Load(item.Animations)
		if err != nil {
			return fail(err)
		}
		opts.Animations = set
	}

	v, err := viewer.New(viewer.NewHeadlessWindow(cfg.Width, cfg.Height), &viewer.ManualScheduler{}, g, res.Texture, opts)
	if err != nil {
		return fail(err)
	}
	if _, err := v.GeneratePreview(ctx, cfg.Scale, cfg.Res); err != nil {
		return fail(err)
	}

	res.Output = opener.path
	res.Success = true
	return res
}
