package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"model-asset-preview/internal/app"
	"model-asset-preview/internal/batch"
	"model-asset-preview/internal/config"
	"model-asset-preview/internal/export"
	"model-asset-preview/internal/logging"
	"model-asset-preview/internal/model"
	"model-asset-preview/internal/texture"
	"model-asset-preview/internal/viewer"
	"model-asset-preview/internal/watch"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .yaml or .toml)")
	geometry := flag.String("geometry", "", "Bedrock geometry file")
	identifier := flag.String("id", "", "Geometry identifier (default: first in file)")
	texturePath := flag.String("texture", "", "Texture file (default: looked up by identifier)")
	animations := flag.String("anim", "", "Bedrock animation file")
	play := flag.String("play", "", "Animation to play before capturing")
	logo := flag.String("logo", "", "Logo image (default: gm1.webp)")
	outputDir := flag.String("out", "", "Output directory (default: .)")
	format := flag.String("format", "", "Card format: png or webp (default: png)")
	res := flag.Float64("res", 0, "Card resolution multiplier (default: 10)")
	scale := flag.Float64("scale", 0, "Field of view scale when framing (default: 1.5)")
	open := flag.Bool("open", false, "Open the card in the system image viewer")
	watchFiles := flag.Bool("watch", false, "Regenerate the card when input files change")
	manifest := flag.String("batch", "", "Render every model in a YAML/JSON manifest")
	workers := flag.Int("workers", 0, "Number of batch workers (default: NumCPU)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Geometry:   *geometry,
		Identifier: *identifier,
		Texture:    *texturePath,
		Animations: *animations,
		Logo:       *logo,
		OutputDir:  *outputDir,
		Scale:      *scale,
		Res:        *res,
		Format:     *format,
		Workers:    *workers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *manifest != "" {
		os.Exit(runBatch(ctx, cfg, *manifest))
	}

	if cfg.Geometry == "" {
		fmt.Fprintln(os.Stderr, "Error: no geometry. Use -geometry, -batch or a config file.")
		os.Exit(2)
	}

	s, err := app.Open(cfg, texture.NewCache())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := s.CheckLogo(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (use -logo)\n", err)
		os.Exit(1)
	}

	if err := render(ctx, s, *play, *open); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !*watchFiles {
			os.Exit(1)
		}
	}
	if !*watchFiles {
		return
	}

	fmt.Println("Watching for changes, Ctrl+C to stop")
	for {
		paths := s.WatchPaths()
		wctx, cancel := context.WithCancel(ctx)
		err = watch.Watch(wctx, paths, 0, func(changed []string) {
			logging.Logger().Info("inputs changed", "files", changed)
			if err := s.Reload(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return
			}
			if err := render(ctx, s, *play, *open); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			// Rewatch when the reload resolved different files.
			if !slices.Equal(paths, s.WatchPaths()) {
				cancel()
			}
		})
		restart := wctx.Err() != nil && ctx.Err() == nil
		cancel()
		if restart {
			logging.Logger().Debug("watch set changed", "files", s.WatchPaths())
			continue
		}
		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
}

// render builds an offscreen viewer for the session and exports one card.
func render(ctx context.Context, s *app.Session, play string, show bool) error {
	opener, err := s.Opener(show)
	if err != nil {
		return err
	}
	cfg := s.Config
	v, err := viewer.New(viewer.NewHeadlessWindow(cfg.Width, cfg.Height), &viewer.ManualScheduler{}, s.Geometry, s.Texture, s.Options(opener))
	if err != nil {
		return err
	}
	if play != "" {
		var playErr error
		v.Model(func(m *model.Model) { playErr = m.Play(play) })
		if playErr != nil {
			return playErr
		}
	}

	start := time.Now()
	card, err := v.GeneratePreview(ctx, cfg.Scale, cfg.Res)
	if err != nil {
		return err
	}
	fmt.Printf("Card %dx%d in %.1fs\n", card.Rect.Dx(), card.Rect.Dy(), time.Since(start).Seconds())
	return nil
}

func runBatch(ctx context.Context, cfg config.Config, manifest string) int {
	items, err := batch.LoadItems(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(items) == 0 {
		fmt.Println("No models to render.")
		return 0
	}

	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	var texIndex *texture.Index
	if len(cfg.TextureDirs) > 0 {
		texIndex = texture.BuildIndex(cfg.TextureDirs...)
		fmt.Printf("Textures: %d indexed\n", texIndex.Len())
	}

	s := app.Session{Config: cfg, Images: texture.NewCache()}
	if err := s.CheckLogo(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (use -logo)\n", err)
		return 1
	}

	fmt.Printf("Models: %d, Workers: %d\n", len(items), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results, err := batch.Run(ctx, batch.Config{
		OutputDir: cfg.OutputDir,
		Format:    format,
		Images:    s.Images,
		Textures:  texIndex,
		Viewer:    s.Options(nil),
		Width:     cfg.Width,
		Height:    cfg.Height,
		Scale:     cfg.Scale,
		Res:       cfg.Res,
		Workers:   cfg.Workers,
	}, items)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Interrupted: %v\n", err)
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	// Count results
	var failed []batch.Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-len(failed), len(items))

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := min(20, len(failed))
		for _, e := range failed[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failed) > 0 || err != nil {
		return 1
	}
	return 0
}
