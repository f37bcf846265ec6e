// Package app turns a resolved configuration into the inputs of a viewer.
// Both commands share it.
package app

import (
	"fmt"
	"os"

	"model-asset-preview/internal/anim"
	"model-asset-preview/internal/config"
	"model-asset-preview/internal/export"
	"model-asset-preview/internal/geo"
	"model-asset-preview/internal/logging"
	"model-asset-preview/internal/raster"
	"model-asset-preview/internal/texture"
	"model-asset-preview/internal/viewer"
)

// Session holds the loaded assets for one model.
type Session struct {
	Config     config.Config
	Images     *texture.Cache
	Geometry   *geo.Geometry
	Texture    string
	Animations anim.Set
}

// Open loads the configured geometry and animations and finds its texture.
// cfg must already be resolved.
func Open(cfg config.Config, images *texture.Cache) (*Session, error) {
	if cfg.Geometry == "" {
		return nil, fmt.Errorf("app: no geometry file configured")
	}
	if images == nil {
		images = texture.NewCache()
	}
	s := &Session{Config: cfg, Images: images, Texture: cfg.Texture}

	g, err := geo.Load(cfg.Geometry, cfg.Identifier)
	if err != nil {
		return nil, err
	}
	s.Geometry = g

	if s.Texture == "" && len(cfg.TextureDirs) > 0 {
		idx := texture.BuildIndex(cfg.TextureDirs...)
		if p, ok := idx.ResolvePath(g.Description.Identifier); ok {
			s.Texture = p
		}
		logging.Logger().Debug("texture lookup", "indexed", idx.Len(), "found", s.Texture)
	}
	if s.Texture == "" {
		logging.Logger().Warn("no texture found, rendering untextured", "geometry", g.Description.Identifier)
	}

	if cfg.Animations != "" {
		set, err := anim.Load(cfg.Animations)
		if err != nil {
			return nil, err
		}
		s.Animations = set
	}
	return s, nil
}

// Opener returns where cards go: files in the output directory, also shown
// in the system viewer when show is set.
func (s *Session) Opener(show bool) (export.Opener, error) {
	format, err := export.ParseFormat(s.Config.Format)
	if err != nil {
		return nil, err
	}
	files := export.FileOpener{Dir: s.Config.OutputDir, Format: format}
	if show {
		return export.BrowserOpener{FileOpener: files}, nil
	}
	return files, nil
}

// Options builds viewer options from the configuration.
func (s *Session) Options(opener export.Opener) viewer.Options {
	c := s.Config
	return viewer.Options{
		Antialias:   c.Antialias,
		Supersample: c.Supersample,
		Shading:     raster.ParseShading(c.Shading),
		Filter:      raster.ParseFilter(c.Filter),
		LogoPath:    c.Logo,
		Images:      s.Images,
		Animations:  s.Animations,
		Opener:      opener,
		Caption:     c.Caption,
	}
}

// CheckLogo reports a missing logo before any rendering starts.
func (s *Session) CheckLogo() error {
	if _, err := os.Stat(s.Config.Logo); err != nil {
		return fmt.Errorf("app: logo %s: %w", s.Config.Logo, err)
	}
	return nil
}

// WatchPaths lists the files the session was loaded from. The texture entry
// can change across Reload when the lookup picks another file.
func (s *Session) WatchPaths() []string {
	var paths []string
	for _, p := range []string{s.Config.Geometry, s.Texture, s.Config.Animations} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Reload re-reads the geometry, texture and animations after files changed
// on disk.
func (s *Session) Reload() error {
	s.Images.Invalidate(s.Texture)
	next, err := Open(s.Config, s.Images)
	if err != nil {
		return err
	}
	*s = *next
	return nil
}
