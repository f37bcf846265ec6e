package app

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model-asset-preview/internal/config"
	"model-asset-preview/internal/export"
	"model-asset-preview/internal/raster"
)

const geoJSON = `{"format_version": "1.12.0", "minecraft:geometry": [{
	"description": {"identifier": "geometry.crate"},
	"bones": [{"name": "root", "cubes": [{"origin": [0, 0, 0], "size": [2, 2, 2], "uv": [0, 0]}]}]
}]}`

func setup(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "textures"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crate.geo.json"), []byte(geoJSON), 0644))
	f, err := os.Create(filepath.Join(dir, "textures", "crate.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())

	cfg := config.Config{
		BaseDir:     dir,
		Geometry:    "crate.geo.json",
		TextureDirs: []string{"textures"},
		Shading:     "studio",
		Format:      "webp",
	}
	cfg.Resolve(config.Flags{})
	return cfg
}

func TestOpenFindsTexture(t *testing.T) {
	cfg := setup(t)
	s, err := Open(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "geometry.crate", s.Geometry.Description.Identifier)
	assert.Equal(t, filepath.Join(cfg.BaseDir, "textures", "crate.png"), s.Texture)

	opts := s.Options(nil)
	assert.Equal(t, raster.ShadingStudio, opts.Shading)
	assert.Equal(t, filepath.Join(cfg.BaseDir, "gm1.webp"), opts.LogoPath)
	assert.Error(t, s.CheckLogo())
}

func TestOpenRequiresGeometry(t *testing.T) {
	_, err := Open(config.Config{}, nil)
	assert.Error(t, err)
}

func TestOpener(t *testing.T) {
	s, err := Open(setup(t), nil)
	require.NoError(t, err)

	o, err := s.Opener(false)
	require.NoError(t, err)
	assert.Equal(t, export.WebP, o.(export.FileOpener).Format)

	o, err = s.Opener(true)
	require.NoError(t, err)
	assert.IsType(t, export.BrowserOpener{}, o)

	s.Config.Format = "gif"
	_, err = s.Opener(false)
	assert.Error(t, err)
}

func TestReload(t *testing.T) {
	cfg := setup(t)
	s, err := Open(cfg, nil)
	require.NoError(t, err)
	_, err = s.Images.Resolve(s.Texture)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfg.Geometry, []byte(`{"minecraft:geometry": [{
		"description": {"identifier": "geometry.crate"},
		"bones": [{"name": "lid"}]
	}]}`), 0644))
	require.NoError(t, s.Reload())
	assert.Equal(t, "lid", s.Geometry.Bones[0].Name)
	assert.Equal(t, 0, s.Images.Len(), "texture dropped from the cache")
}

func TestReloadFollowsMovedTexture(t *testing.T) {
	cfg := setup(t)
	s, err := Open(cfg, nil)
	require.NoError(t, err)
	old := filepath.Join(cfg.BaseDir, "textures", "crate.png")
	assert.Equal(t, []string{cfg.Geometry, old}, s.WatchPaths())

	moved := filepath.Join(cfg.BaseDir, "textures", "entity", "crate.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(moved), 0755))
	require.NoError(t, os.Rename(old, moved))
	require.NoError(t, s.Reload())
	assert.Equal(t, []string{cfg.Geometry, moved}, s.WatchPaths())
}
