package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir" yaml:"base_dir" toml:"base_dir"`
	Geometry   string `json:"geometry" yaml:"geometry" toml:"geometry"`
	Identifier string `json:"identifier" yaml:"identifier" toml:"identifier"`
	Texture    string `json:"texture" yaml:"texture" toml:"texture"`
	Animations string `json:"animations" yaml:"animations" toml:"animations"`
	Logo       string `json:"logo" yaml:"logo" toml:"logo"`
	OutputDir  string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	// TextureDirs are searched when Texture is empty.
	TextureDirs []string `json:"texture_dirs" yaml:"texture_dirs" toml:"texture_dirs"`

	// Render settings
	Width       int     `json:"width" yaml:"width" toml:"width"`
	Height      int     `json:"height" yaml:"height" toml:"height"`
	Antialias   bool    `json:"antialias" yaml:"antialias" toml:"antialias"`
	Supersample int     `json:"supersample" yaml:"supersample" toml:"supersample"`
	Shading     string  `json:"shading" yaml:"shading" toml:"shading"`
	Filter      string  `json:"filter" yaml:"filter" toml:"filter"`
	Scale       float64 `json:"scale" yaml:"scale" toml:"scale"`
	Res         float64 `json:"res" yaml:"res" toml:"res"`
	FPS         int     `json:"fps" yaml:"fps" toml:"fps"`
	Format      string  `json:"format" yaml:"format" toml:"format"`
	Caption     bool    `json:"caption" yaml:"caption" toml:"caption"`
	Workers     int     `json:"workers" yaml:"workers" toml:"workers"`
}

// Defaults for render settings left unset.
const (
	DefaultWidth  = 700
	DefaultHeight = 300
	DefaultScale  = 1.5
	DefaultRes    = 10
	DefaultFPS    = 60
	DefaultFormat = "png"
	DefaultLogo   = "gm1.webp"
)

// Load reads a config file and returns Config. The format follows the
// extension: .yaml/.yml, .toml, anything else is JSON.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Geometry != "" {
		c.Geometry = flags.Geometry
	}
	if flags.Identifier != "" {
		c.Identifier = flags.Identifier
	}
	if flags.Texture != "" {
		c.Texture = flags.Texture
	}
	if flags.Animations != "" {
		c.Animations = flags.Animations
	}
	if flags.Logo != "" {
		c.Logo = flags.Logo
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Scale > 0 {
		c.Scale = flags.Scale
	}
	if flags.Res > 0 {
		c.Res = flags.Res
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.Logo == "" {
		c.Logo = DefaultLogo
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.Geometry = c.rel(c.Geometry)
		c.Texture = c.rel(c.Texture)
		c.Animations = c.rel(c.Animations)
		c.Logo = c.rel(c.Logo)
		c.OutputDir = c.rel(c.OutputDir)
		for i, d := range c.TextureDirs {
			c.TextureDirs[i] = c.rel(d)
		}
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Scale <= 0 {
		c.Scale = DefaultScale
	}
	if c.Res <= 0 {
		c.Res = DefaultRes
	}
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if len(c.TextureDirs) == 0 && c.Geometry != "" {
		c.TextureDirs = defaultTextureDirs(c.Geometry)
	}
}

func (c *Config) rel(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Geometry   string
	Identifier string
	Texture    string
	Animations string
	Logo       string
	OutputDir  string
	Scale      float64
	Res        float64
	Format     string
	Workers    int
}

// defaultTextureDirs guesses where a resource pack keeps the textures for a
// geometry file: next to it, and in the pack's textures/ tree.
func defaultTextureDirs(geometry string) []string {
	dir := filepath.Dir(geometry)
	dirs := []string{dir}
	for _, base := range []string{filepath.Dir(dir), filepath.Dir(filepath.Dir(dir))} {
		for _, sub := range []string{"textures/entity", "textures"} {
			candidate := filepath.Join(base, sub)
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				dirs = append(dirs, candidate)
			}
		}
	}
	return dirs
}
