package export

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Opener receives an exported card. Open returns where the card ended up.
type Opener interface {
	Open(ctx context.Context, name string, img image.Image) (string, error)
}

// FileOpener writes cards to Dir as <name>.<ext>.
type FileOpener struct {
	Dir    string
	Format Format
}

// Open encodes img and writes it atomically.
func (o FileOpener) Open(ctx context.Context, name string, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	format := o.Format
	if format == "" {
		format = PNG
	}
	dir := o.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("export: mkdir %s: %w", dir, err)
	}

	path := filepath.Join(dir, SafeName(name)+format.Ext())
	tmp, err := os.CreateTemp(dir, ".card-*")
	if err != nil {
		return "", fmt.Errorf("export: create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, img, format); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("export: rename %s: %w", path, err)
	}
	return path, nil
}

// BrowserOpener writes the card like FileOpener and then shows it with the
// platform's default viewer, the way a browser opens a new tab.
type BrowserOpener struct {
	FileOpener
	// Command overrides the platform launcher, mostly for tests.
	Command func(path string) *exec.Cmd
}

// Open writes the card and starts the viewer without waiting for it. The
// viewer is not bound to ctx and keeps running after the caller returns.
func (o BrowserOpener) Open(ctx context.Context, name string, img image.Image) (string, error) {
	path, err := o.FileOpener.Open(ctx, name, img)
	if err != nil {
		return "", err
	}
	command := o.Command
	if command == nil {
		command = launcher
	}
	cmd := command(path)
	if err := cmd.Start(); err != nil {
		return path, fmt.Errorf("export: open %s: %w", path, err)
	}
	go cmd.Wait()
	return path, nil
}

func launcher(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// SafeName maps a model identifier to a file name. Identifiers such as
// "geometry.crate:v1" keep their dots; path separators and other reserved
// characters become underscores.
func SafeName(name string) string {
	if name == "" {
		return "preview"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)
}
