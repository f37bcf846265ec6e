package texture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadTexturePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crate.png")
	writePNG(t, path, 4, 2)

	img, err := LoadTexture(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, img.NRGBAAt(0, 0))
}

func TestLoadTextureErrors(t *testing.T) {
	_, err := LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("\x89PNG\r\n\x1a\nbroken"), 0o644))
	_, err = LoadTexture(bad)
	assert.Error(t, err)
}

func TestToNRGBAMovesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 7))
	src.Set(5, 5, color.RGBA{R: 255, A: 255})
	dst := ToNRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 2), dst.Bounds())
	assert.Equal(t, uint8(255), dst.NRGBAAt(0, 0).R)
}

func TestCacheLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	c := NewCache()
	c.load = func(path string) (*image.NRGBA, error) {
		calls.Add(1)
		if path == "missing" {
			return nil, errors.New("not found")
		}
		return image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := c.Resolve("a.png")
			assert.NoError(t, err)
			assert.NotNil(t, img)
		}()
	}
	wg.Wait()

	_, err := c.Resolve("missing")
	assert.Error(t, err)
	_, err = c.Resolve("missing")
	assert.Error(t, err)

	assert.Equal(t, 2, c.Len())
	assert.LessOrEqual(t, calls.Load(), int32(17))

	before := calls.Load()
	c.Invalidate("a.png")
	_, err = c.Resolve("a.png")
	require.NoError(t, err)
	assert.Equal(t, before+1, calls.Load())
}

func TestIndexPrefersPNG(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "entity", "crate.png"), 1, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entity", "crate.tga"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entity", "notes.txt"), nil, 0o644))

	idx := BuildIndex(dir)
	assert.Equal(t, 1, idx.Len())

	path, ok := idx.ResolvePath("textures/entity/Crate")
	require.True(t, ok)
	assert.Equal(t, ".png", filepath.Ext(path))

	_, ok = idx.ResolvePath("geometry.crate")
	assert.True(t, ok)

	_, ok = idx.ResolvePath("barrel")
	assert.False(t, ok)
}
