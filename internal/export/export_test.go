package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(3, 2, color.NRGBA{B: 200, A: 128})
	return img
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": PNG, "png": PNG, ".PNG": PNG, "webp": WebP, "WebP": WebP} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("gif")
	assert.Error(t, err)
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(), PNG))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	r, _, _, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestEncodeWebPIsLossless(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(), WebP))

	img, err := webp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	got := color.NRGBAModel.Convert(img.At(1, 1)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got)
}

func TestEncodeUnknownFormat(t *testing.T) {
	assert.Error(t, Encode(&bytes.Buffer{}, testImage(), Format("bmp")))
}

func TestFileOpenerWritesCard(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := FileOpener{Dir: dir, Format: WebP}.Open(context.Background(), "geometry.crate:v1", testImage())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "geometry.crate_v1.webp"), path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
}

func TestFileOpenerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FileOpener{Dir: t.TempDir()}.Open(ctx, "x", testImage())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBrowserOpenerLaunches(t *testing.T) {
	var launched string
	o := BrowserOpener{
		FileOpener: FileOpener{Dir: t.TempDir()},
		Command: func(path string) *exec.Cmd {
			launched = path
			return exec.Command(os.Args[0], "-test.run=^$")
		},
	}
	path, err := o.Open(context.Background(), "card", testImage())
	require.NoError(t, err)
	assert.Equal(t, path, launched)
	assert.FileExists(t, path)
}

// TestHelperViewer stands in for a long-running viewer process.
func TestHelperViewer(t *testing.T) {
	if os.Getenv("EXPORT_HELPER_VIEWER") != "1" {
		t.Skip("helper process")
	}
	time.Sleep(5 * time.Second)
	os.Exit(0)
}

func TestBrowserOpenerOutlivesContext(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("signal 0 is not supported")
	}
	var cmd *exec.Cmd
	o := BrowserOpener{
		FileOpener: FileOpener{Dir: t.TempDir()},
		Command: func(string) *exec.Cmd {
			cmd = exec.Command(os.Args[0], "-test.run=^TestHelperViewer$")
			cmd.Env = append(os.Environ(), "EXPORT_HELPER_VIEWER=1")
			return cmd
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	_, err := o.Open(ctx, "card", testImage())
	require.NoError(t, err)
	require.NotNil(t, cmd)
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	cancel()
	time.Sleep(200 * time.Millisecond)
	assert.NoError(t, cmd.Process.Signal(syscall.Signal(0)), "viewer should keep running after cancel")
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "preview", SafeName(""))
	assert.Equal(t, "a_b_c", SafeName("a/b\\c"))
	assert.Equal(t, "geometry.cow", SafeName("geometry.cow"))
}
