package main

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"atlaspack/atlas"
	"atlaspack/codec"
	"atlaspack/internal/config"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func writeImage(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, imaging.Save(imaging.New(w, h, c), path))
}

// inputTree lays out a small sprite directory and returns its root and a
// configuration for it.
func inputTree(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "sprites")
	writeImage(t, filepath.Join(in, "b10.png"), 8, 8, color.NRGBA{R: 255, A: 255})
	writeImage(t, filepath.Join(in, "b2.png"), 6, 9, color.NRGBA{G: 255, A: 255})
	writeImage(t, filepath.Join(in, ".hidden.png"), 4, 4, color.NRGBA{A: 255})
	writeImage(t, filepath.Join(in, "ui", "button.png"), 16, 8, color.NRGBA{B: 255, A: 200})
	writeImage(t, filepath.Join(in, "hero", "walk.png"), 40, 10, color.NRGBA{R: 9, G: 9, B: 9, A: 255})
	writeImage(t, filepath.Join(in, "fx", "spark", "2.png"), 5, 5, color.NRGBA{R: 200, A: 255})
	writeImage(t, filepath.Join(in, "fx", "spark", "10.png"), 7, 7, color.NRGBA{R: 100, A: 255})
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("ignored"), 0644))

	fontPath := filepath.Join(dir, "regular.ttf")
	require.NoError(t, os.WriteFile(fontPath, goregular.TTF, 0644))

	cfgPath := filepath.Join(dir, "atlasgen.toml")
	cfg := fmt.Sprintf(`
[atlas]
input = %q
padding = 1

[[font]]
path = "regular.ttf"
folder = "text"
name = "body"
tag = 9
size = 16
characters = "Hi!"

[[animation]]
path = "hero/walk.png"
grid = [4, 1]
frame_duration = 0.1

[[set]]
path = "fx/spark"
frame_duration = 0.2
wrap = "clamp"

[tags]
"ui/button" = 5
"fx/spark" = 6
`, in)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return in, cfgPath
}

func TestScanInputOrder(t *testing.T) {
	_, cfgPath := inputTree(t)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	in := atlas.NewInput(codec.Imaging{})
	defer in.Clear()
	require.NoError(t, scanInput(in, cfg, log.New(io.Discard)))

	var paths []string
	for _, e := range in.CollectEntries() {
		paths = append(paths, e.FullPath())
	}
	assert.Equal(t, []string{"b2", "b10", "fx/spark", "hero/walk", "ui/button", "text/body"}, paths)

	spark := in.Root().Folders()[0].Bitmaps()[0]
	require.Len(t, spark.Frames(), 2)
	assert.Equal(t, 5, spark.Frames()[0].Width, "2.png comes before 10.png")
	assert.Equal(t, uint32(6), spark.Tag)
}

func TestPackAndUnpack(t *testing.T) {
	_, cfgPath := inputTree(t)
	out := filepath.Join(t.TempDir(), "atlas")
	require.NoError(t, run([]string{"pack", "-c", cfgPath, "-o", out, "--pow-of-two"}, io.Discard))

	loaded, err := atlas.Load(out)
	require.NoError(t, err)
	require.Len(t, loaded.Pages, 1)
	assert.Zero(t, loaded.Pages[0].Width&(loaded.Pages[0].Width-1), "page width is a power of two")

	button, ok := loaded.Bitmap("ui/button")
	require.True(t, ok)
	assert.Equal(t, uint32(5), button.Tag)
	assert.Equal(t, 16, button.Layout.Width)

	walk, ok := loaded.Bitmap("hero/walk")
	require.True(t, ok)
	require.NotNil(t, walk.Animation)
	assert.Len(t, walk.Animation.Frames, 4)
	assert.Equal(t, 10, walk.Animation.Frame(2).Width)

	spark, ok := loaded.Tagged(6)
	require.True(t, ok)
	assert.Equal(t, atlas.Clamp, spark.Bitmap.Animation.Mode)

	body, ok := loaded.Font("text/body")
	require.True(t, ok)
	assert.Len(t, body.Characters, 3)

	unpacked := filepath.Join(t.TempDir(), "unpacked")
	require.NoError(t, run([]string{"unpack", out, "-o", unpacked}, io.Discard))
	for _, name := range []string{"b2.png", "b10.png", "ui/button.png", "hero/walk/3.png", "fx/spark/1.png", "text/body/U+0021.png"} {
		assert.FileExists(t, filepath.Join(unpacked, filepath.FromSlash(name)))
	}
	img, err := imaging.Open(filepath.Join(unpacked, "b2.png"))
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 9, img.Bounds().Dy())
}

func TestPackTextureArray(t *testing.T) {
	in, _ := inputTree(t)
	out := filepath.Join(t.TempDir(), "array")
	require.NoError(t, run([]string{"pack", "-i", in, "-o", out, "--texture-array", "--stretch"}, io.Discard))

	loaded, err := atlas.Load(out)
	require.NoError(t, err)
	assert.Equal(t, atlas.KindTextureArray, loaded.Kind)
	// b2, b10, ui/button, hero/walk, and the two spark images as folder entries
	assert.Len(t, loaded.Pages, 6)
	for _, p := range loaded.Pages {
		assert.Equal(t, 40, p.Width)
		assert.Equal(t, 10, p.Height)
	}
}

func TestPackErrors(t *testing.T) {
	in, _ := inputTree(t)
	out := filepath.Join(t.TempDir(), "atlas")
	err := run([]string{"pack", "-i", in, "-o", out, "--max-width", "16", "--max-height", "16"}, io.Discard)
	assert.ErrorIs(t, err, atlas.ErrPackingOverflow)
	assert.NoDirExists(t, out)

	err = run([]string{"pack", "-i", filepath.Join(in, "missing"), "-o", out}, io.Discard)
	assert.Error(t, err)

	err = run([]string{"pack", "-i", in, "-o", out, "--heuristic", "nope"}, io.Discard)
	assert.ErrorIs(t, err, config.ErrInvalid)

	err = run([]string{"unpack", filepath.Join(in, "missing")}, io.Discard)
	assert.ErrorIs(t, err, atlas.ErrSerialization)
}
