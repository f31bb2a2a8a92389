package codec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"atlaspack/pixfmt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestImagingRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []pixfmt.Format{pixfmt.Gray8, pixfmt.BGR8, pixfmt.BGRA8} {
		t.Run(f.String(), func(t *testing.T) {
			buf := pixfmt.New(5, 3, f)
			for y := 0; y < buf.Height; y++ {
				for x := 0; x < buf.Width; x++ {
					buf.Set(x, y, pixfmt.Color{R: float32(x) / 4, G: float32(y) / 2, B: 0.5, A: 0.75})
				}
			}
			path := filepath.Join(dir, "sub", f.String()+".png")
			require.NoError(t, Imaging{}.Encode(buf, path))

			got, err := Imaging{}.Decode(path)
			require.NoError(t, err)
			assert.Equal(t, buf.Width, got.Width)
			assert.Equal(t, buf.Height, got.Height)
			assert.Equal(t, buf.Pix, pixfmt.Convert(got, f).Pix)
		})
	}
}

func TestImagingFloatQuantized(t *testing.T) {
	buf := pixfmt.New(2, 2, pixfmt.RGBAF32)
	buf.Fill(pixfmt.Color{R: 0.25, G: 0.5, B: 1, A: 1})
	path := filepath.Join(t.TempDir(), "f.png")
	require.NoError(t, Imaging{}.Encode(buf, path))
	got, err := Imaging{}.Decode(path)
	require.NoError(t, err)
	assert.Equal(t, pixfmt.RGBAF32, got.Format)
	assert.InDelta(t, 0.25, got.At(1, 1).R, 1e-4)
}

func TestImagingErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Imaging{}.Decode(filepath.Join(dir, "notes.txt"))
	assert.True(t, errors.Is(err, ErrUnsupported))

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0644))
	_, err = Imaging{}.Decode(bad)
	assert.Error(t, err)

	_, err = Imaging{}.Decode(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	assert.Error(t, Imaging{}.Encode(pixfmt.New(0, 0, pixfmt.Gray8), filepath.Join(dir, "empty.png")))
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("a/b/c.PNG"))
	assert.True(t, IsImageFile("photo.jpeg"))
	assert.False(t, IsImageFile("atlases.json"))
	assert.False(t, IsImageFile(".hidden.png"))
}

func TestFaceRenderGlyph(t *testing.T) {
	face, err := NewFace(goregular.TTF, 24)
	require.NoError(t, err)
	defer face.Close()

	g, err := face.RenderGlyph('A', 32, 32)
	require.NoError(t, err)
	require.NotNil(t, g.Bitmap)
	assert.Equal(t, pixfmt.Gray8, g.Bitmap.Format)
	assert.True(t, g.Bitmap.Width > 4 && g.Bitmap.Width <= 32)
	assert.True(t, g.Bitmap.Height > 4 && g.Bitmap.Height <= 32)
	assert.Greater(t, g.Advance, 0)
	assert.Greater(t, g.BearingY, 0)

	var ink int
	for _, v := range g.Bitmap.Pix {
		ink += int(v)
	}
	assert.Greater(t, ink, 0)

	space, err := face.RenderGlyph(' ', 32, 32)
	require.NoError(t, err)
	assert.Equal(t, 1, space.Bitmap.Width)
	assert.Equal(t, 1, space.Bitmap.Height)
	assert.Greater(t, space.Advance, 0)

	cropped, err := face.RenderGlyph('W', 4, 4)
	require.NoError(t, err)
	assert.LessOrEqual(t, cropped.Bitmap.Width, 4)
	assert.LessOrEqual(t, cropped.Bitmap.Height, 4)

	ascent, _, height := face.Metrics()
	assert.Greater(t, ascent, 0)
	assert.GreaterOrEqual(t, height, ascent)
}

func TestNewFaceBadData(t *testing.T) {
	_, err := NewFace([]byte("nope"), 12)
	assert.Error(t, err)
	_, err = LoadFace(filepath.Join(t.TempDir(), "missing.ttf"), 12)
	assert.Error(t, err)
}
