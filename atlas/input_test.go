package atlas

import (
	"errors"
	"testing"

	"atlaspack/pixfmt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectEntriesOrder(t *testing.T) {
	in := NewInput(nil)
	root := in.Root()
	ui, err := root.AddFolder("ui")
	require.NoError(t, err)
	_, err = root.AddBitmap(pixfmt.Owned(solid(4, 4, 1)), "logo", 0, nil)
	require.NoError(t, err)
	icons, err := ui.AddFolder("icons")
	require.NoError(t, err)
	_, err = icons.AddBitmap(pixfmt.Owned(solid(2, 2, 2)), "gear", 0, nil)
	require.NoError(t, err)
	_, err = ui.AddFont(&fakeFace{}, "body", 0, FontParams{Characters: []rune("ab")})
	require.NoError(t, err)
	_, err = ui.AddBitmap(pixfmt.Owned(solid(3, 3, 3)), "button", 0, nil)
	require.NoError(t, err)

	var got []string
	for _, e := range in.CollectEntries() {
		got = append(got, e.FullPath())
	}
	assert.Equal(t, []string{"logo", "ui/button", "ui/body", "ui/icons/gear"}, got)
	assert.Equal(t, "ui/icons", icons.Path())
}

func TestNameAndTagCollisions(t *testing.T) {
	in := NewInput(nil)
	root := in.Root()
	_, err := root.AddBitmap(pixfmt.Owned(solid(2, 2, 0)), "a", 7, nil)
	require.NoError(t, err)

	dup := solid(2, 2, 0)
	_, err = root.AddBitmap(pixfmt.Owned(dup), "a", 0, nil)
	assert.True(t, errors.Is(err, ErrNameCollision))
	assert.Nil(t, dup.Pix, "failed add releases the owned buffer")

	_, err = root.AddFolder("a")
	assert.True(t, errors.Is(err, ErrNameCollision))

	sub, err := root.AddFolder("sub")
	require.NoError(t, err)
	_, err = sub.AddBitmap(pixfmt.Owned(solid(2, 2, 0)), "a", 0, nil)
	assert.NoError(t, err, "names only need to be unique among siblings")

	_, err = sub.AddBitmap(pixfmt.Owned(solid(2, 2, 0)), "b", 7, nil)
	assert.True(t, errors.Is(err, ErrTagCollision))
	_, err = sub.AddFont(&fakeFace{}, "font", 7, FontParams{})
	assert.True(t, errors.Is(err, ErrTagCollision))

	assert.Len(t, sub.Bitmaps(), 1)
	assert.Empty(t, sub.Fonts())
	assert.Len(t, in.CollectEntries(), 2)
}

func TestInvalidNames(t *testing.T) {
	root := NewInput(nil).Root()
	for _, name := range []string{"", "a/b"} {
		_, err := root.AddFolder(name)
		assert.True(t, errors.Is(err, ErrInvalidName), name)
		_, err = root.AddBitmap(pixfmt.Owned(solid(1, 1, 0)), name, 0, nil)
		assert.True(t, errors.Is(err, ErrInvalidName), name)
	}
}

func TestEmptyBitmapRejected(t *testing.T) {
	root := NewInput(nil).Root()
	_, err := root.AddBitmap(pixfmt.Owned(pixfmt.New(0, 4, pixfmt.BGRA8)), "empty", 0, nil)
	assert.True(t, errors.Is(err, ErrEmptyBitmap))
	_, err = root.AddBitmapSet([]pixfmt.Handle{pixfmt.Owned(solid(2, 2, 0)), pixfmt.Owned(pixfmt.New(3, 0, pixfmt.Gray8))}, "set", 0, nil)
	assert.True(t, errors.Is(err, ErrEmptyBitmap))
	assert.Empty(t, root.Bitmaps())
}

func TestClearReleasesOwnedOnly(t *testing.T) {
	in := NewInput(nil)
	owned, borrowed := solid(4, 4, 1), solid(4, 4, 2)
	_, err := in.Root().AddBitmap(pixfmt.Owned(owned), "owned", 1, nil)
	require.NoError(t, err)
	_, err = in.Root().AddBitmap(pixfmt.Borrowed(borrowed), "borrowed", 2, nil)
	require.NoError(t, err)
	font, err := in.Root().AddFont(&fakeFace{}, "font", 3, FontParams{Characters: []rune("x")})
	require.NoError(t, err)
	glyph := font.Characters[0].Bitmap()

	in.Clear()
	assert.Nil(t, owned.Pix)
	assert.Nil(t, glyph.Pix)
	assert.NotNil(t, borrowed.Pix)
	assert.Empty(t, in.CollectEntries())

	_, err = in.Root().AddBitmap(pixfmt.Owned(solid(1, 1, 0)), "owned", 1, nil)
	assert.NoError(t, err, "names and tags are free again after Clear")
}

func TestGridAnimationFrames(t *testing.T) {
	root := NewInput(nil).Root()
	sheet := gradient(50, 20, pixfmt.BGRA8)
	e, err := root.AddBitmap(pixfmt.Owned(sheet), "walk", 0, &Animation{GridWidth: 5, GridHeight: 2, Skip: 1, FrameDuration: 0.1})
	require.NoError(t, err)

	frames := e.Frames()
	require.Len(t, frames, 9)
	for _, f := range frames {
		assert.Equal(t, 10, f.Width)
		assert.Equal(t, 10, f.Height)
	}
	// frame 6 is column 1 of row 1
	assert.Equal(t, sheet.At(10, 10), frames[6].At(0, 0))
	assert.Equal(t, sheet.At(19, 19), frames[6].At(9, 9))
}

func TestInvalidAnimations(t *testing.T) {
	root := NewInput(nil).Root()
	cases := map[string]*Animation{
		"half grid":      {GridWidth: 2},
		"skip all":       {GridWidth: 2, GridHeight: 1, Skip: 2},
		"skip no grid":   {Skip: 1},
		"negative time":  {GridWidth: 1, GridHeight: 1, FrameDuration: -1},
		"cells too tiny": {GridWidth: 8, GridHeight: 1},
		"huge grid":      {GridWidth: 1 << 62, GridHeight: 4},
		"bad mode":       {Mode: WrapMode(9)},
	}
	for name, a := range cases {
		_, err := root.AddBitmap(pixfmt.Owned(solid(4, 4, 0)), "x", 0, a)
		assert.True(t, errors.Is(err, ErrInvalidAnimation), name)
	}

	_, err := root.AddBitmapSet(nil, "set", 0, nil)
	assert.True(t, errors.Is(err, ErrInvalidAnimation))
	_, err = root.AddBitmapSet([]pixfmt.Handle{pixfmt.Owned(solid(2, 2, 0))}, "set", 0, &Animation{GridWidth: 1, GridHeight: 1})
	assert.True(t, errors.Is(err, ErrInvalidAnimation))
	assert.Empty(t, root.Bitmaps())
}

func TestBitmapFiles(t *testing.T) {
	dec := mapDecoder{
		"a.png": solid(3, 3, 1),
		"b.png": solid(4, 4, 2),
		"c.png": solid(5, 5, 3),
	}
	in := NewInput(dec)
	e, err := in.Root().AddBitmapFile("a.png", "a", 0, nil)
	require.NoError(t, err)
	assert.Len(t, e.Frames(), 1)

	_, err = in.Root().AddBitmapFile("missing.png", "m", 0, nil)
	assert.True(t, errors.Is(err, ErrDecode))

	set, err := in.Root().AddBitmapSetFiles([]string{"a.png", "b.png"}, "set", 0, &Animation{FrameDuration: 0.5, Mode: Clamp})
	require.NoError(t, err)
	assert.Len(t, set.Frames(), 2)

	_, err = in.Root().AddBitmapSetFiles([]string{"c.png", "missing.png"}, "bad", 0, nil)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Nil(t, dec["c.png"].Pix, "frames decoded before the failure are released")
	assert.Len(t, in.Root().Bitmaps(), 2)
}

func TestAddFont(t *testing.T) {
	face := &fakeFace{}
	root := NewInput(nil).Root()
	font, err := root.AddFont(face, "mono", 5, FontParams{Characters: []rune("abca"), MaxWidth: 6, MaxHeight: 8})
	require.NoError(t, err)
	require.Len(t, font.Characters, 3)
	assert.Equal(t, 3, face.calls)
	for _, c := range font.Characters {
		assert.LessOrEqual(t, c.Bitmap().Width, 6)
		assert.LessOrEqual(t, c.Bitmap().Height, 8)
	}

	ascii, err := root.AddFont(&fakeFace{}, "ascii", 0, FontParams{})
	require.NoError(t, err)
	assert.Len(t, ascii.Characters, 95)

	_, err = root.AddFont(&fakeFace{missing: 'q'}, "broken", 0, FontParams{})
	assert.True(t, errors.Is(err, ErrDecode))
	assert.Len(t, root.Fonts(), 2)
}
