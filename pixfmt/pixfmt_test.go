package pixfmt

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allFormats = []Format{Gray8, BGR8, BGRA8, GrayF32, RGBF32, RGBAF32}

func TestMergeUpgrades(t *testing.T) {
	tests := []struct {
		name   string
		params MergeParams
		in     []Format
		want   Format
	}{
		{"gray+bgra", DefaultMergeParams(), []Format{Gray8, BGRA8}, BGRA8},
		{"gray only", DefaultMergeParams(), []Format{Gray8, Gray8}, Gray8},
		{"8bit+float", DefaultMergeParams(), []Format{BGR8, GrayF32}, RGBF32},
		{"no luminance", MergeParams{AcceptFloat: true}, []Format{Gray8}, BGR8},
		{"no float", MergeParams{AcceptLuminance: true}, []Format{RGBAF32, Gray8}, BGRA8},
		{"fixed target", MergeParams{Target: GrayF32}, []Format{BGRA8, BGR8}, GrayF32},
		{"empty", DefaultMergeParams(), nil, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMerger(tt.params)
			for _, f := range tt.in {
				m.Merge(f)
			}
			assert.Equal(t, tt.want, m.Result())
		})
	}
}

func TestMergeOrderIndependent(t *testing.T) {
	for _, p := range []MergeParams{DefaultMergeParams(), {}, {AcceptLuminance: true}, {AcceptFloat: true}} {
		for _, a := range allFormats {
			for _, b := range allFormats {
				ab := NewMerger(p)
				ab.Merge(a)
				ab.Merge(b)
				ba := NewMerger(p)
				ba.Merge(b)
				ba.Merge(a)
				require.Equal(t, ab.Result(), ba.Result(), "%v %v", a, b)

				r := ab.Result()
				assert.GreaterOrEqual(t, r.Channels(), max(a.Channels(), b.Channels()))
				if p.AcceptFloat {
					assert.GreaterOrEqual(t, int(r.Type()), int(max(a.Type(), b.Type())))
				}
			}
		}
	}
}

func TestMergeNeedsConversion(t *testing.T) {
	m := NewMerger(DefaultMergeParams())
	m.Merge(BGRA8)
	assert.False(t, m.NeedsConversion())
	m.Merge(Gray8)
	assert.True(t, m.NeedsConversion())

	m.Reset(MergeParams{Target: BGR8})
	m.Merge(BGR8)
	assert.False(t, m.NeedsConversion())
	m.Merge(BGRA8)
	assert.True(t, m.NeedsConversion())
	assert.Equal(t, BGR8, m.Result())
}

func TestParseFormat(t *testing.T) {
	for _, f := range allFormats {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("rgb565")
	assert.Error(t, err)
}

func TestConvertExact8Bit(t *testing.T) {
	src := New(3, 2, BGRA8)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, Color{R: float32(x) / 255 * 40, G: float32(y) / 255 * 90, B: 7.0 / 255, A: 1})
		}
	}
	back := Convert(Convert(src, RGBAF32), BGRA8)
	assert.Equal(t, src.Pix, back.Pix)

	bgr := Convert(src, BGR8)
	assert.Equal(t, BGR8, bgr.Format)
	assert.Equal(t, src.At(2, 1), bgr.At(2, 1))
	assert.Same(t, src, Convert(src, BGRA8))
}

func TestGrayPromotion(t *testing.T) {
	g := New(1, 1, Gray8)
	g.Pix[0] = 200
	c := Convert(g, BGRA8)
	assert.Equal(t, []uint8{200, 200, 200, 255}, c.Pix)
}

func TestSubSharesPixels(t *testing.T) {
	b := New(4, 4, Gray8)
	sub := b.Sub(image.Rect(1, 1, 3, 4))
	require.Equal(t, 2, sub.Width)
	require.Equal(t, 3, sub.Height)
	sub.Set(1, 2, Color{1, 1, 1, 1})
	assert.Equal(t, uint8(255), b.Pix[3*4+2])
}

func TestCopyFromAndExtrude(t *testing.T) {
	dst := New(4, 4, Gray8)
	src := New(2, 2, Gray8)
	copy(src.Pix, []uint8{10, 20, 30, 40})
	require.NoError(t, dst.CopyFrom(src, 1, 1))
	dst.Extrude(image.Rect(1, 1, 3, 3))
	assert.Equal(t, []uint8{
		10, 10, 20, 20,
		10, 10, 20, 20,
		30, 30, 40, 40,
		30, 30, 40, 40,
	}, dst.Pix)

	assert.Error(t, dst.CopyFrom(src, 3, 3))
	assert.Error(t, dst.CopyFrom(New(1, 1, BGR8), 0, 0))
}

func TestFill(t *testing.T) {
	b := New(3, 2, BGR8)
	b.Fill(Color{R: 1, A: 1})
	for i := 0; i < len(b.Pix); i += 3 {
		assert.Equal(t, []uint8{0, 0, 255}, b.Pix[i:i+3])
	}
}

func TestImageBridge(t *testing.T) {
	src := New(2, 1, BGRA8)
	src.Set(0, 0, Color{R: 1, A: 0.5})
	src.Set(1, 0, Color{G: 1, A: 1})
	img := src.Image()
	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{R: 255, A: 128}, nrgba.NRGBAAt(0, 0))
	assert.Equal(t, src.Pix, FromImage(img).Pix)

	gray := New(2, 2, Gray8)
	gray.Pix[3] = 99
	back := FromImage(gray.Image())
	assert.Equal(t, Gray8, back.Format)
	assert.Equal(t, gray.Pix, back.Pix)

	opaque := New(1, 1, BGR8)
	opaque.Set(0, 0, Color{R: 1, G: 0.5, A: 1})
	assert.Equal(t, BGR8, FromImage(opaque.Image()).Format)
}

func TestResize(t *testing.T) {
	b := New(2, 2, BGRA8)
	b.Fill(Color{R: 1, A: 1})
	r := Resize(b, 8, 4)
	assert.Equal(t, 8, r.Width)
	assert.Equal(t, 4, r.Height)
	assert.Equal(t, BGRA8, r.Format)
	assert.Equal(t, Color{R: 1, A: 1}, r.At(5, 2))

	f := Resize(Convert(b, RGBF32), 4, 4)
	assert.Equal(t, RGBF32, f.Format)
	assert.InDelta(t, 1, f.At(3, 3).R, 1e-3)
}

func TestHandleRelease(t *testing.T) {
	owned := Owned(New(2, 2, Gray8))
	assert.True(t, owned.IsOwned())
	buf := owned.Buffer()
	owned.Release()
	assert.Nil(t, owned.Buffer())
	assert.Nil(t, buf.Pix)

	kept := New(2, 2, Gray8)
	borrowed := Borrowed(kept)
	assert.False(t, borrowed.IsOwned())
	borrowed.Release()
	borrowed.Release()
	assert.Nil(t, borrowed.Buffer())
	assert.Len(t, kept.Pix, 4)
}
