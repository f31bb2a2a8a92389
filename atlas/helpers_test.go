package atlas

import (
	"fmt"
	"image"
	"testing"

	"atlaspack/codec"
	"atlaspack/pixfmt"
)

// solid returns a w×h BGRA8 buffer filled with a colour derived from seed.
func solid(w, h, seed int) *pixfmt.Buffer {
	b := pixfmt.New(w, h, pixfmt.BGRA8)
	b.Fill(pixfmt.Color{
		R: float32(seed%7) / 6,
		G: float32(seed%5) / 4,
		B: float32(seed%3) / 2,
		A: 1,
	})
	return b
}

// gradient returns a w×h buffer of format f where every pixel differs.
func gradient(w, h int, f pixfmt.Format) *pixfmt.Buffer {
	b := pixfmt.New(w, h, f)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y, pixfmt.Color{R: float32(x) / float32(w), G: float32(y) / float32(h), B: 0.5, A: 1})
		}
	}
	return b
}

// fakeFace renders boxes whose size depends on the code point.
type fakeFace struct {
	missing rune
	calls   int
}

func (f *fakeFace) RenderGlyph(r rune, maxWidth, maxHeight int) (codec.Glyph, error) {
	f.calls++
	if r == f.missing {
		return codec.Glyph{}, fmt.Errorf("%w: %U", codec.ErrGlyphMissing, r)
	}
	w, h := 4+int(r)%9, 6+int(r)%7
	if maxWidth > 0 {
		w = min(w, maxWidth)
	}
	if maxHeight > 0 {
		h = min(h, maxHeight)
	}
	b := pixfmt.New(w, h, pixfmt.Gray8)
	b.Fill(pixfmt.Color{R: 1, G: 1, B: 1, A: 1})
	return codec.Glyph{Bitmap: b, Advance: w + 1, BearingX: int(r) % 3, BearingY: h}, nil
}

// mapDecoder serves buffers by path.
type mapDecoder map[string]*pixfmt.Buffer

func (d mapDecoder) Decode(path string) (*pixfmt.Buffer, error) {
	b, ok := d[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", codec.ErrUnsupported, path)
	}
	return b, nil
}

// checkPages verifies that layouts on the same page never overlap once
// grown right and down by padding, and that every layout lies inside its page.
func checkPages(t *testing.T, out *Output) {
	t.Helper()
	for idx, p := range out.Pages {
		for i, a := range p.Rects {
			if a.Page != idx {
				t.Errorf("page %d holds layout of page %d", idx, a.Page)
			}
			if a.X < 0 || a.Y < 0 || a.X+a.Width > p.Width || a.Y+a.Height > p.Height {
				t.Errorf("page %d: %+v outside %dx%d", idx, a, p.Width, p.Height)
			}
			ra := image.Rect(a.X, a.Y, a.X+a.Width+p.Padding, a.Y+a.Height+p.Padding)
			for _, b := range p.Rects[i+1:] {
				rb := image.Rect(b.X, b.Y, b.X+b.Width+p.Padding, b.Y+b.Height+p.Padding)
				if ra.Overlaps(rb) {
					t.Errorf("page %d: %+v and %+v overlap", idx, a, b)
				}
			}
		}
	}
}

// leafLayouts flattens every layout of out in walk order.
func leafLayouts(out *Output) []Layout {
	var ls []Layout
	out.Walk(func(l OutputLeaf) error {
		switch {
		case l.Bitmap != nil && l.Bitmap.Animation != nil:
			ls = append(ls, l.Bitmap.Animation.Frames...)
		case l.Bitmap != nil:
			ls = append(ls, l.Bitmap.Layout)
		default:
			for _, c := range l.Font.Characters {
				ls = append(ls, c.Layout)
			}
		}
		return nil
	})
	return ls
}
