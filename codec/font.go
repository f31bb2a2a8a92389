package codec

import (
	"errors"
	"fmt"
	"os"

	"atlaspack/pixfmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// ErrGlyphMissing is returned when a font has no glyph for a code point.
var ErrGlyphMissing = errors.New("codec: glyph not in font")

// Glyph is one rasterized character.
type Glyph struct {
	// Bitmap is a Gray8 coverage mask. Glyphs without ink (space) get a
	// single transparent pixel so they still own a place in the atlas.
	Bitmap *pixfmt.Buffer
	// Advance is the horizontal pen advance in pixels.
	Advance int
	// BearingX is the offset from the pen position to the left edge of the
	// bitmap, BearingY the offset from the baseline up to its top edge.
	BearingX, BearingY int
}

// GlyphRenderer rasterizes single code points, cropped to maxWidth×maxHeight.
// A zero maximum means unbounded.
type GlyphRenderer interface {
	RenderGlyph(r rune, maxWidth, maxHeight int) (Glyph, error)
}

// Face rasterizes glyphs from an OpenType/TrueType font with
// golang.org/x/image/font/opentype.
type Face struct {
	face font.Face
}

var _ GlyphRenderer = (*Face)(nil)

// NewFace parses font data and prepares a face of the given pixel size.
func NewFace(data []byte, size float64) (*Face, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("codec: failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("codec: failed to create face: %w", err)
	}
	return &Face{face: face}, nil
}

// LoadFace reads a font file and calls NewFace.
func LoadFace(path string, size float64) (*Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codec: read font %s: %w", path, err)
	}
	return NewFace(data, size)
}

// Close releases the face.
func (f *Face) Close() error {
	return f.face.Close()
}

// RenderGlyph implements GlyphRenderer.
func (f *Face) RenderGlyph(r rune, maxWidth, maxHeight int) (Glyph, error) {
	dr, mask, maskp, advance, ok := f.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, fmt.Errorf("%w: %U", ErrGlyphMissing, r)
	}
	g := Glyph{
		Advance:  advance.Round(),
		BearingX: dr.Min.X,
		BearingY: -dr.Min.Y,
	}
	if maxWidth > 0 && dr.Dx() > maxWidth {
		dr.Max.X = dr.Min.X + maxWidth
	}
	if maxHeight > 0 && dr.Dy() > maxHeight {
		dr.Max.Y = dr.Min.Y + maxHeight
	}
	if dr.Empty() {
		g.Bitmap = pixfmt.New(1, 1, pixfmt.Gray8)
		return g, nil
	}

	// The mask is reused by the face, copy it out right away.
	b := pixfmt.New(dr.Dx(), dr.Dy(), pixfmt.Gray8)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			b.Pix[y*b.Stride+x] = uint8(a >> 8)
		}
	}
	g.Bitmap = b
	return g, nil
}

// Metrics returns the face's line metrics in whole pixels.
func (f *Face) Metrics() (ascent, descent, height int) {
	m := f.face.Metrics()
	return m.Ascent.Round(), m.Descent.Round(), m.Height.Round()
}
