package pixfmt

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Color is a non-premultiplied RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// ColorFrom converts any color.Color to a non-premultiplied Color.
func ColorFrom(c color.Color) Color {
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return Color{
		R: float32(n.R) / 0xffff,
		G: float32(n.G) / 0xffff,
		B: float32(n.B) / 0xffff,
		A: float32(n.A) / 0xffff,
	}
}

// Luminance returns the Rec. 601 luma of c.
func (c Color) Luminance() float32 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// Buffer is a decoded bitmap. 8-bit formats store their components in Pix,
// float formats in Float. Stride counts components, not bytes, so a Buffer
// may be a window into a larger one.
type Buffer struct {
	Width, Height int
	Format        Format
	Stride        int
	Pix           []uint8
	Float         []float32
}

// New allocates a zeroed buffer.
func New(width, height int, f Format) *Buffer {
	b := &Buffer{Width: width, Height: height, Format: f, Stride: width * f.Channels()}
	n := b.Stride * height
	if f.IsFloat() {
		b.Float = make([]float32, n)
	} else {
		b.Pix = make([]uint8, n)
	}
	return b
}

// Bounds returns the buffer rectangle anchored at the origin.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Empty reports whether the buffer has no pixels.
func (b *Buffer) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0
}

func (b *Buffer) offset(x, y int) int {
	return y*b.Stride + x*b.Format.Channels()
}

// At returns the pixel at (x, y).
func (b *Buffer) At(x, y int) Color {
	i := b.offset(x, y)
	switch b.Format {
	case Gray8:
		v := float32(b.Pix[i]) / 255
		return Color{v, v, v, 1}
	case BGR8:
		p := b.Pix[i : i+3 : i+3]
		return Color{float32(p[2]) / 255, float32(p[1]) / 255, float32(p[0]) / 255, 1}
	case BGRA8:
		p := b.Pix[i : i+4 : i+4]
		return Color{float32(p[2]) / 255, float32(p[1]) / 255, float32(p[0]) / 255, float32(p[3]) / 255}
	case GrayF32:
		v := b.Float[i]
		return Color{v, v, v, 1}
	case RGBF32:
		p := b.Float[i : i+3 : i+3]
		return Color{p[0], p[1], p[2], 1}
	case RGBAF32:
		p := b.Float[i : i+4 : i+4]
		return Color{p[0], p[1], p[2], p[3]}
	}
	return Color{}
}

// Set writes c at (x, y), converting it to the buffer format.
func (b *Buffer) Set(x, y int, c Color) {
	i := b.offset(x, y)
	switch b.Format {
	case Gray8:
		b.Pix[i] = unorm8(c.Luminance())
	case BGR8:
		p := b.Pix[i : i+3 : i+3]
		p[0], p[1], p[2] = unorm8(c.B), unorm8(c.G), unorm8(c.R)
	case BGRA8:
		p := b.Pix[i : i+4 : i+4]
		p[0], p[1], p[2], p[3] = unorm8(c.B), unorm8(c.G), unorm8(c.R), unorm8(c.A)
	case GrayF32:
		b.Float[i] = c.Luminance()
	case RGBF32:
		p := b.Float[i : i+3 : i+3]
		p[0], p[1], p[2] = c.R, c.G, c.B
	case RGBAF32:
		p := b.Float[i : i+4 : i+4]
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	}
}

func unorm8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}

// Sub returns a window into b sharing its pixels. The rectangle is clipped
// to the buffer.
func (b *Buffer) Sub(r image.Rectangle) *Buffer {
	r = r.Intersect(b.Bounds())
	sub := &Buffer{Width: r.Dx(), Height: r.Dy(), Format: b.Format, Stride: b.Stride}
	if r.Empty() {
		return sub
	}
	start := b.offset(r.Min.X, r.Min.Y)
	end := b.offset(r.Max.X-1, r.Max.Y-1) + b.Format.Channels()
	if b.Format.IsFloat() {
		sub.Float = b.Float[start:end:end]
	} else {
		sub.Pix = b.Pix[start:end:end]
	}
	return sub
}

// Clone returns a tightly packed copy of b.
func (b *Buffer) Clone() *Buffer {
	c := New(b.Width, b.Height, b.Format)
	c.CopyFrom(b, 0, 0)
	return c
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c Color) {
	if b.Empty() {
		return
	}
	for x := 0; x < b.Width; x++ {
		b.Set(x, 0, c)
	}
	row := b.Width * b.Format.Channels()
	for y := 1; y < b.Height; y++ {
		if b.Format.IsFloat() {
			copy(b.Float[y*b.Stride:y*b.Stride+row], b.Float[:row])
		} else {
			copy(b.Pix[y*b.Stride:y*b.Stride+row], b.Pix[:row])
		}
	}
}

// Convert returns b in format f. When b already is in f it is returned
// unchanged, otherwise a new buffer is allocated.
func Convert(b *Buffer, f Format) *Buffer {
	if b.Format == f {
		return b
	}
	dst := New(b.Width, b.Height, f)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			dst.Set(x, y, b.At(x, y))
		}
	}
	return dst
}

// CopyFrom copies src into b with its top-left corner at (x, y). Both
// buffers must share a format and src must fit inside b.
func (b *Buffer) CopyFrom(src *Buffer, x, y int) error {
	if src.Format != b.Format {
		return fmt.Errorf("pixfmt: copy from %v into %v buffer", src.Format, b.Format)
	}
	dr := image.Rect(x, y, x+src.Width, y+src.Height)
	if !dr.In(b.Bounds()) {
		return fmt.Errorf("pixfmt: copy rectangle %v outside %v", dr, b.Bounds())
	}
	row := src.Width * src.Format.Channels()
	for sy := 0; sy < src.Height; sy++ {
		si := sy * src.Stride
		di := b.offset(x, y+sy)
		if b.Format.IsFloat() {
			copy(b.Float[di:di+row], src.Float[si:si+row])
		} else {
			copy(b.Pix[di:di+row], src.Pix[si:si+row])
		}
	}
	return nil
}

// Extrude replicates the outermost pixels of r one pixel outwards. r must
// lie at least one pixel inside b on every side.
func (b *Buffer) Extrude(r image.Rectangle) {
	if r.Empty() || !r.Inset(-1).In(b.Bounds()) {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		b.Set(r.Min.X-1, y, b.At(r.Min.X, y))
		b.Set(r.Max.X, y, b.At(r.Max.X-1, y))
	}
	for x := r.Min.X - 1; x <= r.Max.X; x++ {
		b.Set(x, r.Min.Y-1, b.At(x, r.Min.Y))
		b.Set(x, r.Max.Y, b.At(x, r.Max.Y-1))
	}
}
