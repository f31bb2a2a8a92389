package pixfmt

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// FromImage decodes an image.Image into a Buffer. Gray images become Gray8,
// 16-bit images become float buffers, opaque color images BGR8 and
// everything else BGRA8.
func FromImage(img image.Image) *Buffer {
	r := img.Bounds()
	switch src := img.(type) {
	case *image.Gray:
		b := New(r.Dx(), r.Dy(), Gray8)
		for y := 0; y < b.Height; y++ {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			copy(b.Pix[y*b.Stride:(y+1)*b.Stride], src.Pix[i:i+b.Width])
		}
		return b
	case *image.Alpha:
		b := New(r.Dx(), r.Dy(), Gray8)
		for y := 0; y < b.Height; y++ {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			copy(b.Pix[y*b.Stride:(y+1)*b.Stride], src.Pix[i:i+b.Width])
		}
		return b
	case *image.Gray16:
		b := New(r.Dx(), r.Dy(), GrayF32)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				v := src.Gray16At(r.Min.X+x, r.Min.Y+y).Y
				b.Float[y*b.Stride+x] = float32(v) / 0xffff
			}
		}
		return b
	case *image.NRGBA64, *image.RGBA64:
		b := New(r.Dx(), r.Dy(), RGBAF32)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				b.Set(x, y, ColorFrom(img.At(r.Min.X+x, r.Min.Y+y)))
			}
		}
		return b
	}

	f := BGRA8
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		f = BGR8
	}
	nrgba := imaging.Clone(img)
	b := New(r.Dx(), r.Dy(), f)
	ch := f.Channels()
	for y := 0; y < b.Height; y++ {
		si := y * nrgba.Stride
		di := y * b.Stride
		for x := 0; x < b.Width; x++ {
			p := nrgba.Pix[si : si+4 : si+4]
			b.Pix[di], b.Pix[di+1], b.Pix[di+2] = p[2], p[1], p[0]
			if ch == 4 {
				b.Pix[di+3] = p[3]
			}
			si += 4
			di += ch
		}
	}
	return b
}

// Image returns a copy of b as a standard library image suitable for
// encoding. Float formats are quantized to 16 bits per channel.
func (b *Buffer) Image() image.Image {
	r := b.Bounds()
	switch b.Format {
	case Gray8:
		img := image.NewGray(r)
		for y := 0; y < b.Height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+b.Width], b.Pix[y*b.Stride:])
		}
		return img
	case BGR8:
		img := image.NewRGBA(r)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				i, j := b.offset(x, y), img.PixOffset(x, y)
				img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = b.Pix[i+2], b.Pix[i+1], b.Pix[i], 0xff
			}
		}
		return img
	case BGRA8:
		img := image.NewNRGBA(r)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				i, j := b.offset(x, y), img.PixOffset(x, y)
				img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = b.Pix[i+2], b.Pix[i+1], b.Pix[i], b.Pix[i+3]
			}
		}
		return img
	case GrayF32:
		img := image.NewGray16(r)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: unorm16(b.Float[b.offset(x, y)])})
			}
		}
		return img
	case RGBF32, RGBAF32:
		img := image.NewNRGBA64(r)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				c := b.At(x, y)
				img.SetNRGBA64(x, y, color.NRGBA64{R: unorm16(c.R), G: unorm16(c.G), B: unorm16(c.B), A: unorm16(c.A)})
			}
		}
		return img
	}
	return image.NewNRGBA(image.Rectangle{})
}

func unorm16(v float32) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

// Resize scales b to width×height with linear filtering and returns the
// result in b's format.
func Resize(b *Buffer, width, height int) *Buffer {
	if b.Width == width && b.Height == height {
		return b.Clone()
	}
	if !b.Format.IsFloat() {
		return Convert(FromImage(imaging.Resize(b.Image(), width, height, imaging.Linear)), b.Format)
	}
	dst := image.NewNRGBA64(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), b.Image(), b.Bounds(), draw.Src, nil)
	return Convert(FromImage(dst), b.Format)
}
