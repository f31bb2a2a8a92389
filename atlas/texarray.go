package atlas

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"atlaspack/pixfmt"
	"atlaspack/rectpack"

	"github.com/charmbracelet/log"
)

// TextureArrayGenerator gives every source rectangle its own slice of a
// texture array. All slices share one canvas size; nothing is composited
// across entries, so sampling never bleeds between them.
type TextureArrayGenerator struct {
	Params Params
	// Stretch scales every bitmap to fill its slice instead of placing it
	// in the top-left corner.
	Stretch bool
	Logger  *log.Logger
}

// NewTextureArrayGenerator validates p and returns a generator that logs
// nowhere.
func NewTextureArrayGenerator(p Params, stretch bool) (*TextureArrayGenerator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &TextureArrayGenerator{
		Params:  p,
		Stretch: stretch,
		Logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}, nil
}

// ComputeResult builds one slice per source rectangle. The slice size is
// Params.Width×Params.Height, or the largest source when autosizing, rounded
// like a page.
func (g *TextureArrayGenerator) ComputeResult(in *Input) (*Output, error) {
	p := g.Params
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	sources := collectSources(in.CollectEntries())
	format, _ := mergeFormats(p.Merge, sources)
	out := &Output{Kind: KindTextureArray, Format: format}
	if len(sources) == 0 {
		out.Root, _ = buildTree(in.Root(), nil)
		return out, nil
	}
	if p.MaxPages > 0 && len(sources) > p.MaxPages {
		return nil, fmt.Errorf("%w: %d slices, limit is %d", ErrPackingOverflow, len(sources), p.MaxPages)
	}

	b := p.border()
	w, h := p.Width, p.Height
	if w == 0 {
		for _, src := range sources {
			w, h = max(w, src.Width+2*b), max(h, src.Height+2*b)
		}
	}
	opts := p.packerOptions()
	opts.Width, opts.Height, opts.Padding, opts.MaxPages = w, h, 0, 1
	packer, err := rectpack.NewPacker(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPackingOverflow, err)
	}
	w, h = packer.Options().Width, packer.Options().Height

	bg := pixfmt.ColorFrom(p.Background)
	layouts := make([]Layout, len(sources))
	for i, src := range sources {
		packer.Clear()
		packer.Insert(rectpack.NewSizeID(i, src.Width+2*b, src.Height+2*b))
		if err := packer.Pack(); err != nil {
			if errors.Is(err, rectpack.ErrOverflow) {
				return nil, fmt.Errorf("%w: %w", ErrPackingOverflow, err)
			}
			return nil, fmt.Errorf("%w: %w", ErrEmptyBitmap, err)
		}

		img := pixfmt.New(w, h, format)
		img.Fill(bg)
		cw, ch := src.Width, src.Height
		conv := pixfmt.Convert(src, format)
		if g.Stretch {
			cw, ch = w-2*b, h-2*b
			conv = pixfmt.Resize(conv, cw, ch)
		}
		inner := image.Rect(b, b, b+cw, b+ch)
		if err := img.CopyFrom(conv, b, b); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
		if b > 0 {
			img.Extrude(inner)
		}
		layouts[i] = Layout{Page: i, X: b, Y: b, Width: cw, Height: ch}
		out.Pages = append(out.Pages, Page{Width: w, Height: h, Image: img, Rects: []Layout{layouts[i]}})
	}
	out.Root, _ = buildTree(in.Root(), layouts)

	g.Logger.Debug("built texture array", "slices", len(out.Pages), "size", fmt.Sprintf("%dx%d", w, h),
		"format", format, "elapsed", time.Since(start))
	return out, nil
}
