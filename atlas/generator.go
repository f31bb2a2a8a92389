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

// PackLayout is the result of the packing step: where every source
// rectangle goes, before any pixel is copied.
type PackLayout struct {
	// Format is the merged pixel format of all pages.
	Format pixfmt.Format
	// NeedsConversion reports whether some source differs from Format.
	NeedsConversion bool
	Pages           []rectpack.Page
	// Rects holds one placement per source rectangle in CollectEntries
	// order. With DuplicateBorder the rectangles include the border ring.
	Rects []rectpack.Rect
	// Used is the share of page area covered by rectangles.
	Used float64
}

// Generator composes the bitmaps of an Input into 2D pages.
type Generator struct {
	Params Params
	Logger *log.Logger
}

// NewGenerator validates p and returns a generator that logs nowhere.
func NewGenerator(p Params) (*Generator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		Params: p,
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
	}, nil
}

// ComputeResult packs and assembles in. On error nothing is produced.
func (g *Generator) ComputeResult(in *Input) (*Output, error) {
	layout, err := g.Pack(in)
	if err != nil {
		return nil, err
	}
	return g.Assemble(in, layout)
}

// Pack merges the source formats and places every source rectangle.
func (g *Generator) Pack(in *Input) (*PackLayout, error) {
	if err := g.Params.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	sources := collectSources(in.CollectEntries())
	format, convert := mergeFormats(g.Params.Merge, sources)

	packer, err := rectpack.NewPacker(g.Params.packerOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	b := g.Params.border()
	for i, src := range sources {
		packer.Insert(rectpack.NewSizeID(i, src.Width+2*b, src.Height+2*b))
	}
	if err := packer.Pack(); err != nil {
		if errors.Is(err, rectpack.ErrOverflow) {
			return nil, fmt.Errorf("%w: %w", ErrPackingOverflow, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrEmptyBitmap, err)
	}

	pl := &PackLayout{
		Format:          format,
		NeedsConversion: convert,
		Pages:           packer.Pages(),
		Rects:           packer.Rects(),
		Used:            packer.Used(),
	}
	g.Logger.Debug("packed", "rects", len(pl.Rects), "pages", len(pl.Pages),
		"used", fmt.Sprintf("%.1f%%", pl.Used*100), "elapsed", time.Since(start))
	return pl, nil
}

// Assemble copies every source into the pages of layout. layout must come
// from Pack on the same, unchanged Input.
func (g *Generator) Assemble(in *Input, layout *PackLayout) (*Output, error) {
	start := time.Now()
	sources := collectSources(in.CollectEntries())
	if len(sources) != len(layout.Rects) {
		return nil, fmt.Errorf("%w: layout has %d rectangles, input has %d",
			ErrInvalidParams, len(layout.Rects), len(sources))
	}

	out := &Output{Kind: KindPages, Format: layout.Format}
	bg := pixfmt.ColorFrom(g.Params.Background)
	for _, p := range layout.Pages {
		img := pixfmt.New(p.Width, p.Height, layout.Format)
		img.Fill(bg)
		out.Pages = append(out.Pages, Page{Width: p.Width, Height: p.Height, Padding: g.Params.Padding, Image: img})
	}

	b := g.Params.border()
	layouts := make([]Layout, len(sources))
	for i, src := range sources {
		r := layout.Rects[i]
		if r.ID != i || r.Page < 0 || r.Page >= len(out.Pages) {
			return nil, fmt.Errorf("%w: rectangle %d does not match the input", ErrInvalidParams, i)
		}
		page := &out.Pages[r.Page]
		inner := image.Rect(r.X+b, r.Y+b, r.X+b+src.Width, r.Y+b+src.Height)
		if err := page.Image.CopyFrom(pixfmt.Convert(src, layout.Format), inner.Min.X, inner.Min.Y); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
		if b > 0 {
			page.Image.Extrude(inner)
		}
		l := Layout{Page: r.Page, X: inner.Min.X, Y: inner.Min.Y, Width: src.Width, Height: src.Height}
		page.Rects = append(page.Rects, l)
		layouts[i] = l
	}
	out.Root, _ = buildTree(in.Root(), layouts)

	g.Logger.Debug("assembled", "pages", len(out.Pages), "format", out.Format, "elapsed", time.Since(start))
	return out, nil
}

// collectSources lists the buffer behind every packed rectangle in entry
// order: the frames of a bitmap, then the glyphs of a font.
func collectSources(entries []Entry) []*pixfmt.Buffer {
	var out []*pixfmt.Buffer
	for _, e := range entries {
		if e.Bitmap != nil {
			out = append(out, e.Bitmap.Frames()...)
			continue
		}
		for _, c := range e.Font.Characters {
			out = append(out, c.Bitmap())
		}
	}
	return out
}

func mergeFormats(p pixfmt.MergeParams, sources []*pixfmt.Buffer) (pixfmt.Format, bool) {
	m := pixfmt.NewMerger(p)
	for _, src := range sources {
		m.Merge(src.Format)
	}
	return m.Result(), m.NeedsConversion()
}
