package atlas

import (
	"fmt"
	"image/color"

	"atlaspack/pixfmt"
	"atlaspack/rectpack"
)

// Params configures a generator.
type Params struct {
	// Width and Height fix the page size. Zero for both means autosize: pages
	// start small and grow up to MaxWidth×MaxHeight.
	Width, Height int
	// MaxWidth and MaxHeight bound the page size. Zero means
	// rectpack.DefaultSize.
	MaxWidth, MaxHeight int
	// Padding is the gap kept between neighbouring bitmaps.
	Padding int
	// PowerOfTwo rounds page sizes up to powers of two.
	PowerOfTwo bool
	// Square forces square pages.
	Square bool
	// DuplicateBorder surrounds every bitmap with a ring of its own edge
	// pixels so bilinear sampling never reads a neighbour.
	DuplicateBorder bool
	// Background fills page area not covered by a bitmap.
	Background color.NRGBA
	// Merge selects the page pixel format.
	Merge pixfmt.MergeParams
	// MaxPages limits the number of pages, 0 for no limit.
	MaxPages int
	// Heuristic picks the packer's corner scoring.
	Heuristic rectpack.Heuristic
}

// DefaultParams returns autosized pages up to rectpack.DefaultSize with a
// transparent background and every source format accepted.
func DefaultParams() Params {
	return Params{
		MaxWidth:  rectpack.DefaultSize,
		MaxHeight: rectpack.DefaultSize,
		Merge:     pixfmt.DefaultMergeParams(),
	}
}

// Validate checks p for inconsistent values.
func (p Params) Validate() error {
	switch {
	case p.Width < 0, p.Height < 0, p.MaxWidth < 0, p.MaxHeight < 0, p.Padding < 0, p.MaxPages < 0:
		return fmt.Errorf("%w: negative size", ErrInvalidParams)
	case (p.Width == 0) != (p.Height == 0):
		return fmt.Errorf("%w: width and height must both be set or both be 0", ErrInvalidParams)
	case p.MaxWidth > 0 && p.Width > p.MaxWidth, p.MaxHeight > 0 && p.Height > p.MaxHeight:
		return fmt.Errorf("%w: page %dx%d exceeds maximum %dx%d", ErrInvalidParams, p.Width, p.Height, p.MaxWidth, p.MaxHeight)
	case p.Merge.Target != pixfmt.Unknown && !p.Merge.Target.Valid():
		return fmt.Errorf("%w: pixel format %v", ErrInvalidParams, p.Merge.Target)
	}
	return nil
}

// border is the extra space each side of a bitmap takes for the
// replicated edge ring.
func (p Params) border() int {
	if p.DuplicateBorder {
		return 1
	}
	return 0
}

func (p Params) packerOptions() rectpack.Options {
	return rectpack.Options{
		Width:      p.Width,
		Height:     p.Height,
		MaxWidth:   p.MaxWidth,
		MaxHeight:  p.MaxHeight,
		Padding:    p.Padding,
		PowerOfTwo: p.PowerOfTwo,
		Square:     p.Square,
		MaxPages:   p.MaxPages,
		Heuristic:  p.Heuristic,
	}
}
