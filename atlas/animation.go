package atlas

import (
	"fmt"
	"image"

	"atlaspack/pixfmt"
)

// WrapMode decides how out of range frame indices resolve.
type WrapMode uint8

const (
	// Wrap maps index i to i mod K.
	Wrap WrapMode = iota
	// Clamp saturates index i to [0, K-1].
	Clamp
)

var wrapModeNames = [...]string{Wrap: "wrap", Clamp: "clamp"}

func (m WrapMode) String() string {
	if int(m) < len(wrapModeNames) {
		return wrapModeNames[m]
	}
	return fmt.Sprintf("WrapMode(%d)", uint8(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m WrapMode) MarshalText() ([]byte, error) {
	if int(m) >= len(wrapModeNames) {
		return nil, fmt.Errorf("atlas: unknown wrap mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The empty string is Wrap.
func (m *WrapMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "", "wrap":
		*m = Wrap
	case "clamp":
		*m = Clamp
	default:
		return fmt.Errorf("atlas: unknown wrap mode %q", b)
	}
	return nil
}

// Animation describes how a bitmap entry splits into frames.
//
// A grid animation cuts a single bitmap into GridWidth×GridHeight equal
// cells read row by row, dropping the last Skip cells. A bitmap-set leaves
// the grid at 0×0 and takes its frames from the set.
type Animation struct {
	GridWidth, GridHeight int
	Skip                  int
	// FrameDuration is the display time of one frame in seconds.
	FrameDuration float64
	Mode          WrapMode
}

func (a *Animation) isGrid() bool {
	return a.GridWidth > 0 || a.GridHeight > 0
}

func (a *Animation) validate() error {
	switch {
	case a.GridWidth < 0 || a.GridHeight < 0:
		return fmt.Errorf("%w: negative grid %dx%d", ErrInvalidAnimation, a.GridWidth, a.GridHeight)
	case a.isGrid() && (a.GridWidth == 0 || a.GridHeight == 0):
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidAnimation, a.GridWidth, a.GridHeight)
	case a.Skip < 0 || (a.isGrid() && a.Skip/a.GridWidth >= a.GridHeight):
		return fmt.Errorf("%w: skip %d", ErrInvalidAnimation, a.Skip)
	case !a.isGrid() && a.Skip != 0:
		return fmt.Errorf("%w: skip without grid", ErrInvalidAnimation)
	case a.FrameDuration < 0:
		return fmt.Errorf("%w: negative frame duration %v", ErrInvalidAnimation, a.FrameDuration)
	case a.Mode > Clamp:
		return fmt.Errorf("%w: %v", ErrInvalidAnimation, a.Mode)
	}
	return nil
}

// FrameCount returns the number of grid cells that are frames.
func (a *Animation) FrameCount() int {
	if !a.isGrid() {
		return 0
	}
	return a.GridWidth*a.GridHeight - a.Skip
}

// gridFrames cuts b into the animation's cells. The cells share b's pixels.
func (a *Animation) gridFrames(b *pixfmt.Buffer) ([]*pixfmt.Buffer, error) {
	cw, ch := b.Width/a.GridWidth, b.Height/a.GridHeight
	if cw < 1 || ch < 1 {
		return nil, fmt.Errorf("%w: %dx%d bitmap is too small for a %dx%d grid",
			ErrInvalidAnimation, b.Width, b.Height, a.GridWidth, a.GridHeight)
	}
	n := a.FrameCount()
	frames := make([]*pixfmt.Buffer, n)
	for i := range frames {
		x, y := (i%a.GridWidth)*cw, (i/a.GridWidth)*ch
		frames[i] = b.Sub(image.Rect(x, y, x+cw, y+ch))
	}
	return frames, nil
}

// resolveFrame maps any index into [0, n) following mode.
func resolveFrame(i, n int, mode WrapMode) int {
	if n <= 0 {
		return 0
	}
	if mode == Clamp {
		return min(max(i, 0), n-1)
	}
	return ((i % n) + n) % n
}
