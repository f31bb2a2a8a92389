package atlas

import (
	"errors"
	"fmt"
	"strings"

	"atlaspack/pixfmt"
)

// Kind tells how an Output's pages are meant to be used.
type Kind uint8

const (
	// KindPages is a set of independent 2D pages.
	KindPages Kind = iota
	// KindTextureArray is a stack of equally sized slices, one entry each.
	KindTextureArray
)

var kindNames = [...]string{KindPages: "pages", KindTextureArray: "texture_array"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("atlas: unknown kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("atlas: unknown kind %q", b)
}

// Layout is where a bitmap ended up: the page (or slice) index and the
// rectangle inside it.
type Layout struct {
	Page                int
	X, Y, Width, Height int
}

// Page is one image of the atlas.
type Page struct {
	Width, Height int
	Padding       int
	Image         *pixfmt.Buffer
	// Rects lists the layouts placed on this page in packing order.
	Rects []Layout
}

// Output is a generated atlas. Its folder tree mirrors the Input it was
// generated from: same names, same order.
type Output struct {
	Kind   Kind
	Format pixfmt.Format
	Pages  []Page
	Root   *OutputFolder
}

// OutputFolder mirrors a Folder.
type OutputFolder struct {
	Name    string
	Bitmaps []*OutputBitmap
	Fonts   []*OutputFont
	Folders []*OutputFolder
}

// OutputBitmap mirrors a BitmapEntry. For animations Layout is the first
// frame.
type OutputBitmap struct {
	Name      string
	Tag       uint32
	Layout    Layout
	Animation *OutputAnimation
}

// OutputAnimation holds the resolved frames of an animated bitmap.
type OutputAnimation struct {
	GridWidth, GridHeight int
	Skip                  int
	FrameDuration         float64
	Mode                  WrapMode
	Frames                []Layout
}

// Frame returns frame i, wrapped or clamped into range.
func (a *OutputAnimation) Frame(i int) Layout {
	if len(a.Frames) == 0 {
		return Layout{}
	}
	return a.Frames[resolveFrame(i, len(a.Frames), a.Mode)]
}

// FrameAt returns the frame shown t seconds into the animation.
func (a *OutputAnimation) FrameAt(t float64) Layout {
	if a.FrameDuration <= 0 {
		return a.Frame(0)
	}
	return a.Frame(int(t / a.FrameDuration))
}

// OutputFont mirrors a FontEntry.
type OutputFont struct {
	Name                string
	Tag                 uint32
	MaxWidth, MaxHeight int
	Characters          []OutputCharacter
}

// OutputCharacter is a placed glyph with its metrics.
type OutputCharacter struct {
	Code rune
	Layout
	Advance            int
	BearingX, BearingY int
}

// Character looks up the glyph for r.
func (f *OutputFont) Character(r rune) (OutputCharacter, bool) {
	for _, c := range f.Characters {
		if c.Code == r {
			return c, true
		}
	}
	return OutputCharacter{}, false
}

// OutputLeaf is a bitmap or font together with its folder path.
// Exactly one of Bitmap and Font is set.
type OutputLeaf struct {
	Path   string
	Bitmap *OutputBitmap
	Font   *OutputFont
}

// Walk calls fn for every leaf in CollectEntries order and stops at the
// first error.
func (o *Output) Walk(fn func(OutputLeaf) error) error {
	if o.Root == nil {
		return nil
	}
	return o.Root.walk("", fn)
}

func (f *OutputFolder) walk(path string, fn func(OutputLeaf) error) error {
	for _, b := range f.Bitmaps {
		if err := fn(OutputLeaf{Path: path, Bitmap: b}); err != nil {
			return err
		}
	}
	for _, fe := range f.Fonts {
		if err := fn(OutputLeaf{Path: path, Font: fe}); err != nil {
			return err
		}
	}
	for _, sub := range f.Folders {
		if err := sub.walk(joinPath(path, sub.Name), fn); err != nil {
			return err
		}
	}
	return nil
}

// Folder returns the folder at the slash separated path. "" is the root.
func (o *Output) Folder(path string) (*OutputFolder, bool) {
	f := o.Root
	if f == nil {
		return nil, false
	}
	if path == "" {
		return f, true
	}
	for _, name := range strings.Split(path, "/") {
		var next *OutputFolder
		for _, sub := range f.Folders {
			if sub.Name == name {
				next = sub
				break
			}
		}
		if next == nil {
			return nil, false
		}
		f = next
	}
	return f, true
}

// Bitmap looks up a bitmap by its slash separated path, e.g. "ui/button".
func (o *Output) Bitmap(path string) (*OutputBitmap, bool) {
	dir, name := splitPath(path)
	f, ok := o.Folder(dir)
	if !ok {
		return nil, false
	}
	for _, b := range f.Bitmaps {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Font looks up a font by its slash separated path.
func (o *Output) Font(path string) (*OutputFont, bool) {
	dir, name := splitPath(path)
	f, ok := o.Folder(dir)
	if !ok {
		return nil, false
	}
	for _, fe := range f.Fonts {
		if fe.Name == name {
			return fe, true
		}
	}
	return nil, false
}

var errStopWalk = errors.New("atlas: stop walk")

// Tagged finds the leaf carrying a non-zero tag.
func (o *Output) Tagged(tag uint32) (OutputLeaf, bool) {
	if tag == 0 {
		return OutputLeaf{}, false
	}
	var found OutputLeaf
	err := o.Walk(func(l OutputLeaf) error {
		if (l.Bitmap != nil && l.Bitmap.Tag == tag) || (l.Font != nil && l.Font.Tag == tag) {
			found = l
			return errStopWalk
		}
		return nil
	})
	return found, errors.Is(err, errStopWalk)
}

// indexPages rebuilds every Page.Rects from the tree, in walk order.
func (o *Output) indexPages() {
	for i := range o.Pages {
		o.Pages[i].Rects = nil
	}
	add := func(l Layout) {
		o.Pages[l.Page].Rects = append(o.Pages[l.Page].Rects, l)
	}
	o.Walk(func(leaf OutputLeaf) error {
		switch {
		case leaf.Bitmap != nil && leaf.Bitmap.Animation != nil:
			for _, l := range leaf.Bitmap.Animation.Frames {
				add(l)
			}
		case leaf.Bitmap != nil:
			add(leaf.Bitmap.Layout)
		default:
			for _, c := range leaf.Font.Characters {
				add(c.Layout)
			}
		}
		return nil
	})
}

func splitPath(path string) (dir, name string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// buildTree mirrors the Input folder in into an Output folder, taking one
// layout per packed rectangle from layouts in CollectEntries order. It
// returns the layouts it did not consume.
func buildTree(in *Folder, layouts []Layout) (*OutputFolder, []Layout) {
	out := &OutputFolder{Name: in.Name}
	for _, b := range in.bitmaps {
		n := len(b.frames)
		ob := &OutputBitmap{Name: b.Name, Tag: b.Tag, Layout: layouts[0]}
		if a := b.Animation; a != nil {
			ob.Animation = &OutputAnimation{
				GridWidth:     a.GridWidth,
				GridHeight:    a.GridHeight,
				Skip:          a.Skip,
				FrameDuration: a.FrameDuration,
				Mode:          a.Mode,
				Frames:        append([]Layout(nil), layouts[:n]...),
			}
		}
		out.Bitmaps = append(out.Bitmaps, ob)
		layouts = layouts[n:]
	}
	for _, fe := range in.fonts {
		of := &OutputFont{Name: fe.Name, Tag: fe.Tag, MaxWidth: fe.MaxWidth, MaxHeight: fe.MaxHeight}
		for i, c := range fe.Characters {
			of.Characters = append(of.Characters, OutputCharacter{
				Code:     c.Code,
				Layout:   layouts[i],
				Advance:  c.Advance,
				BearingX: c.BearingX,
				BearingY: c.BearingY,
			})
		}
		out.Fonts = append(out.Fonts, of)
		layouts = layouts[len(fe.Characters):]
	}
	for _, sub := range in.folders {
		var of *OutputFolder
		of, layouts = buildTree(sub, layouts)
		out.Folders = append(out.Folders, of)
	}
	return out, layouts
}
