package atlas

import (
	"fmt"
	"io"
	"strings"

	"atlaspack/codec"
	"atlaspack/pixfmt"

	"github.com/charmbracelet/log"
)

// Input is the tree of bitmaps and fonts an atlas is generated from.
//
// Sources are decoded or rasterized as they are added. Buffers added with an
// owning handle belong to the Input until Clear; borrowed buffers must stay
// alive until generation completes.
type Input struct {
	// Decoder reads files for AddBitmapFile and AddBitmapSetFiles.
	Decoder codec.Decoder
	Logger  *log.Logger

	root *Folder
	tags map[uint32]string
}

// NewInput returns an empty Input that decodes files with dec. A nil dec
// selects codec.Imaging.
func NewInput(dec codec.Decoder) *Input {
	if dec == nil {
		dec = codec.Imaging{}
	}
	in := &Input{
		Decoder: dec,
		Logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	in.reset()
	return in
}

func (in *Input) reset() {
	in.root = &Folder{input: in}
	in.tags = make(map[uint32]string)
}

// Root returns the unnamed top folder.
func (in *Input) Root() *Folder {
	return in.root
}

// Clear releases every owned buffer and empties the tree.
func (in *Input) Clear() {
	in.root.release()
	in.reset()
}

// Entry is one leaf of the tree as returned by CollectEntries.
// Exactly one of Bitmap and Font is set.
type Entry struct {
	// Path is the slash separated folder path, "" for the root folder.
	Path   string
	Bitmap *BitmapEntry
	Font   *FontEntry
}

// Name returns the leaf's name.
func (e Entry) Name() string {
	if e.Bitmap != nil {
		return e.Bitmap.Name
	}
	return e.Font.Name
}

// FullPath joins Path and Name.
func (e Entry) FullPath() string {
	return joinPath(e.Path, e.Name())
}

// CollectEntries flattens the tree depth first. Inside a folder bitmaps come
// first, then fonts, then sub-folders, each in insertion order. This is the
// order rectangles are handed to the packer.
func (in *Input) CollectEntries() []Entry {
	var out []Entry
	in.root.collect("", &out)
	return out
}

// Folder is a named node of the Input tree.
type Folder struct {
	Name string

	input   *Input
	parent  *Folder
	folders []*Folder
	bitmaps []*BitmapEntry
	fonts   []*FontEntry
}

// Folders returns the sub-folders in insertion order.
func (f *Folder) Folders() []*Folder { return f.folders }

// Bitmaps returns the bitmap entries in insertion order.
func (f *Folder) Bitmaps() []*BitmapEntry { return f.bitmaps }

// Fonts returns the font entries in insertion order.
func (f *Folder) Fonts() []*FontEntry { return f.fonts }

// Path returns the slash separated path of f, "" for the root.
func (f *Folder) Path() string {
	if f.parent == nil {
		return ""
	}
	return joinPath(f.parent.Path(), f.Name)
}

// AddFolder creates a sub-folder.
func (f *Folder) AddFolder(name string) (*Folder, error) {
	if err := f.checkName(name); err != nil {
		return nil, err
	}
	sub := &Folder{Name: name, input: f.input, parent: f}
	f.folders = append(f.folders, sub)
	return sub, nil
}

// AddBitmap adds a bitmap. With a grid animation the bitmap is cut into
// frames; an animation without grid makes a one frame animation. On error the
// handle is released.
func (f *Folder) AddBitmap(h pixfmt.Handle, name string, tag uint32, anim *Animation) (*BitmapEntry, error) {
	e, err := f.newBitmap([]pixfmt.Handle{h}, name, tag, anim)
	if err != nil {
		h.Release()
		return nil, err
	}
	f.commitBitmap(e)
	return e, nil
}

// AddBitmapFile decodes path with the Input's decoder and adds the result as
// an owned bitmap.
func (f *Folder) AddBitmapFile(path, name string, tag uint32, anim *Animation) (*BitmapEntry, error) {
	if err := f.checkLeaf(name, tag); err != nil {
		return nil, err
	}
	buf, err := f.input.Decoder.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	f.input.Logger.Debug("decoded bitmap", "path", path, "size", fmt.Sprintf("%dx%d", buf.Width, buf.Height), "format", buf.Format)
	return f.AddBitmap(pixfmt.Owned(buf), name, tag, anim)
}

// AddBitmapSet adds an animation whose frames are separate bitmaps, in order.
// anim may be nil for default timing; a grid is rejected. On error every
// handle is released.
func (f *Folder) AddBitmapSet(frames []pixfmt.Handle, name string, tag uint32, anim *Animation) (*BitmapEntry, error) {
	if anim == nil {
		anim = &Animation{}
	}
	var err error
	switch {
	case len(frames) == 0:
		err = fmt.Errorf("%w: bitmap set %q has no frames", ErrInvalidAnimation, name)
	case anim.isGrid():
		err = fmt.Errorf("%w: bitmap set %q cannot use a grid", ErrInvalidAnimation, name)
	}
	var e *BitmapEntry
	if err == nil {
		e, err = f.newBitmap(frames, name, tag, anim)
	}
	if err != nil {
		pixfmt.ReleaseAll(frames)
		return nil, err
	}
	f.commitBitmap(e)
	return e, nil
}

// AddBitmapSetFiles decodes paths in order and adds them as a bitmap set.
func (f *Folder) AddBitmapSetFiles(paths []string, name string, tag uint32, anim *Animation) (*BitmapEntry, error) {
	if err := f.checkLeaf(name, tag); err != nil {
		return nil, err
	}
	frames := make([]pixfmt.Handle, 0, len(paths))
	for _, path := range paths {
		buf, err := f.input.Decoder.Decode(path)
		if err != nil {
			pixfmt.ReleaseAll(frames)
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		frames = append(frames, pixfmt.Owned(buf))
	}
	return f.AddBitmapSet(frames, name, tag, anim)
}

// FontParams selects the characters rasterized for a font entry.
type FontParams struct {
	// Characters lists the code points to rasterize. Duplicates are dropped,
	// an empty list selects printable ASCII.
	Characters []rune
	// MaxWidth and MaxHeight crop every glyph bitmap, 0 means unbounded.
	MaxWidth, MaxHeight int
}

// ASCII returns the 95 printable ASCII characters.
func ASCII() []rune {
	rs := make([]rune, 0, 95)
	for r := rune(' '); r <= '~'; r++ {
		rs = append(rs, r)
	}
	return rs
}

// AddFont rasterizes the requested characters with face and adds them as a
// font entry. Any glyph failure fails the whole call.
func (f *Folder) AddFont(face codec.GlyphRenderer, name string, tag uint32, p FontParams) (*FontEntry, error) {
	if err := f.checkLeaf(name, tag); err != nil {
		return nil, err
	}
	if p.MaxWidth < 0 || p.MaxHeight < 0 {
		return nil, fmt.Errorf("%w: negative glyph size %dx%d", ErrInvalidParams, p.MaxWidth, p.MaxHeight)
	}
	chars := p.Characters
	if len(chars) == 0 {
		chars = ASCII()
	}

	e := &FontEntry{Name: name, Tag: tag, MaxWidth: p.MaxWidth, MaxHeight: p.MaxHeight}
	seen := make(map[rune]bool, len(chars))
	for _, r := range chars {
		if seen[r] {
			continue
		}
		seen[r] = true
		g, err := face.RenderGlyph(r, p.MaxWidth, p.MaxHeight)
		if err == nil && (g.Bitmap == nil || g.Bitmap.Empty()) {
			err = fmt.Errorf("%w: glyph %U", ErrEmptyBitmap, r)
		}
		if err != nil {
			e.release()
			return nil, fmt.Errorf("%w: font %q: %w", ErrDecode, name, err)
		}
		e.Characters = append(e.Characters, &CharacterEntry{
			Code:     r,
			Advance:  g.Advance,
			BearingX: g.BearingX,
			BearingY: g.BearingY,
			glyph:    pixfmt.Owned(g.Bitmap),
		})
	}
	f.input.Logger.Debug("rasterized font", "name", name, "glyphs", len(e.Characters))

	if tag != 0 {
		f.input.tags[tag] = joinPath(f.Path(), name)
	}
	f.fonts = append(f.fonts, e)
	return e, nil
}

func (f *Folder) newBitmap(frames []pixfmt.Handle, name string, tag uint32, anim *Animation) (*BitmapEntry, error) {
	if err := f.checkLeaf(name, tag); err != nil {
		return nil, err
	}
	for i := range frames {
		if b := frames[i].Buffer(); b == nil || b.Empty() {
			return nil, fmt.Errorf("%w: %q frame %d", ErrEmptyBitmap, name, i)
		}
	}
	e := &BitmapEntry{Name: name, Tag: tag, sources: frames}
	if anim == nil {
		e.frames = []*pixfmt.Buffer{frames[0].Buffer()}
		return e, nil
	}
	if err := anim.validate(); err != nil {
		return nil, err
	}
	a := *anim
	e.Animation = &a
	if a.isGrid() {
		grid, err := a.gridFrames(frames[0].Buffer())
		if err != nil {
			return nil, err
		}
		e.frames = grid
		return e, nil
	}
	for i := range frames {
		e.frames = append(e.frames, frames[i].Buffer())
	}
	return e, nil
}

func (f *Folder) commitBitmap(e *BitmapEntry) {
	if e.Tag != 0 {
		f.input.tags[e.Tag] = joinPath(f.Path(), e.Name)
	}
	f.bitmaps = append(f.bitmaps, e)
}

func (f *Folder) checkLeaf(name string, tag uint32) error {
	if err := f.checkName(name); err != nil {
		return err
	}
	if owner, ok := f.input.tags[tag]; tag != 0 && ok {
		return fmt.Errorf("%w: %d is used by %q", ErrTagCollision, tag, owner)
	}
	return nil
}

func (f *Folder) checkName(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if f.has(name) {
		return fmt.Errorf("%w: %q in %q", ErrNameCollision, name, f.Path())
	}
	return nil
}

func (f *Folder) has(name string) bool {
	for _, sub := range f.folders {
		if sub.Name == name {
			return true
		}
	}
	for _, b := range f.bitmaps {
		if b.Name == name {
			return true
		}
	}
	for _, fe := range f.fonts {
		if fe.Name == name {
			return true
		}
	}
	return false
}

func (f *Folder) collect(path string, out *[]Entry) {
	for _, b := range f.bitmaps {
		*out = append(*out, Entry{Path: path, Bitmap: b})
	}
	for _, fe := range f.fonts {
		*out = append(*out, Entry{Path: path, Font: fe})
	}
	for _, sub := range f.folders {
		sub.collect(joinPath(path, sub.Name), out)
	}
}

func (f *Folder) release() {
	for _, b := range f.bitmaps {
		b.release()
	}
	for _, fe := range f.fonts {
		fe.release()
	}
	for _, sub := range f.folders {
		sub.release()
	}
}

// BitmapEntry is a bitmap, or an animation, in the Input tree.
type BitmapEntry struct {
	Name      string
	Tag       uint32
	Animation *Animation

	sources []pixfmt.Handle
	frames  []*pixfmt.Buffer
}

// Frames returns one buffer per packed rectangle: the bitmap itself, the
// cells of a grid animation or the members of a bitmap set.
func (e *BitmapEntry) Frames() []*pixfmt.Buffer {
	return e.frames
}

func (e *BitmapEntry) release() {
	pixfmt.ReleaseAll(e.sources)
	e.frames = nil
}

// FontEntry is a rasterized font in the Input tree.
type FontEntry struct {
	Name                string
	Tag                 uint32
	MaxWidth, MaxHeight int
	Characters          []*CharacterEntry
}

func (e *FontEntry) release() {
	for _, c := range e.Characters {
		c.glyph.Release()
	}
}

// CharacterEntry is one glyph of a FontEntry.
type CharacterEntry struct {
	Code               rune
	Advance            int
	BearingX, BearingY int

	glyph pixfmt.Handle
}

// Bitmap returns the glyph's coverage bitmap.
func (c *CharacterEntry) Bitmap() *pixfmt.Buffer {
	return c.glyph.Buffer()
}

func validName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
