package atlas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"atlaspack/codec"
	"atlaspack/pixfmt"
)

// IndexFile is the name of the JSON document inside a saved atlas directory.
const IndexFile = "atlases.json"

// FileVersion is the version of the JSON document written by Save.
const FileVersion = 1

type fileMeta struct {
	Version int           `json:"version"`
	Kind    Kind          `json:"kind"`
	Format  pixfmt.Format `json:"format"`
}

type filePage struct {
	File    string `json:"file"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Padding int    `json:"padding"`
}

type fileLayout struct {
	Page   int `json:"page"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type fileAnimation struct {
	Grid          [2]int       `json:"grid"`
	Skip          int          `json:"skip"`
	FrameDuration float64      `json:"frame_duration"`
	Wrap          WrapMode     `json:"wrap"`
	Frames        []fileLayout `json:"frames"`
}

type fileBitmap struct {
	Name string `json:"name"`
	Tag  uint32 `json:"tag"`
	fileLayout
	Animation *fileAnimation `json:"animation,omitempty"`
}

type fileCharacter struct {
	Code rune `json:"code"`
	fileLayout
	Advance int    `json:"advance"`
	Bearing [2]int `json:"bearing"`
}

type fileFont struct {
	Name       string          `json:"name"`
	Tag        uint32          `json:"tag"`
	MaxWidth   int             `json:"max_width"`
	MaxHeight  int             `json:"max_height"`
	Characters []fileCharacter `json:"characters"`
}

type fileFolder struct {
	Name    string       `json:"name,omitempty"`
	Bitmaps []fileBitmap `json:"bitmaps"`
	Fonts   []fileFont   `json:"fonts"`
	Folders []fileFolder `json:"folders"`
}

type fileAtlas struct {
	Meta  fileMeta   `json:"meta"`
	Pages []filePage `json:"pages"`
	fileFolder
}

// PageFile returns the image file name of page i out of n.
func PageFile(i, n int) string {
	if n == 1 {
		return "atlas.png"
	}
	return fmt.Sprintf("atlas_%d.png", i)
}

// Save writes out into dir with codec.Imaging.
func Save(out *Output, dir string) error {
	return SaveWith(codec.Imaging{}, out, dir)
}

// SaveWith writes the index and every page image of out into dir.
//
// Everything is written to a temporary sibling directory first and renamed
// into place, so dir either keeps its previous content or holds the complete
// new atlas. An existing dir is replaced only when it is empty or holds a
// previously saved atlas.
func SaveWith(enc codec.Encoder, out *Output, dir string) error {
	doc, err := encodeOutput(out)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := checkReplaceable(dir); err != nil {
		return err
	}

	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+".tmp-")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.Chmod(tmp, 0755); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := writeAtlas(enc, out, data, tmp); err != nil {
		os.RemoveAll(tmp)
		return err
	}

	old := tmp + ".old"
	_, statErr := os.Stat(dir)
	exists := statErr == nil
	if exists {
		if err := os.Rename(dir, old); err != nil {
			os.RemoveAll(tmp)
			return fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	if err := os.Rename(tmp, dir); err != nil {
		if exists {
			os.Rename(old, dir)
		}
		os.RemoveAll(tmp)
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if exists {
		os.RemoveAll(old)
	}
	return nil
}

func writeAtlas(enc codec.Encoder, out *Output, index []byte, dir string) error {
	for i, p := range out.Pages {
		if err := enc.Encode(p.Image, filepath.Join(dir, PageFile(i, len(out.Pages)))); err != nil {
			return fmt.Errorf("%w: page %d: %w", ErrIO, i, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, IndexFile), index, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func checkReplaceable(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("%w: %w", ErrIO, err)
	case len(entries) == 0:
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, IndexFile)); err != nil {
		return fmt.Errorf("%w: %s is not empty and holds no atlas", ErrIO, dir)
	}
	return nil
}

func encodeOutput(out *Output) (*fileAtlas, error) {
	if out == nil || out.Root == nil {
		return nil, fmt.Errorf("%w: nothing to save", ErrIO)
	}
	doc := &fileAtlas{Meta: fileMeta{Version: FileVersion, Kind: out.Kind, Format: out.Format}}
	for i, p := range out.Pages {
		if p.Image == nil || p.Image.Width != p.Width || p.Image.Height != p.Height {
			return nil, fmt.Errorf("%w: page %d image does not match %dx%d", ErrIO, i, p.Width, p.Height)
		}
		doc.Pages = append(doc.Pages, filePage{
			File:    PageFile(i, len(out.Pages)),
			Width:   p.Width,
			Height:  p.Height,
			Padding: p.Padding,
		})
	}
	doc.fileFolder = encodeFolder(out.Root)
	doc.Name = ""
	return doc, nil
}

func encodeFolder(f *OutputFolder) fileFolder {
	ff := fileFolder{
		Name:    f.Name,
		Bitmaps: []fileBitmap{},
		Fonts:   []fileFont{},
		Folders: []fileFolder{},
	}
	for _, b := range f.Bitmaps {
		fb := fileBitmap{Name: b.Name, Tag: b.Tag, fileLayout: fileLayout(b.Layout)}
		if a := b.Animation; a != nil {
			fa := &fileAnimation{
				Grid:          [2]int{a.GridWidth, a.GridHeight},
				Skip:          a.Skip,
				FrameDuration: a.FrameDuration,
				Wrap:          a.Mode,
				Frames:        make([]fileLayout, len(a.Frames)),
			}
			for i, l := range a.Frames {
				fa.Frames[i] = fileLayout(l)
			}
			fb.Animation = fa
		}
		ff.Bitmaps = append(ff.Bitmaps, fb)
	}
	for _, fe := range f.Fonts {
		font := fileFont{
			Name:       fe.Name,
			Tag:        fe.Tag,
			MaxWidth:   fe.MaxWidth,
			MaxHeight:  fe.MaxHeight,
			Characters: make([]fileCharacter, len(fe.Characters)),
		}
		for i, c := range fe.Characters {
			font.Characters[i] = fileCharacter{
				Code:       c.Code,
				fileLayout: fileLayout(c.Layout),
				Advance:    c.Advance,
				Bearing:    [2]int{c.BearingX, c.BearingY},
			}
		}
		ff.Fonts = append(ff.Fonts, font)
	}
	for _, sub := range f.Folders {
		ff.Folders = append(ff.Folders, encodeFolder(sub))
	}
	return ff
}

// Load reads an atlas saved by Save with codec.Imaging.
func Load(dir string) (*Output, error) {
	return LoadWith(codec.Imaging{}, dir)
}

// LoadWith reads and validates the atlas in dir. Page images are converted
// to the recorded format. Any problem returns an error wrapping
// ErrSerialization and no Output.
func LoadWith(dec codec.Decoder, dir string) (*Output, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	var doc fileAtlas
	d := json.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSerialization, IndexFile, err)
	}
	if doc.Meta.Version != FileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSerialization, doc.Meta.Version)
	}
	if len(doc.Pages) > 0 && !doc.Meta.Format.Valid() {
		return nil, fmt.Errorf("%w: pixel format %v", ErrSerialization, doc.Meta.Format)
	}

	out := &Output{Kind: doc.Meta.Kind, Format: doc.Meta.Format}
	for i, fp := range doc.Pages {
		p, err := loadPage(dec, dir, fp, doc.Meta.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrSerialization, i, err)
		}
		if out.Kind == KindTextureArray && i > 0 && (p.Width != out.Pages[0].Width || p.Height != out.Pages[0].Height) {
			return nil, fmt.Errorf("%w: slice %d is %dx%d, slice 0 is %dx%d",
				ErrSerialization, i, p.Width, p.Height, out.Pages[0].Width, out.Pages[0].Height)
		}
		out.Pages = append(out.Pages, p)
	}

	dl := &decoder{pages: out.Pages, tags: make(map[uint32]bool)}
	doc.Name = ""
	root, err := dl.folder(doc.fileFolder, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	out.Root = root
	out.indexPages()
	return out, nil
}

func loadPage(dec codec.Decoder, dir string, fp filePage, format pixfmt.Format) (Page, error) {
	if fp.File == "" || filepath.Base(fp.File) != fp.File {
		return Page{}, fmt.Errorf("invalid file name %q", fp.File)
	}
	if fp.Width <= 0 || fp.Height <= 0 || fp.Padding < 0 {
		return Page{}, fmt.Errorf("invalid size %dx%d padding %d", fp.Width, fp.Height, fp.Padding)
	}
	img, err := dec.Decode(filepath.Join(dir, fp.File))
	if err != nil {
		return Page{}, err
	}
	if img.Width != fp.Width || img.Height != fp.Height {
		return Page{}, fmt.Errorf("%s is %dx%d, index says %dx%d", fp.File, img.Width, img.Height, fp.Width, fp.Height)
	}
	return Page{Width: fp.Width, Height: fp.Height, Padding: fp.Padding, Image: pixfmt.Convert(img, format)}, nil
}

// decoder rebuilds the Output tree from the index, validating names, tags and
// layouts against the loaded pages.
type decoder struct {
	pages []Page
	tags  map[uint32]bool
}

func (d *decoder) folder(ff fileFolder, path string) (*OutputFolder, error) {
	f := &OutputFolder{Name: ff.Name}
	names := make(map[string]bool)
	claim := func(name string) error {
		if err := validName(name); err != nil {
			return err
		}
		if names[name] {
			return fmt.Errorf("%w: %q in %q", ErrNameCollision, name, path)
		}
		names[name] = true
		return nil
	}
	tag := func(t uint32) error {
		if t == 0 {
			return nil
		}
		if d.tags[t] {
			return fmt.Errorf("%w: %d", ErrTagCollision, t)
		}
		d.tags[t] = true
		return nil
	}

	for _, fb := range ff.Bitmaps {
		if err := claim(fb.Name); err != nil {
			return nil, err
		}
		if err := tag(fb.Tag); err != nil {
			return nil, err
		}
		b := &OutputBitmap{Name: fb.Name, Tag: fb.Tag}
		var err error
		if b.Layout, err = d.layout(fb.fileLayout); err != nil {
			return nil, fmt.Errorf("%q: %w", joinPath(path, fb.Name), err)
		}
		if fb.Animation != nil {
			if b.Animation, err = d.animation(fb.Animation); err != nil {
				return nil, fmt.Errorf("%q: %w", joinPath(path, fb.Name), err)
			}
		}
		f.Bitmaps = append(f.Bitmaps, b)
	}
	for _, font := range ff.Fonts {
		if err := claim(font.Name); err != nil {
			return nil, err
		}
		if err := tag(font.Tag); err != nil {
			return nil, err
		}
		if font.MaxWidth < 0 || font.MaxHeight < 0 {
			return nil, fmt.Errorf("%q: negative glyph size", joinPath(path, font.Name))
		}
		of := &OutputFont{Name: font.Name, Tag: font.Tag, MaxWidth: font.MaxWidth, MaxHeight: font.MaxHeight}
		codes := make(map[rune]bool, len(font.Characters))
		for _, fc := range font.Characters {
			if codes[fc.Code] {
				return nil, fmt.Errorf("%q: duplicate character %U", joinPath(path, font.Name), fc.Code)
			}
			codes[fc.Code] = true
			l, err := d.layout(fc.fileLayout)
			if err != nil {
				return nil, fmt.Errorf("%q %U: %w", joinPath(path, font.Name), fc.Code, err)
			}
			of.Characters = append(of.Characters, OutputCharacter{
				Code:     fc.Code,
				Layout:   l,
				Advance:  fc.Advance,
				BearingX: fc.Bearing[0],
				BearingY: fc.Bearing[1],
			})
		}
		f.Fonts = append(f.Fonts, of)
	}
	for _, sub := range ff.Folders {
		if err := claim(sub.Name); err != nil {
			return nil, err
		}
		of, err := d.folder(sub, joinPath(path, sub.Name))
		if err != nil {
			return nil, err
		}
		f.Folders = append(f.Folders, of)
	}
	return f, nil
}

func (d *decoder) layout(fl fileLayout) (Layout, error) {
	l := Layout(fl)
	if l.Page < 0 || l.Page >= len(d.pages) {
		return Layout{}, fmt.Errorf("page %d out of range", l.Page)
	}
	p := d.pages[l.Page]
	if l.X < 0 || l.Y < 0 || l.Width <= 0 || l.Height <= 0 || l.X+l.Width > p.Width || l.Y+l.Height > p.Height {
		return Layout{}, fmt.Errorf("rectangle %d,%d %dx%d outside page %d", l.X, l.Y, l.Width, l.Height, l.Page)
	}
	return l, nil
}

func (d *decoder) animation(fa *fileAnimation) (*OutputAnimation, error) {
	a := &OutputAnimation{
		GridWidth:     fa.Grid[0],
		GridHeight:    fa.Grid[1],
		Skip:          fa.Skip,
		FrameDuration: fa.FrameDuration,
		Mode:          fa.Wrap,
	}
	// A grid holds at most frames+skip cells.
	if w, h := a.GridWidth, a.GridHeight; w > 0 && h > 0 {
		if total := len(fa.Frames) + a.Skip; a.Skip < 0 || total < 0 || w > total || h > total/w {
			return nil, fmt.Errorf("%w: grid %dx%d does not match %d frames", ErrInvalidAnimation, w, h, len(fa.Frames))
		}
	}
	anim := Animation{GridWidth: a.GridWidth, GridHeight: a.GridHeight, Skip: a.Skip, FrameDuration: a.FrameDuration, Mode: a.Mode}
	if err := anim.validate(); err != nil {
		return nil, err
	}
	if len(fa.Frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrInvalidAnimation)
	}
	if n := anim.FrameCount(); n > 0 && n != len(fa.Frames) {
		return nil, fmt.Errorf("%w: grid has %d frames, index lists %d", ErrInvalidAnimation, n, len(fa.Frames))
	}
	for _, fl := range fa.Frames {
		l, err := d.layout(fl)
		if err != nil {
			return nil, err
		}
		a.Frames = append(a.Frames, l)
	}
	return a, nil
}
