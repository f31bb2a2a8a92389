// Package config loads the TOML configuration of the atlasgen command.
//
// A configuration has one [atlas] table with the generator settings plus
// optional [[font]], [[animation]] and [[set]] arrays describing sources that
// cannot be derived from the input directory alone:
//
//	[atlas]
//	input = "sprites"
//	output = "build/atlas"
//	padding = 2
//	background = "#00000000"
//
//	[[font]]
//	path = "fonts/Go-Regular.ttf"
//	name = "body"
//	size = 24
//
//	[[animation]]
//	path = "hero/walk.png"
//	grid = [5, 2]
//	frame_duration = 0.1
//
//	[[set]]
//	path = "fx/spark"
//	frame_duration = 0.05
//	wrap = "clamp"
//
//	[tags]
//	"ui/button" = 12
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"atlaspack/atlas"
	"atlaspack/pixfmt"
	"atlaspack/rectpack"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is returned for configurations that fail validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the whole configuration file.
type Config struct {
	Atlas      Atlas       `toml:"atlas"`
	Fonts      []Font      `toml:"font"`
	Animations []Animation `toml:"animation"`
	Sets       []Set       `toml:"set"`
	// Tags assigns tags to scanned bitmaps by their slash separated path
	// below the input directory, without extension.
	Tags map[string]uint32 `toml:"tags"`
}

// Atlas holds the generator settings.
type Atlas struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`

	Width           int           `toml:"width"`
	Height          int           `toml:"height"`
	MaxWidth        int           `toml:"max_width"`
	MaxHeight       int           `toml:"max_height"`
	Padding         int           `toml:"padding"`
	PowerOfTwo      bool          `toml:"power_of_two"`
	Square          bool          `toml:"square"`
	DuplicateBorder bool          `toml:"duplicate_border"`
	Background      string        `toml:"background"`
	Format          pixfmt.Format `toml:"format"`
	AcceptLuminance bool          `toml:"accept_luminance"`
	AcceptFloat     bool          `toml:"accept_float"`
	MaxPages        int           `toml:"max_pages"`
	Heuristic       string        `toml:"heuristic"`

	// TextureArray switches to one slice per bitmap.
	TextureArray bool `toml:"texture_array"`
	// Stretch scales bitmaps to the slice size in texture array mode.
	Stretch bool `toml:"stretch"`
}

// Font rasterizes a font file into the atlas.
type Font struct {
	Path string `toml:"path"`
	// Folder is the slash separated folder the font is placed in.
	Folder     string  `toml:"folder"`
	Name       string  `toml:"name"`
	Tag        uint32  `toml:"tag"`
	Size       float64 `toml:"size"`
	Characters string  `toml:"characters"`
	MaxWidth   int     `toml:"max_width"`
	MaxHeight  int     `toml:"max_height"`
}

// Animation marks an image below the input directory as a sprite sheet.
type Animation struct {
	Path          string         `toml:"path"`
	Grid          [2]int         `toml:"grid"`
	Skip          int            `toml:"skip"`
	FrameDuration float64        `toml:"frame_duration"`
	Wrap          atlas.WrapMode `toml:"wrap"`
}

// Set marks a directory below the input directory as a bitmap set; its
// images become the frames, in natural file name order.
type Set struct {
	Path          string         `toml:"path"`
	FrameDuration float64        `toml:"frame_duration"`
	Wrap          atlas.WrapMode `toml:"wrap"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	p := atlas.DefaultParams()
	return &Config{
		Atlas: Atlas{
			Input:           ".",
			Output:          "atlas",
			MaxWidth:        p.MaxWidth,
			MaxHeight:       p.MaxHeight,
			AcceptLuminance: p.Merge.AcceptLuminance,
			AcceptFloat:     p.Merge.AcceptFloat,
			Heuristic:       strings.ToLower(p.Heuristic.String()),
		},
		Tags: map[string]uint32{},
	}
}

// Load decodes the file at path over Default and validates the result.
// Relative font paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: %s: unknown key %q", ErrInvalid, path, undecoded[0].String())
	}
	base := filepath.Dir(path)
	for i := range cfg.Fonts {
		if p := cfg.Fonts[i].Path; p != "" && !filepath.IsAbs(p) {
			cfg.Fonts[i].Path = filepath.Join(base, p)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if c.Atlas.Input == "" || c.Atlas.Output == "" {
		return fmt.Errorf("%w: input and output are required", ErrInvalid)
	}
	names := make(map[string]bool)
	for i, f := range c.Fonts {
		key := f.Folder + "/" + f.Name
		switch {
		case f.Path == "":
			return fmt.Errorf("%w: font %d has no path", ErrInvalid, i)
		case f.Name == "":
			return fmt.Errorf("%w: font %d has no name", ErrInvalid, i)
		case f.Size <= 0:
			return fmt.Errorf("%w: font %q has size %v", ErrInvalid, f.Name, f.Size)
		case f.MaxWidth < 0 || f.MaxHeight < 0:
			return fmt.Errorf("%w: font %q has a negative glyph size", ErrInvalid, f.Name)
		case names[key]:
			return fmt.Errorf("%w: font %q is defined twice", ErrInvalid, key)
		}
		names[key] = true
	}
	paths := make(map[string]bool)
	for _, a := range c.Animations {
		switch {
		case a.Path == "":
			return fmt.Errorf("%w: animation without path", ErrInvalid)
		case a.Grid[0] < 1 || a.Grid[1] < 1:
			return fmt.Errorf("%w: animation %q has grid %dx%d", ErrInvalid, a.Path, a.Grid[0], a.Grid[1])
		case a.Skip < 0 || a.Skip >= a.Grid[0]*a.Grid[1]:
			return fmt.Errorf("%w: animation %q skips %d frames", ErrInvalid, a.Path, a.Skip)
		case a.FrameDuration < 0:
			return fmt.Errorf("%w: animation %q has a negative frame duration", ErrInvalid, a.Path)
		case paths[a.Path]:
			return fmt.Errorf("%w: %q is configured twice", ErrInvalid, a.Path)
		}
		paths[a.Path] = true
	}
	for _, s := range c.Sets {
		switch {
		case s.Path == "":
			return fmt.Errorf("%w: set without path", ErrInvalid)
		case s.FrameDuration < 0:
			return fmt.Errorf("%w: set %q has a negative frame duration", ErrInvalid, s.Path)
		case paths[s.Path]:
			return fmt.Errorf("%w: %q is configured twice", ErrInvalid, s.Path)
		}
		paths[s.Path] = true
	}
	return nil
}

// Params converts the [atlas] table to generator parameters.
func (c *Config) Params() (atlas.Params, error) {
	a := c.Atlas
	h, err := rectpack.ResolveHeuristic(a.Heuristic)
	if err != nil {
		return atlas.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	bg, err := ParseColor(a.Background)
	if err != nil {
		return atlas.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	p := atlas.Params{
		Width:           a.Width,
		Height:          a.Height,
		MaxWidth:        a.MaxWidth,
		MaxHeight:       a.MaxHeight,
		Padding:         a.Padding,
		PowerOfTwo:      a.PowerOfTwo,
		Square:          a.Square,
		DuplicateBorder: a.DuplicateBorder,
		Background:      bg,
		Merge: pixfmt.MergeParams{
			Target:          a.Format,
			AcceptLuminance: a.AcceptLuminance,
			AcceptFloat:     a.AcceptFloat,
		},
		MaxPages:  a.MaxPages,
		Heuristic: h,
	}
	if err := p.Validate(); err != nil {
		return atlas.Params{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return p, nil
}

// Animation returns the sprite sheet settings for path, if any.
func (c *Config) Animation(path string) (*atlas.Animation, bool) {
	for _, a := range c.Animations {
		if filepath.ToSlash(a.Path) == path {
			return &atlas.Animation{
				GridWidth:     a.Grid[0],
				GridHeight:    a.Grid[1],
				Skip:          a.Skip,
				FrameDuration: a.FrameDuration,
				Mode:          a.Wrap,
			}, true
		}
	}
	return nil, false
}

// Set returns the bitmap set settings for the directory path, if any.
func (c *Config) Set(path string) (*atlas.Animation, bool) {
	for _, s := range c.Sets {
		if filepath.ToSlash(s.Path) == path {
			return &atlas.Animation{FrameDuration: s.FrameDuration, Mode: s.Wrap}, true
		}
	}
	return nil, false
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". The empty string is
// transparent black.
func ParseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{}, nil
	}
	raw := strings.TrimPrefix(s, "#")
	b, err := hex.DecodeString(raw)
	if err != nil || (len(b) != 3 && len(b) != 4) {
		return color.NRGBA{}, fmt.Errorf("config: invalid color %q", s)
	}
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 255}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}
