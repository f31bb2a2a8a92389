package main

import (
	"fmt"
	"time"

	"atlaspack/atlas"
	"atlaspack/codec"
	"atlaspack/internal/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func packCommand(logger *log.Logger) *cobra.Command {
	var (
		configPath string
		flags      config.Atlas
	)
	defaults := config.Default().Atlas

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack a directory of images into atlas pages",
		Long: `Pack every image below the input directory into atlas pages.

Sub-directories become folders, images become bitmaps named after their file
name without extension. Sprite sheets, bitmap sets and fonts are declared in
the configuration file. Files are read in natural order (img2 before img10),
so the same input always gives the same layout.

Flags override the values of the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			overrideAtlas(cmd, &cfg.Atlas, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runPack(logger, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	f.StringVarP(&flags.Input, "input", "i", defaults.Input, "input directory")
	f.StringVarP(&flags.Output, "output", "o", defaults.Output, "output directory")
	f.IntVar(&flags.Width, "width", 0, "fixed page width, 0 to autosize")
	f.IntVar(&flags.Height, "height", 0, "fixed page height, 0 to autosize")
	f.IntVar(&flags.MaxWidth, "max-width", defaults.MaxWidth, "maximum page width")
	f.IntVar(&flags.MaxHeight, "max-height", defaults.MaxHeight, "maximum page height")
	f.IntVar(&flags.Padding, "padding", 0, "gap between bitmaps")
	f.BoolVar(&flags.PowerOfTwo, "pow-of-two", false, "round pages to powers of two")
	f.BoolVar(&flags.Square, "square", false, "force square pages")
	f.BoolVar(&flags.DuplicateBorder, "duplicate-border", false, "replicate bitmap edges one pixel outwards")
	f.StringVar(&flags.Background, "background", "", "page background as #rrggbb or #rrggbbaa")
	f.IntVar(&flags.MaxPages, "max-pages", 0, "maximum number of pages, 0 for no limit")
	f.StringVar(&flags.Heuristic, "heuristic", defaults.Heuristic, "corner scoring (MinWaste, BottomLeft)")
	f.BoolVar(&flags.TextureArray, "texture-array", false, "give every bitmap its own texture array slice")
	f.BoolVar(&flags.Stretch, "stretch", false, "stretch bitmaps to the slice size (texture array)")
	return cmd
}

// overrideAtlas copies the flags the user actually set over dst.
func overrideAtlas(cmd *cobra.Command, dst *config.Atlas, src config.Atlas) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("input") {
		dst.Input = src.Input
	}
	if set("output") {
		dst.Output = src.Output
	}
	if set("width") {
		dst.Width = src.Width
	}
	if set("height") {
		dst.Height = src.Height
	}
	if set("max-width") {
		dst.MaxWidth = src.MaxWidth
	}
	if set("max-height") {
		dst.MaxHeight = src.MaxHeight
	}
	if set("padding") {
		dst.Padding = src.Padding
	}
	if set("pow-of-two") {
		dst.PowerOfTwo = src.PowerOfTwo
	}
	if set("square") {
		dst.Square = src.Square
	}
	if set("duplicate-border") {
		dst.DuplicateBorder = src.DuplicateBorder
	}
	if set("background") {
		dst.Background = src.Background
	}
	if set("max-pages") {
		dst.MaxPages = src.MaxPages
	}
	if set("heuristic") {
		dst.Heuristic = src.Heuristic
	}
	if set("texture-array") {
		dst.TextureArray = src.TextureArray
	}
	if set("stretch") {
		dst.Stretch = src.Stretch
	}
}

func runPack(logger *log.Logger, cfg *config.Config) error {
	start := time.Now()
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	in := atlas.NewInput(codec.Imaging{})
	in.Logger = logger
	defer in.Clear()
	if err := scanInput(in, cfg, logger); err != nil {
		return err
	}
	entries := in.CollectEntries()
	logger.Info("collected sources", "entries", len(entries), "input", cfg.Atlas.Input,
		"elapsed", time.Since(start).Round(time.Millisecond))

	var out *atlas.Output
	if cfg.Atlas.TextureArray {
		g, err := atlas.NewTextureArrayGenerator(params, cfg.Atlas.Stretch)
		if err != nil {
			return err
		}
		g.Logger = logger
		out, err = g.ComputeResult(in)
		if err != nil {
			return fmt.Errorf("build texture array: %w", err)
		}
	} else {
		g, err := atlas.NewGenerator(params)
		if err != nil {
			return err
		}
		g.Logger = logger
		out, err = g.ComputeResult(in)
		if err != nil {
			return fmt.Errorf("generate atlas: %w", err)
		}
	}

	if err := atlas.Save(out, cfg.Atlas.Output); err != nil {
		return fmt.Errorf("save atlas: %w", err)
	}
	logger.Info("saved atlas", "kind", out.Kind, "pages", len(out.Pages), "format", out.Format,
		"output", cfg.Atlas.Output, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
