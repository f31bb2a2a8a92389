package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"atlaspack/atlas"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
)

func unpackCommand(logger *log.Logger) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "unpack <atlas-dir>",
		Short: "Extract every bitmap of a saved atlas",
		Long: `Extract every bitmap of a saved atlas as a PNG file.

Folders become directories. Animations and fonts become a directory named
after the entry holding one file per frame (0.png, 1.png, ...) or glyph
(U+0041.png, ...).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnpack(logger, args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "unpacked", "output directory")
	return cmd
}

func runUnpack(logger *log.Logger, dir, output string) error {
	start := time.Now()
	out, err := atlas.Load(dir)
	if err != nil {
		return fmt.Errorf("load atlas: %w", err)
	}

	pages := make([]image.Image, len(out.Pages))
	for i, p := range out.Pages {
		pages[i] = p.Image.Image()
	}
	var count int
	save := func(l atlas.Layout, path string) error {
		sub := imaging.Crop(pages[l.Page], image.Rect(l.X, l.Y, l.X+l.Width, l.Y+l.Height))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := imaging.Save(sub, path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		count++
		return nil
	}

	err = out.Walk(func(leaf atlas.OutputLeaf) error {
		base := filepath.Join(output, filepath.FromSlash(leaf.Path))
		switch {
		case leaf.Bitmap != nil && leaf.Bitmap.Animation != nil:
			for i, l := range leaf.Bitmap.Animation.Frames {
				if err := save(l, filepath.Join(base, leaf.Bitmap.Name, fmt.Sprintf("%d.png", i))); err != nil {
					return err
				}
			}
		case leaf.Bitmap != nil:
			return save(leaf.Bitmap.Layout, filepath.Join(base, leaf.Bitmap.Name+".png"))
		default:
			for _, c := range leaf.Font.Characters {
				if err := save(c.Layout, filepath.Join(base, leaf.Font.Name, fmt.Sprintf("%U.png", c.Code))); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("unpacked atlas", "files", count, "output", output, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}
