package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"atlaspack/atlas"
	"atlaspack/codec"
	"atlaspack/internal/config"

	"github.com/charmbracelet/log"
	"github.com/maruel/natural"
)

// scanInput fills in from the configured input directory and fonts.
func scanInput(in *atlas.Input, cfg *config.Config, logger *log.Logger) error {
	root := cfg.Atlas.Input
	if st, err := os.Stat(root); err != nil {
		return fmt.Errorf("input directory: %w", err)
	} else if !st.IsDir() {
		return fmt.Errorf("input %s is not a directory", root)
	}
	s := &scanner{cfg: cfg, logger: logger, root: root}
	if out, err := filepath.Abs(cfg.Atlas.Output); err == nil {
		s.skip = out
	}
	if err := s.folder(in.Root(), root, ""); err != nil {
		return err
	}
	return addFonts(in, cfg.Fonts, logger)
}

type scanner struct {
	cfg    *config.Config
	logger *log.Logger
	root   string
	// skip is the absolute output directory, never scanned.
	skip string
}

// folder adds the images of dir to f, then recurses into its
// sub-directories. rel is the slash separated path of dir below the root.
func (s *scanner) folder(f *atlas.Folder, dir, rel string) error {
	files, dirs, err := listDir(dir)
	if err != nil {
		return err
	}
	for _, name := range files {
		relFile := joinRel(rel, name)
		base := strings.TrimSuffix(name, filepath.Ext(name))
		anim, _ := s.cfg.Animation(relFile)
		tag := s.cfg.Tags[joinRel(rel, base)]
		if _, err := f.AddBitmapFile(filepath.Join(dir, name), base, tag, anim); err != nil {
			return fmt.Errorf("add %s: %w", relFile, err)
		}
	}
	for _, name := range dirs {
		full := filepath.Join(dir, name)
		if abs, err := filepath.Abs(full); err == nil && abs == s.skip {
			s.logger.Debug("skipping output directory", "dir", full)
			continue
		}
		relDir := joinRel(rel, name)
		if anim, ok := s.cfg.Set(relDir); ok {
			if err := s.set(f, full, relDir, name, anim); err != nil {
				return err
			}
			continue
		}
		sub, err := f.AddFolder(name)
		if err != nil {
			return fmt.Errorf("add %s: %w", relDir, err)
		}
		if err := s.folder(sub, full, relDir); err != nil {
			return err
		}
	}
	return nil
}

func (s *scanner) set(f *atlas.Folder, dir, rel, name string, anim *atlas.Animation) error {
	files, _, err := listDir(dir)
	if err != nil {
		return err
	}
	paths := make([]string, len(files))
	for i, file := range files {
		paths[i] = filepath.Join(dir, file)
	}
	if _, err := f.AddBitmapSetFiles(paths, name, s.cfg.Tags[rel], anim); err != nil {
		return fmt.Errorf("add set %s: %w", rel, err)
	}
	s.logger.Debug("added bitmap set", "path", rel, "frames", len(paths))
	return nil
}

// listDir returns the image files and the sub-directories of dir in natural
// order. Hidden entries are ignored.
func listDir(dir string) (files, dirs []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasPrefix(name, "."):
		case e.IsDir():
			dirs = append(dirs, name)
		case codec.IsImageFile(name):
			files = append(files, name)
		}
	}
	sort.Sort(natural.StringSlice(files))
	sort.Sort(natural.StringSlice(dirs))
	return files, dirs, nil
}

func addFonts(in *atlas.Input, fonts []config.Font, logger *log.Logger) error {
	for _, fc := range fonts {
		folder, err := ensureFolder(in.Root(), fc.Folder)
		if err != nil {
			return err
		}
		face, err := codec.LoadFace(fc.Path, fc.Size)
		if err != nil {
			return err
		}
		_, err = folder.AddFont(face, fc.Name, fc.Tag, atlas.FontParams{
			Characters: []rune(fc.Characters),
			MaxWidth:   fc.MaxWidth,
			MaxHeight:  fc.MaxHeight,
		})
		face.Close()
		if err != nil {
			return fmt.Errorf("add font %s: %w", fc.Name, err)
		}
		logger.Debug("added font", "name", fc.Name, "path", fc.Path, "size", fc.Size)
	}
	return nil
}

// ensureFolder walks the slash separated path below root, creating missing
// folders.
func ensureFolder(root *atlas.Folder, p string) (*atlas.Folder, error) {
	f := root
	for _, name := range strings.Split(p, "/") {
		if name == "" {
			continue
		}
		var next *atlas.Folder
		for _, sub := range f.Folders() {
			if sub.Name == name {
				next = sub
				break
			}
		}
		if next == nil {
			var err error
			if next, err = f.AddFolder(name); err != nil {
				return nil, err
			}
		}
		f = next
	}
	return f, nil
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}
