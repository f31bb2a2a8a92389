// Package codec provides the collaborators the atlas relies on for reading
// and writing image files and for rasterizing font glyphs.
package codec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"atlaspack/pixfmt"

	"github.com/disintegration/imaging"
)

// ErrUnsupported is returned for files whose container format is not known.
var ErrUnsupported = errors.New("codec: unsupported image format")

// Decoder turns an image file into a pixel buffer.
type Decoder interface {
	Decode(path string) (*pixfmt.Buffer, error)
}

// Encoder writes a pixel buffer to an image file. The container format is
// picked from the file extension.
type Encoder interface {
	Encode(buf *pixfmt.Buffer, path string) error
}

// Codec is both a Decoder and an Encoder.
type Codec interface {
	Decoder
	Encoder
}

// Imaging is the default Codec, backed by github.com/disintegration/imaging.
// It reads and writes PNG, JPEG, GIF, BMP and TIFF.
type Imaging struct{}

var _ Codec = Imaging{}

// Decode implements Decoder.
func (Imaging) Decode(path string) (*pixfmt.Buffer, error) {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("codec: decode %s: %w", path, err)
	}
	return pixfmt.FromImage(img), nil
}

// Encode implements Encoder. Missing parent directories are created.
func (Imaging) Encode(buf *pixfmt.Buffer, path string) error {
	if buf.Empty() {
		return fmt.Errorf("codec: encode %s: empty buffer", path)
	}
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("codec: encode %s: %w", path, err)
	}
	if err := imaging.Save(buf.Image(), path); err != nil {
		return fmt.Errorf("codec: encode %s: %w", path, err)
	}
	return nil
}

// IsImageFile reports whether path has an extension Imaging can decode.
func IsImageFile(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	_, err := imaging.FormatFromFilename(path)
	return err == nil
}
