// Package pixfmt holds the pixel buffers that flow through the atlas
// pipeline: the closed set of supported pixel formats, conversion between
// them, the format merger and the owning/borrowing buffer handles.
package pixfmt

import (
	"fmt"
	"strings"
)

// ComponentType is the storage type of a single channel.
type ComponentType uint8

const (
	Uint8 ComponentType = iota + 1
	Float32
)

// Format is one of the supported pixel layouts. The zero value is Unknown.
type Format uint8

const (
	Unknown Format = iota
	Gray8
	BGR8
	BGRA8
	GrayF32
	RGBF32
	RGBAF32
)

var formatNames = [...]string{
	Unknown: "unknown",
	Gray8:   "gray8",
	BGR8:    "bgr8",
	BGRA8:   "bgra8",
	GrayF32: "grayf32",
	RGBF32:  "rgbf32",
	RGBAF32: "rgbaf32",
}

// Make returns the format with the given channel count and component type.
// Channel counts other than 1, 3 and 4 yield Unknown.
func Make(channels int, ct ComponentType) Format {
	switch ct {
	case Uint8:
		switch channels {
		case 1:
			return Gray8
		case 3:
			return BGR8
		case 4:
			return BGRA8
		}
	case Float32:
		switch channels {
		case 1:
			return GrayF32
		case 3:
			return RGBF32
		case 4:
			return RGBAF32
		}
	}
	return Unknown
}

// Channels returns the number of channels per pixel.
func (f Format) Channels() int {
	switch f {
	case Gray8, GrayF32:
		return 1
	case BGR8, RGBF32:
		return 3
	case BGRA8, RGBAF32:
		return 4
	}
	return 0
}

// Type returns the component type, 0 for Unknown.
func (f Format) Type() ComponentType {
	switch f {
	case Gray8, BGR8, BGRA8:
		return Uint8
	case GrayF32, RGBF32, RGBAF32:
		return Float32
	}
	return 0
}

// IsFloat reports whether the components are float32.
func (f Format) IsFloat() bool {
	return f.Type() == Float32
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return f > Unknown && int(f) < len(formatNames)
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// ParseFormat is the inverse of Format.String. The empty string parses to
// Unknown.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return Unknown, nil
	}
	s = strings.ToLower(s)
	for i, name := range formatNames {
		if name == s {
			return Format(i), nil
		}
	}
	return Unknown, fmt.Errorf("pixfmt: unknown pixel format %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
