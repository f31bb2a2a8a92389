package atlas

import "errors"

var (
	// ErrDecode is returned when a source bitmap or glyph cannot be decoded.
	ErrDecode = errors.New("atlas: decode failed")
	// ErrNameCollision is returned when a sibling already uses the name.
	ErrNameCollision = errors.New("atlas: name already used in folder")
	// ErrTagCollision is returned when a non-zero tag is already used.
	ErrTagCollision = errors.New("atlas: tag already used")
	// ErrInvalidName is returned for empty names or names containing '/'.
	ErrInvalidName = errors.New("atlas: invalid name")
	// ErrEmptyBitmap is returned for bitmaps with zero width or height.
	ErrEmptyBitmap = errors.New("atlas: bitmap has zero area")
	// ErrInvalidAnimation is returned for inconsistent animation settings.
	ErrInvalidAnimation = errors.New("atlas: invalid animation")
	// ErrInvalidParams is returned for inconsistent generator parameters.
	ErrInvalidParams = errors.New("atlas: invalid parameters")
	// ErrPackingOverflow is returned when a bitmap is larger than the
	// maximum page size or the page limit is exceeded.
	ErrPackingOverflow = errors.New("atlas: packing overflow")
	// ErrSerialization is returned by Load for malformed or incomplete atlases.
	ErrSerialization = errors.New("atlas: serialization failed")
	// ErrIO is returned by Save when the destination cannot be written.
	ErrIO = errors.New("atlas: write failed")
)
