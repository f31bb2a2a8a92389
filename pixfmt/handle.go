package pixfmt

// Handle gives the atlas access to a Buffer. An owning handle drops the
// pixels on Release; a borrowing handle leaves them to the caller, who must
// keep the buffer alive until generation completes.
type Handle struct {
	buf   *Buffer
	owned bool
}

// Owned wraps a buffer the atlas takes over.
func Owned(b *Buffer) Handle {
	return Handle{buf: b, owned: true}
}

// Borrowed wraps a buffer that stays owned by the caller.
func Borrowed(b *Buffer) Handle {
	return Handle{buf: b}
}

// Buffer returns the wrapped buffer, nil after an owning Release.
func (h *Handle) Buffer() *Buffer {
	return h.buf
}

// IsOwned reports whether Release frees the pixels.
func (h *Handle) IsOwned() bool {
	return h.owned
}

// Release ends the handle's access. Calling it more than once is a no-op.
func (h *Handle) Release() {
	if h.buf == nil {
		return
	}
	if h.owned {
		h.buf.Pix = nil
		h.buf.Float = nil
		h.buf.Width, h.buf.Height = 0, 0
	}
	h.buf = nil
}

// ReleaseAll releases every handle in hs.
func ReleaseAll(hs []Handle) {
	for i := range hs {
		hs[i].Release()
	}
}
