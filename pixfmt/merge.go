package pixfmt

// MergeParams controls how the merger picks the output format.
type MergeParams struct {
	// Target fixes the output format. Unknown lets the merger derive it.
	Target Format `toml:"format"`
	// AcceptLuminance keeps single-channel sources single-channel. When false
	// they are promoted to three channels before merging.
	AcceptLuminance bool `toml:"accept_luminance"`
	// AcceptFloat keeps float sources float. When false they are demoted to
	// 8-bit before merging.
	AcceptFloat bool `toml:"accept_float"`
}

// DefaultMergeParams accepts every source format as is.
func DefaultMergeParams() MergeParams {
	return MergeParams{AcceptLuminance: true, AcceptFloat: true}
}

// Merger computes the single format every source bitmap converts to.
// The result only depends on the set of merged formats, never on the order
// of Merge calls.
type Merger struct {
	params   MergeParams
	channels int
	ctype    ComponentType
	seen     uint32 // bit per Format
}

// NewMerger returns a merger reset to p.
func NewMerger(p MergeParams) *Merger {
	m := &Merger{}
	m.Reset(p)
	return m
}

// Reset clears all merged formats and installs p.
func (m *Merger) Reset(p MergeParams) {
	*m = Merger{params: p}
}

// Merge records one source format.
func (m *Merger) Merge(f Format) {
	if !f.Valid() {
		return
	}
	m.seen |= 1 << f
	if m.params.Target.Valid() {
		return
	}
	ch, ct := f.Channels(), f.Type()
	if ch == 1 && !m.params.AcceptLuminance {
		ch = 3
	}
	if ct == Float32 && !m.params.AcceptFloat {
		ct = Uint8
	}
	m.channels = max(m.channels, ch)
	m.ctype = max(m.ctype, ct)
}

// Result returns the merged format. With no target and nothing merged it
// returns Unknown.
func (m *Merger) Result() Format {
	if m.params.Target.Valid() {
		return m.params.Target
	}
	return Make(m.channels, m.ctype)
}

// NeedsConversion reports whether at least one merged source differs from
// the result.
func (m *Merger) NeedsConversion() bool {
	return m.seen&^(1<<m.Result()) != 0
}
