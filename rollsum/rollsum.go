// Package rollsum implements the rolling-hash split-point detector used by
// the content-defined chunking pipeline in package split.
//
// The construction is the adler32-like two-accumulator rolling checksum
// specified in spec.md §4.1: a window of the last WindowSize bytes is
// folded into two 16-bit sums that update in O(1) per byte shifted in and
// out. original_source/lib/bup/_hashsplit.c (the only bup C source kept in
// the retrieval pack) does not contain this kernel — it holds only the
// read-quantum iterator that grounds package source — so this construction
// is built directly from spec.md's prose rather than ported from a kept
// source file.
package rollsum

// WindowSize is the number of trailing bytes folded into the rolling
// checksum (BUP_WINDOWSIZE).
const WindowSize = 64

// charOffset biases every byte before it is summed. Without it the all-zero
// window would be indistinguishable from any other "low entropy" window.
const charOffset = 31

// BaseBits is the default split threshold (BUP_BLOBBITS): a split requires
// at least this many trailing one-bits in State.Digest()>>1.
const BaseBits = 13

// State holds the live rolling-checksum accumulators and window contents
// for one scan. A State must be reset (via New or Reset) at the start of
// each chunk: split boundaries are defined relative to the first byte of
// the chunk currently being scanned, never across a chunk boundary.
type State struct {
	s1, s2 uint16
	window [WindowSize]byte
	wpos   int
}

// New returns a freshly initialized rolling-checksum state, equivalent to
// having rolled WindowSize zero bytes through it.
func New() *State {
	var s State
	s.Reset()
	return &s
}

// Reset restores s to its initial state, as if constructed by New.
func (s *State) Reset() {
	s.s1 = uint16(WindowSize * charOffset)
	s.s2 = uint16(WindowSize * (WindowSize - 1) * charOffset % (1 << 16))
	s.window = [WindowSize]byte{}
	s.wpos = 0
}

// Roll shifts byteIn into the window, evicting the byte that has occupied
// the same window slot for the last WindowSize rolls.
func (s *State) Roll(byteIn byte) {
	byteOut := s.window[s.wpos]
	s.s1 += uint16(byteIn) - uint16(byteOut)
	s.s2 += s.s1 - uint16(WindowSize)*(uint16(byteOut)+charOffset)
	s.window[s.wpos] = byteIn
	s.wpos++
	if s.wpos == WindowSize {
		s.wpos = 0
	}
}

// Digest returns the current 32-bit rolling checksum.
func (s *State) Digest() uint32 {
	return uint32(s.s1)<<16 | uint32(s.s2)
}

// TrailingOnes returns the number of consecutive low-order one-bits in
// digest>>1 (i.e. the "bits" value from the split predicate in spec.md
// §4.1). It is a pure function of the digest, independent of any live
// rolling state, and backs the split predicate in Scan below.
func TrailingOnes(digest uint32) int {
	v := digest >> 1
	n := 0
	for v&1 == 1 {
		n++
		v >>= 1
	}
	return n
}

// Scan advances a rolling State one byte at a time over buf, reporting the
// first position at which the split predicate fires: the number of
// trailing one-bits in State.Digest()>>1 is at least splitBits.
//
// It returns ofs, the 1-based offset within buf of the byte that completed
// the split (0 if no split was found), and bits, the realized
// TrailingOnes count at that position (-1 if no split was found).
//
// Scan does not allocate and does not retain buf.
func Scan(s *State, buf []byte, splitBits int) (ofs int, bits int) {
	for i, b := range buf {
		s.Roll(b)
		if tz := TrailingOnes(s.Digest()); tz >= splitBits {
			return i + 1, tz
		}
	}
	return 0, -1
}
