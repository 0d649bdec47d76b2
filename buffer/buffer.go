// Package buffer implements the sliding byte queue that sits between a
// source reader and the split-point detector: a single-producer,
// single-consumer queue with amortized O(1) append, a zero-copy peek of its
// contiguous prefix, and O(1) consume-from-front.
//
// The design mirrors the internal buffer in teacher packages split.Splitter
// and block.Splitter (a fixed-capacity []byte plus a bufio-style refill
// loop), generalized to the two-stage fill/consume cycle spec.md §4.2
// requires: the buffer must be able to hold BLOB_MAX live bytes and still
// have room for one more full read quantum before it has to relocate data.
package buffer

// SlidingBuffer is a contiguous byte queue sized once at construction. It is
// not safe for concurrent use: it is meant to be driven by exactly one
// producer (a source reader) and one consumer (a split-point scanner) in the
// same goroutine.
type SlidingBuffer struct {
	data  []byte
	start int
	len   int
}

// New returns a SlidingBuffer whose backing region has at least the given
// capacity. Per spec.md §3, callers should pass readSize+maxChunk so that
// the buffer never needs to grow at steady state.
func New(capacity int) *SlidingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &SlidingBuffer{data: make([]byte, capacity)}
}

// Used reports the number of live bytes currently queued.
func (b *SlidingBuffer) Used() int { return b.len }

// Cap reports the capacity of the backing region.
func (b *SlidingBuffer) Cap() int { return len(b.data) }

// Peek returns a read-only view of min(n, Used()) bytes from the front of
// the queue. The returned slice aliases the buffer's backing array and is
// only valid until the next call to Put or Eat.
func (b *SlidingBuffer) Peek(n int) []byte {
	if n > b.len {
		n = b.len
	}
	if n <= 0 {
		return nil
	}
	return b.data[b.start : b.start+n]
}

// Eat drops n bytes from the front of the queue. It panics if n is negative
// or greater than Used(), both of which indicate a caller bug.
func (b *SlidingBuffer) Eat(n int) {
	if n < 0 || n > b.len {
		panic("buffer: Eat out of range")
	}
	b.start += n
	b.len -= n
	if b.len == 0 {
		// Nothing live; reclaim the whole region for the next Put so long
		// runs don't creep start forward needlessly.
		b.start = 0
	}
}

// Put appends src to the back of the queue, relocating the live bytes to
// offset 0 first if they would not otherwise fit, and growing the backing
// region to exactly b.len+len(src) bytes if src alone is larger than the
// spare capacity after relocation. Growth is not expected to trigger in
// steady state, since the consumer keeps Used() <= the configured chunk
// maximum before pulling more input (spec.md §4.2).
func (b *SlidingBuffer) Put(src []byte) {
	if len(src) == 0 {
		return
	}
	if b.start+b.len+len(src) > len(b.data) {
		if b.len+len(src) > len(b.data) {
			grown := make([]byte, b.len+len(src))
			copy(grown, b.data[b.start:b.start+b.len])
			b.data = grown
		} else {
			copy(b.data, b.data[b.start:b.start+b.len])
		}
		b.start = 0
	}
	copy(b.data[b.start+b.len:], src)
	b.len += len(src)
}
