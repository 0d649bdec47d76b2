// Package split implements SplitIter and HashSplitIter: the pull-driven
// state machine that composes a source.Reader and a buffer.SlidingBuffer
// with the rollsum split-point detector to produce a lazy sequence of
// content-defined chunks.
//
// The Splitter/Config shape (a zero-value-safe options struct resolved by
// unexported accessor methods, driving a Next()-style cursor over a fixed
// buffer whose previous block is invalidated by the next call) is adapted
// from the teacher's split.Config/Splitter in this same package path; the
// rolling-hash internals and the FILLING/SCANNING/EMIT/DONE state machine
// are spec.md §4.1/§4.4's bup-derived construction rather than the
// teacher's Rabin-Karp one.
package split

import (
	"io"

	"github.com/bupstream/chunker/buffer"
	"github.com/bupstream/chunker/rollsum"
	"github.com/bupstream/chunker/source"
)

// Defaults, from spec.md §6.
const (
	DefaultBlobMax  = 8192 * 4 // BLOB_MAX
	DefaultBlobBits = rollsum.BaseBits
	DefaultFanout   = 128
)

// Options configures a Splitter. The zero value is ready to use and
// resolves to the spec's defaults, matching the teacher's *Config pattern
// of zero-value-safe accessor methods.
type Options struct {
	// BlobMax is the hard upper bound on chunk length. Zero means
	// DefaultBlobMax.
	BlobMax int

	// BlobBits is the base split threshold (BUP_BLOBBITS). Zero means
	// DefaultBlobBits.
	BlobBits int

	// Fanout is the hierarchical branching factor used to derive a chunk's
	// Level from its realized split bits. Zero means DefaultFanout; per
	// spec.md §3, a configured 0 is also normalized to DefaultFanout.
	Fanout int
}

func (o Options) blobMax() int {
	if o.BlobMax <= 0 {
		return DefaultBlobMax
	}
	return o.BlobMax
}

func (o Options) blobBits() int {
	if o.BlobBits <= 0 {
		return DefaultBlobBits
	}
	return o.BlobBits
}

func (o Options) fanout() int {
	if o.Fanout <= 0 {
		return DefaultFanout
	}
	return o.Fanout
}

// fanBits returns floor(log2(FANOUT)).
func (o Options) fanBits() int {
	f := o.fanout()
	bits := 0
	for f > 1 {
		f >>= 1
		bits++
	}
	return bits
}

// Chunk is one emitted content-defined chunk. Bytes aliases the
// Splitter's internal buffer and is invalidated by the next call that
// advances the iterator (spec.md §3, "Ownership"); callers that need to
// retain it past that point must copy it.
type Chunk struct {
	Bytes []byte
	Level int
}

// Splitter drives the chunk stream (SplitIter, spec.md §4.4) over a single
// source.Reader.
type Splitter struct {
	opts Options
	rd   *source.Reader
	buf  *buffer.SlidingBuffer

	exhausted bool // ReadIter has returned io.EOF
	err       error
	done      bool
}

// New constructs a Splitter reading from rd. A zero Options uses the
// spec's defaults.
func New(rd *source.Reader, opts Options) *Splitter {
	return &Splitter{
		opts: opts,
		rd:   rd,
		buf:  buffer.New(source.BlobReadSize + opts.blobMax()),
	}
}

// Next implements the FILLING -> SCANNING -> EMIT transition of spec.md
// §4.4's loop, returning the next chunk, or io.EOF once the underlying
// source and buffer are both drained.
func (s *Splitter) Next() (Chunk, error) {
	if s.done {
		return Chunk{}, s.terminalErr()
	}

	blobMax := s.opts.blobMax()

	// FILLING: pull input until the buffer holds a full chunk's worth, or
	// the source is exhausted.
	for !s.exhausted && s.buf.Used() < blobMax {
		block, err := s.rd.Next()
		if err == io.EOF {
			s.exhausted = true
			break
		}
		if err != nil {
			s.done = true
			s.err = err
			return Chunk{}, err
		}
		s.buf.Put(block)
	}

	// SCANNING / DONE: an empty view terminates the iterator.
	view := s.buf.Peek(blobMax)
	if len(view) == 0 {
		s.done = true
		return Chunk{}, io.EOF
	}

	state := rollsum.New()
	ofs, bits := rollsum.Scan(state, view, s.opts.blobBits())

	var length, level int
	if ofs > 0 {
		length = ofs
		level = (bits - s.opts.blobBits()) / s.opts.fanBits()
		if level < 0 {
			level = 0
		}
	} else {
		length = len(view)
		level = 0
	}

	// EMIT: advance the buffer and hand back the chunk view.
	s.buf.Eat(length)
	return Chunk{Bytes: view[:length], Level: level}, nil
}

func (s *Splitter) terminalErr() error {
	if s.err != nil {
		return s.err
	}
	return io.EOF
}

// Chunks returns an iter.Seq2-shaped sequence over s: range over it with
// `for chunk, err := range split.Chunks(s)`. Iteration stops immediately
// after the first non-nil error, matching the convention of the teacher's
// blob.KV.List iterator contract: "After the iterator reports an error, it
// MUST immediately return, even if the yield function reports true."
func Chunks(s *Splitter) func(yield func(Chunk, error) bool) {
	return func(yield func(Chunk, error) bool) {
		for {
			c, err := s.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Chunk{}, err)
				return
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// HashSplit is the outer iterator of spec.md §4.5: it owns the whole
// component graph (source.Reader, buffer.SlidingBuffer, Splitter) and
// presents external consumers with one lazy sequence of chunks built from
// an ordered list of sources.
func HashSplit(sources []source.Source, progress source.Progress, opts Options) func(yield func(Chunk, error) bool) {
	rd := source.Open(sources, progress)
	s := New(rd, opts)
	return Chunks(s)
}
