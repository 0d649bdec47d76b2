// Package source implements ReadIter: a pull-driven reader over an ordered
// sequence of input byte streams, yielding fixed-size read quanta with
// best-effort page-cache advisories and progress notification.
//
// This has no direct analogue in the teacher repository (creachadair/ffs's
// splitters read from a single io.Reader), so its shape is grounded instead
// in bup's own C source (original_source/lib/bup/_hashsplit.c), which reads
// a sequence of files through exactly this read-quantum/fadvise/progress
// contract, and in the fadvise-on-close idiom also seen in the pack (e.g.
// ssdeep's streamReader.Close, which calls unix.Fadvise(fd, 0, 0,
// unix.FADV_DONTNEED) once a file is fully consumed).
package source

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// BlobReadSize is the fixed read quantum (spec.md §3, BLOB_READ_SIZE).
const BlobReadSize = 1 << 20 // 1 MiB

// A Source is one input byte stream. ReadUpTo must behave like io.Reader's
// Read, except that a short read is never itself an error: a 0-byte, nil-
// error return means end-of-source.
//
// Fd optionally exposes a file descriptor for page-cache hinting. The
// second return value reports whether the descriptor is valid; Fd must not
// return a negative descriptor with ok == true.
type Source interface {
	ReadUpTo(n int) ([]byte, error)
	Fd() (fd int, ok bool)
}

// Progress is invoked once before each read attempt on the current source,
// with the 0-based index of that source and the size of the previous
// successful read on it (0 before the first read of a new source).
type Progress func(fileIndex int, prevRead int) error

// Reader is ReadIter: it pulls fixed-size blocks from an ordered sequence of
// Sources, presenting them as one logical stream of non-empty blocks.
type Reader struct {
	sources  []Source
	progress Progress

	idx      int   // index of the current source, or len(sources) when exhausted
	offset   int64 // bytes consumed from the current source so far
	prevRead int   // size of the last successful read on the current source
	advised  int64 // offset up to which page-cache hints have already been issued
	done     bool
}

// Open constructs a Reader over sources, pulled in order. progress may be
// nil. The sequence is realized eagerly into a slice: spec.md describes "a
// finite, ordered lazy sequence of input sources", and a slice already
// satisfies finiteness and ordering without forcing any Source's bytes to
// be read before it is its turn.
func Open(sources []Source, progress Progress) *Reader {
	return &Reader{sources: sources, progress: progress}
}

// Next returns the next non-empty block of bytes pulled from the source
// sequence, or io.EOF once every source is exhausted. The returned slice is
// only valid until the next call to Next.
//
// Next never returns a 0-length block paired with a nil error.
func (r *Reader) Next() ([]byte, error) {
	if r.done {
		return nil, io.EOF
	}
	for r.idx < len(r.sources) {
		cur := r.sources[r.idx]

		if r.progress != nil {
			if err := r.progress(r.idx, r.prevRead); err != nil {
				r.done = true
				return nil, fmt.Errorf("source: progress callback: %w", err)
			}
		}

		if fd, ok := cur.Fd(); ok && fd < 0 {
			r.done = true
			return nil, fmt.Errorf("source: input %d: %w", r.idx, ErrNegativeFd)
		}

		block, err := cur.ReadUpTo(BlobReadSize)
		if err != nil {
			r.done = true
			return nil, fmt.Errorf("source: read from input %d: %w", r.idx, err)
		}
		if len(block) > BlobReadSize {
			r.done = true
			return nil, fmt.Errorf("source: input %d returned %d bytes, more than the requested %d", r.idx, len(block), BlobReadSize)
		}

		if len(block) == 0 {
			r.adviseDone(cur)
			r.idx++
			r.offset = 0
			r.prevRead = 0
			r.advised = 0
			continue
		}

		r.prevRead = len(block)
		r.offset += int64(len(block))
		r.adviseProgress(cur)
		return block, nil
	}
	r.done = true
	return nil, io.EOF
}

// adviseProgress issues a FADV_DONTNEED hint for everything more than one
// read quantum behind the current offset, once cur exposes a descriptor.
func (r *Reader) adviseProgress(cur Source) {
	fd, ok := cur.Fd()
	if !ok {
		return
	}
	target := r.offset - BlobReadSize
	if target <= r.advised {
		return
	}
	// Best-effort: the kernel may not support the hint on this filesystem.
	_ = unix.Fadvise(fd, r.advised, target-r.advised, unix.FADV_DONTNEED)
	r.advised = target
}

// adviseDone issues a final hint covering the whole of cur once it reaches
// end-of-source.
func (r *Reader) adviseDone(cur Source) {
	fd, ok := cur.Fd()
	if !ok {
		return
	}
	if r.offset <= r.advised {
		return
	}
	_ = unix.Fadvise(fd, r.advised, r.offset-r.advised, unix.FADV_DONTNEED)
	r.advised = r.offset
}

// ErrNegativeFd is wrapped by the error Reader.Next returns when a source's
// Fd reports ok == true with a negative descriptor. It is exported so
// callers can test for it with errors.Is.
var ErrNegativeFd = errors.New("source: Fd returned a negative descriptor")
