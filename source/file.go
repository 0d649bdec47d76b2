package source

import (
	"io"
	"os"
)

// FileSource adapts an *os.File to the Source interface, exposing its
// descriptor for page-cache hinting.
type FileSource struct {
	f *os.File
}

// NewFileSource wraps f as a Source.
func NewFileSource(f *os.File) FileSource { return FileSource{f: f} }

// ReadUpTo implements Source.
func (s FileSource) ReadUpTo(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := s.f.Read(buf)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:read], nil
}

// Fd implements Source.
func (s FileSource) Fd() (int, bool) {
	if s.f == nil {
		return 0, false
	}
	return int(s.f.Fd()), true
}

// ReaderSource adapts a generic io.Reader with no usable descriptor.
type ReaderSource struct {
	r io.Reader
}

// NewReaderSource wraps r as a Source with no page-cache hinting.
func NewReaderSource(r io.Reader) ReaderSource { return ReaderSource{r: r} }

// ReadUpTo implements Source.
func (s ReaderSource) ReadUpTo(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := s.r.Read(buf)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:read], nil
}

// Fd implements Source.
func (ReaderSource) Fd() (int, bool) { return 0, false }
