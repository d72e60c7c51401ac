package repl

import (
	"errors"
	"io"
)

var ErrClosed = errors.New("closed")

// ReaderGuard lets the repl close its input without closing the wrapped reader,
// e.g. stdin
type ReaderGuard struct {
	isClosed bool
	wrapped  io.Reader
}

func NewReaderGuard(wraps io.Reader) *ReaderGuard {
	return &ReaderGuard{wrapped: wraps}
}

func (r *ReaderGuard) Close() error {
	r.isClosed = true
	return nil
}

func (r *ReaderGuard) Read(p []byte) (n int, err error) {
	if r.isClosed {
		return 0, ErrClosed
	}
	return r.wrapped.Read(p)
}

// WriterGuard is the ReaderGuard for outputs
type WriterGuard struct {
	isClosed bool
	wrapped  io.Writer
}

func NewWriterGuard(wraps io.Writer) *WriterGuard {
	return &WriterGuard{wrapped: wraps}
}

func (w *WriterGuard) Close() error {
	w.isClosed = true
	return nil
}

func (w *WriterGuard) Write(p []byte) (n int, err error) {
	if w.isClosed {
		return 0, ErrClosed
	}
	return w.wrapped.Write(p)
}
