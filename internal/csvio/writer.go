package csvio

import (
	"bufio"
	"io"
)

// Writer encodes records one per line, terminated by "\n".
//
// Writes are buffered; callers must call Flush and check its error. The first
// write failure is sticky: every later call returns it without writing.
type Writer struct {
	bw  *bufio.Writer
	buf []byte
	err error
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// WriteHeader writes the fixed column header line.
func (w *Writer) WriteHeader() error {
	return w.Write(Header)
}

// Write encodes rec as a single line.
func (w *Writer) Write(rec Record) error {
	if w.err != nil {
		return w.err
	}
	w.buf = w.buf[:0]
	for i, f := range rec {
		if i > 0 {
			w.buf = append(w.buf, ',')
		}
		w.buf = AppendField(w.buf, f)
	}
	w.buf = append(w.buf, '\n')
	if _, err := w.bw.Write(w.buf); err != nil {
		w.err = err
	}
	return w.err
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.bw.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

// Error reports the first error encountered by Write or Flush.
func (w *Writer) Error() error {
	return w.err
}
