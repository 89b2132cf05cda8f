package csvio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
)

// ErrMalformedRecord is matched by every *MalformedError.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedError reports a record that ended before all columns were seen.
type MalformedError struct {
	Line   int // physical line the record started on
	Fields int // number of fields actually read
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("line %d: record has %d fields, expected %d", e.Line, e.Fields, FieldCount)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedRecord
}

// Reader decodes records from a byte stream.
//
// Each call to Read consumes exactly one record. Read returns io.EOF once the
// stream is exhausted, a *MalformedError for a short record (the stream
// remains usable), and any other error for an underlying read failure.
// The Reader has no notion of a header row.
type Reader struct {
	br *bufio.Reader

	line    int // physical line of the next unread byte
	recLine int // physical line the last record started on

	field      []byte
	fieldEmpty bool
	fields     []string

	// err holds a read failure hit after a record was already complete.
	err error
}

// NewReader returns a Reader consuming r. If r is already a *bufio.Reader it
// is used directly.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{
		br:     br,
		line:   1,
		fields: make([]string, 0, FieldCount),
	}
}

// Line returns the 1-based line on which the most recently read record began.
func (r *Reader) Line() int {
	return r.recLine
}

// Read decodes the next record.
func (r *Reader) Read() (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}

	r.recLine = r.line
	r.field = r.field[:0]
	r.fields = r.fields[:0]
	r.fieldEmpty = true
	inQuotes := false

	for {
		c, err := r.br.ReadByte()
		if err != nil {
			if err != io.EOF {
				return Record{}, r.fail(err)
			}
			if len(r.field) == 0 && len(r.fields) == 0 {
				return Record{}, io.EOF
			}
			r.endField()
			return r.record()
		}
		if c == '\n' {
			r.line++
		}

		if inQuotes {
			if c != '"' {
				r.appendByte(c)
				continue
			}
			next, err := r.br.ReadByte()
			switch {
			case err == nil && next == '"':
				r.appendByte('"')
			case err == nil:
				inQuotes = false
				_ = r.br.UnreadByte()
			case err == io.EOF:
				inQuotes = false
			default:
				return Record{}, r.fail(err)
			}
			continue
		}

		switch c {
		case ',':
			r.endField()
		case '\n':
			r.endField()
			return r.record()
		case '\r':
			r.endField()
			next, err := r.br.ReadByte()
			switch {
			case err == nil && next != '\n':
				_ = r.br.UnreadByte()
			case err != nil && err != io.EOF:
				r.err = fmt.Errorf("read line %d: %w", r.line, err)
			}
			r.line++
			return r.record()
		case '"':
			if r.fieldEmpty {
				inQuotes = true
				continue
			}
			r.appendByte(c)
		default:
			r.appendByte(c)
		}
	}
}

// All returns a lazy sequence over the remaining records. The sequence stops
// at end of stream (which is not yielded) or after yielding a read failure.
// Malformed records are yielded and iteration continues.
func (r *Reader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) {
				return
			}
			if err != nil && !errors.Is(err, ErrMalformedRecord) {
				return
			}
		}
	}
}

func (r *Reader) fail(err error) error {
	r.err = fmt.Errorf("read line %d: %w", r.line, err)
	return r.err
}

// appendByte adds c to the current field. Bytes past the last column are
// dropped but still mark the field as non-empty.
func (r *Reader) appendByte(c byte) {
	r.fieldEmpty = false
	if len(r.fields) < FieldCount {
		r.field = append(r.field, c)
	}
}

func (r *Reader) endField() {
	if len(r.fields) < FieldCount {
		r.fields = append(r.fields, string(r.field))
	}
	r.field = r.field[:0]
	r.fieldEmpty = true
}

func (r *Reader) record() (Record, error) {
	if len(r.fields) < FieldCount {
		return Record{}, &MalformedError{Line: r.recLine, Fields: len(r.fields)}
	}
	var rec Record
	copy(rec[:], r.fields)
	return rec, nil
}
