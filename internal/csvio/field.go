// Package csvio implements the contact interchange format: a quoted,
// comma-delimited text encoding with a fixed six-column layout.
//
// The encoder quotes only when a value would otherwise be ambiguous, so plain
// values stay human readable. The decoder is a byte-at-a-time state machine
// that accepts embedded commas, quotes and newlines inside quoted fields and
// both "\n" and "\r\n" line endings.
package csvio

import "strings"

// FieldCount is the number of columns in every record.
const FieldCount = 6

// Column positions within a Record.
const (
	ColName = iota
	ColPhone
	ColAddress
	ColEmail
	ColDueAmount
	ColDueDate
)

// Header is the column header emitted as the first line of every export.
var Header = Record{"Name", "Phone", "Address", "Email", "DueAmount", "DueDate"}

// Record is one fixed-arity contact row in text form.
type Record [FieldCount]string

// NeedsQuoting reports whether s must be wrapped in quotes to survive a
// round trip.
func NeedsQuoting(s string) bool {
	return strings.ContainsAny(s, ",\"\n\r")
}

// EncodeField returns the serialized form of s.
// Values that need quoting are wrapped in double quotes with every embedded
// quote doubled; everything else is returned unchanged.
func EncodeField(s string) string {
	if !NeedsQuoting(s) {
		return s
	}
	return string(AppendField(make([]byte, 0, len(s)+4), s))
}

// AppendField appends the serialized form of s to dst.
func AppendField(dst []byte, s string) []byte {
	if !NeedsQuoting(s) {
		return append(dst, s...)
	}
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			dst = append(dst, '"', '"')
			continue
		}
		dst = append(dst, s[i])
	}
	return append(dst, '"')
}
