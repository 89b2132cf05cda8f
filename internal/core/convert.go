package core

// convert.go maps between decoded CSV records and stored contacts.
//
// Import conversion never fails:
//   - Overlength text is truncated to the column maximum
//   - An unparsable or out-of-range due amount becomes zero
//
// Export conversion formats the due amount with exactly two decimals.

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/contactbook/internal/csvio"
)

// ContactFromRecord converts a decoded record into a Contact.
func ContactFromRecord(rec csvio.Record) Contact {
	return Contact{
		Name:      truncate(rec[csvio.ColName], NameMax),
		Phone:     truncate(rec[csvio.ColPhone], PhoneMax),
		Address:   truncate(rec[csvio.ColAddress], AddressMax),
		Email:     truncate(rec[csvio.ColEmail], EmailMax),
		DueAmount: ParseDueAmount(rec[csvio.ColDueAmount]),
		DueDate:   truncate(rec[csvio.ColDueDate], DueDateMax),
	}
}

// RecordFromContact converts a Contact into its exported record.
func RecordFromContact(c Contact) csvio.Record {
	return csvio.Record{
		csvio.ColName:      c.Name,
		csvio.ColPhone:     c.Phone,
		csvio.ColAddress:   c.Address,
		csvio.ColEmail:     c.Email,
		csvio.ColDueAmount: FormatDueAmount(c.DueAmount),
		csvio.ColDueDate:   c.DueDate,
	}
}

// ParseDueAmount parses s as a decimal amount. Leading whitespace is
// ignored; anything after the number makes it unparsable.
// Returns 0 for empty, unparsable, non-finite or out-of-range input.
func ParseDueAmount(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < DueAmountMin || v > DueAmountMax {
		return 0
	}
	return v
}

// FormatDueAmount renders v with exactly two fractional digits.
func FormatDueAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// truncate shortens s to at most limit bytes without splitting a UTF-8
// sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
