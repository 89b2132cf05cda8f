package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/contactbook/internal/csvio"
)

var (
	// ErrMalformedRecord marks a record with fewer than six fields.
	ErrMalformedRecord = csvio.ErrMalformedRecord

	// ErrSink marks an insert rejected by the store.
	ErrSink = errors.New("store insert failed")

	// ErrNameRequired is returned by stores for a contact with an empty name.
	ErrNameRequired = errors.New("contact name is required")

	// ErrStreamIO marks a failure reading the import or writing the export.
	ErrStreamIO = errors.New("stream i/o failed")

	// ErrBegin marks a failure to open the import transaction.
	ErrBegin = errors.New("begin transaction failed")

	// ErrCommit marks a failure to commit the import transaction.
	ErrCommit = errors.New("commit transaction failed")

	// ErrImportCancelled marks an import stopped by its context.
	ErrImportCancelled = errors.New("import cancelled")

	// ErrFileTooLarge marks an import body over the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// AbortError is returned when an import stops before completion. Any
// transaction has been rolled back and no counts are reported.
type AbortError struct {
	Line   int    // input line of the offending record, 0 if not record-specific
	Reason string // short description of the stage that failed
	Err    error
}

func (e *AbortError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("import aborted at line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("import aborted: %s: %v", e.Reason, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}
