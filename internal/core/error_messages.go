package core

// error_messages.go maps errors to user-facing messages.
//
// User-facing messages carry a code that can be quoted in bug reports.
//
// # CSV Errors (CSV001-CSV099)
//
//	CSV001 - Malformed record: A row has fewer than six columns
//	         Action: Check quoting and column count on the reported line
//	CSV002 - Stream failure: The file could not be read or written
//	         Action: Check the file is accessible and try again
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Begin failed: Could not start the import transaction
//	DB002 - Commit failed: Changes could not be saved; nothing was imported
//	DB003 - Insert rejected: The store refused a contact
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Database busy: The database is locked by another writer
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: Another import is still running
//	IMP002 - Import cancelled: The import was cancelled before finishing
//	IMP003 - Import timeout: The import took too long
//	IMP004 - File too large: The upload exceeds the configured limit
//
// # Default Error (ERR000)
//
// Fallback when nothing matches; check the server log for the technical error.
//
// Sentinel errors are matched first with errors.Is. Driver errors that only
// surface as text are then matched case-insensitively with strings.Contains;
// the first matching pattern wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

// sentinelMessages are checked in order; the first match wins.
var sentinelMessages = []sentinelMessage{
	{ErrMalformedRecord, UserMessage{
		Message: "A row has fewer than six columns",
		Action:  "Check quoting and the column count on the reported line",
		Code:    "CSV001",
	}},
	{ErrStreamIO, UserMessage{
		Message: "The file could not be read or written",
		Action:  "Check the file is accessible and try again",
		Code:    "CSV002",
	}},
	{ErrBegin, UserMessage{
		Message: "Could not start the import transaction",
		Action:  "Please try again in a few moments",
		Code:    "DB001",
	}},
	{ErrCommit, UserMessage{
		Message: "Changes could not be saved; nothing was imported",
		Action:  "Please try the import again",
		Code:    "DB002",
	}},
	{ErrNameRequired, UserMessage{
		Message: "A row has no name",
		Action:  "Fill in the Name column on the reported line",
		Code:    "CSV003",
	}},
	{ErrSink, UserMessage{
		Message: "The database rejected a contact",
		Action:  "Fix the reported line or import without strict mode",
		Code:    "DB003",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "Another import is still running",
		Action:  "Please wait a moment and try again",
		Code:    "IMP001",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "The import took too long",
		Action:  "Split the file into smaller parts",
		Code:    "IMP003",
	}},
	{ErrImportCancelled, UserMessage{
		Message: "The import was cancelled before finishing",
		Action:  "Start a new import when ready",
		Code:    "IMP002",
	}},
	{context.Canceled, UserMessage{
		Message: "The import was cancelled before finishing",
		Action:  "Start a new import when ready",
		Code:    "IMP002",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "The file exceeds the upload size limit",
		Action:  "Split the file into smaller parts",
		Code:    "IMP004",
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "The database is locked by another writer",
			Action:  "Close other programs using the contact book and retry",
			Code:    "DB005",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the log",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
