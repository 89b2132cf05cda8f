// Package core provides the business logic for contact CSV import and export.
//
// It holds the domain logic independent of any transport: the CLI and the
// HTTP server both drive it through [Service], and tests can call [Import]
// and [Export] directly with a fake [Store].
//
// # Import
//
// [Import] decodes a byte stream with the csvio Reader and applies each record
// to a [Store] under two independent policies:
//
//   - [Tolerance]: [Lenient] counts bad records and continues, [Strict]
//     rolls back and aborts on the first bad record
//   - [Execution]: [Commit] inserts inside one transaction spanning the whole
//     call, [DryRun] only parses and counts
//
// The first record of every stream is a header and is discarded unread.
// A successful import returns a [Tally]; an aborted one returns an
// [*AbortError] and persists nothing.
//
//	tally, err := core.Import(ctx, store, file, core.ImportOptions{
//	    Tolerance: core.Strict,
//	    Execution: core.Commit,
//	})
//
// # Export
//
// [Export] writes a header line and one line per stored contact, in the order
// the [Source] returns them.
//
// # Error Handling
//
// Failures wrap a small set of sentinels ([ErrMalformedRecord], [ErrSink],
// [ErrStreamIO], [ErrBegin], [ErrCommit]). [MapError] turns any of them into
// a user-facing message with a support code.
package core
