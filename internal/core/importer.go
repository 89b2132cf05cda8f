package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/JonMunkholm/contactbook/internal/csvio"
)

// ContextCheckInterval is how often (in records) an import checks for
// cancellation.
const ContextCheckInterval = 100

// Import reads CSV records from in and applies them to store according to opts.
//
// The first record of the stream is a header and is always discarded. Under
// Commit, a single transaction spans the whole call and is committed only
// after the last record; under DryRun the store is never touched and may be
// nil. On success the tally is returned. On abort the returned error is an
// *AbortError, any transaction has been rolled back and the tally is zero.
func Import(ctx context.Context, store Store, in io.Reader, opts ImportOptions) (Tally, error) {
	return runImport(ctx, slog.Default(), store, in, opts)
}

func runImport(ctx context.Context, logger *slog.Logger, store Store, in io.Reader, opts ImportOptions) (Tally, error) {
	var tx Tx
	if opts.Execution == Commit {
		var err error
		tx, err = store.Begin(ctx)
		if err != nil {
			return Tally{}, &AbortError{Reason: "begin", Err: fmt.Errorf("%w: %w", ErrBegin, err)}
		}
	}

	abort := func(line int, reason string, err error) (Tally, error) {
		if tx != nil {
			// Roll back even when ctx is what stopped us.
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				logger.Warn("rollback failed", "error", rbErr)
			}
		}
		return Tally{}, &AbortError{Line: line, Reason: reason, Err: err}
	}

	var tally Tally
	reader := csvio.NewReader(in)
	headerSeen := false

	for n := 0; ; n++ {
		if n%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return abort(0, "cancelled", fmt.Errorf("%w: %w", ErrImportCancelled, err))
			}
		}

		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line := reader.Line()

		malformed := errors.Is(err, csvio.ErrMalformedRecord)
		if err != nil && !malformed {
			return abort(line, "read", fmt.Errorf("%w: %w", ErrStreamIO, err))
		}

		if !headerSeen {
			headerSeen = true
			continue
		}

		if malformed {
			tally.Failed++
			if opts.Tolerance == Strict {
				return abort(line, "malformed record", err)
			}
			logger.Warn("skipping malformed record", "line", line, "error", err)
			continue
		}

		c := ContactFromRecord(rec)
		if tx == nil {
			tally.Imported++
			continue
		}

		if _, err := tx.Insert(ctx, c); err != nil {
			tally.Failed++
			if opts.Tolerance == Strict {
				return abort(line, "insert", fmt.Errorf("%w: %w", ErrSink, err))
			}
			logger.Warn("skipping record rejected by store", "line", line, "name", c.Name, "error", err)
			continue
		}
		tally.Imported++
	}

	if tx != nil {
		if err := tx.Commit(ctx); err != nil {
			return abort(0, "commit", fmt.Errorf("%w: %w", ErrCommit, err))
		}
	}

	return tally, nil
}
