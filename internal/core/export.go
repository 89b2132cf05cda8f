package core

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/contactbook/internal/csvio"
)

// Export writes the header followed by every contact from src, in the order
// src returns them, and reports how many contacts were written.
// Any write failure aborts the whole export.
func Export(ctx context.Context, src Source, out io.Writer) (int, error) {
	contacts, err := src.ListContacts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list contacts: %w", err)
	}

	w := csvio.NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return 0, fmt.Errorf("%w: write header: %w", ErrStreamIO, err)
	}
	for _, c := range contacts {
		if err := w.Write(RecordFromContact(c)); err != nil {
			return 0, fmt.Errorf("%w: write contact %q: %w", ErrStreamIO, c.Name, err)
		}
	}
	if err := w.Flush(); err != nil {
		return 0, fmt.Errorf("%w: flush: %w", ErrStreamIO, err)
	}

	return len(contacts), nil
}
