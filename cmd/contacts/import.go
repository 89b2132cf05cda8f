package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/contactbook/internal/compress"
	"github.com/JonMunkholm/contactbook/internal/config"
	"github.com/JonMunkholm/contactbook/internal/core"
	"github.com/JonMunkholm/contactbook/internal/store"
	"github.com/JonMunkholm/contactbook/internal/store/sqlite"
)

func newImportCmd(a *app) *cobra.Command {
	var strict, dryRun, backup bool

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Load contacts from a CSV file (- for stdin)",
		Long: `Load contacts from a CSV file. The first line is a header and is skipped.

By default bad rows are counted and skipped. With --strict the first bad row
aborts the import and nothing is written. With --dry-run rows are parsed and
counted but never written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			in, closeIn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

			st, err := store.Open(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			if backup && !dryRun {
				if err := backupDatabase(cmd, a.cfg.Database, st); err != nil {
					return err
				}
			}

			opts := core.ImportOptions{Tolerance: core.Lenient, Execution: core.Commit}
			if strict {
				opts.Tolerance = core.Strict
			}
			if dryRun {
				opts.Execution = core.DryRun
			}

			svc := core.NewService(st, a.serviceConfig())
			result, err := svc.Import(core.ContextWithSource(ctx, args[0]), in, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d, Failed: %d\n", result.Tally.Imported, result.Tally.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Abort on the first bad row and write nothing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and count without writing")
	cmd.Flags().BoolVar(&backup, "backup", false, "Back up the SQLite database before importing")
	return cmd
}

// openInput opens path for reading, or uses stdin for "-". Files ending in
// .gz or .zst are decompressed.
func openInput(path string, stdin io.Reader) (io.Reader, func() error, error) {
	if path == "-" {
		return stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open import file: %w", err)
	}
	zr, err := compress.NewReader(f, compress.FromPath(path))
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return zr, func() error {
		zr.Close()
		return f.Close()
	}, nil
}

// backupDatabase copies a file-backed SQLite database before it is changed.
func backupDatabase(cmd *cobra.Command, db config.DatabaseConfig, st store.Store) error {
	sq, ok := st.(*sqlite.Store)
	if !ok {
		slog.Warn("backup skipped: only supported for sqlite", "driver", db.Driver)
		return nil
	}
	if _, err := os.Stat(db.URL); err != nil {
		// Nothing on disk yet, e.g. :memory:
		return nil
	}

	dest := sqlite.BackupPath(db.URL, time.Now())
	if err := sq.Backup(cmd.Context(), dest); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s\n", dest)
	return nil
}
