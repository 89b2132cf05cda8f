package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/contactbook/internal/compress"
	"github.com/JonMunkholm/contactbook/internal/core"
	"github.com/JonMunkholm/contactbook/internal/store"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|->",
		Short: "Write every contact to a CSV file (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, err := store.Open(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			out, closeOut, err := openOutput(args[0], cmd.OutOrStdout())
			if err != nil {
				return err
			}

			svc := core.NewService(st, a.serviceConfig())
			n, err := svc.Export(ctx, out)
			if cerr := closeOut(); err == nil && cerr != nil {
				err = fmt.Errorf("%w: close %s: %w", core.ErrStreamIO, args[0], cerr)
			}
			if err != nil {
				return err
			}

			if args[0] != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported: %d\n", n)
			}
			return nil
		},
	}
}

// openOutput opens path for writing, or wraps stdout for "-". Files ending
// in .gz or .zst are compressed.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		bw := bufio.NewWriter(stdout)
		return bw, bw.Flush, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open export file: %w", err)
	}
	zw, err := compress.NewWriter(f, compress.FromPath(path))
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return zw, func() error {
		if err := zw.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}
