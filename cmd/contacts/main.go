// Command contacts imports and exports the contact book as CSV and serves
// the same operations over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/contactbook/internal/config"
	"github.com/JonMunkholm/contactbook/internal/core"
	"github.com/JonMunkholm/contactbook/internal/logging"
)

// app carries state shared by every subcommand.
type app struct {
	cfg *config.Config

	envFile string
	driver  string
	dbURL   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "contacts",
		Short:         "Contact book CSV import and export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Show help when no subcommand is provided
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load if present")
	root.PersistentFlags().StringVar(&a.driver, "driver", "", "Database driver: sqlite or postgres (overrides DB_DRIVER)")
	root.PersistentFlags().StringVar(&a.dbURL, "db", "", "SQLite path or PostgreSQL URL (overrides DATABASE_URL)")

	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

// setup loads .env and configuration, applies flag overrides and
// configures logging.
func (a *app) setup() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.driver != "" || a.dbURL != "" {
		if a.driver != "" {
			cfg.Database.Driver = a.driver
		}
		if a.dbURL != "" {
			cfg.Database.URL = a.dbURL
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
	}
	a.cfg = cfg

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

func (a *app) serviceConfig() core.ServiceConfig {
	return core.ServiceConfig{
		MaxConcurrentImports: a.cfg.Import.MaxConcurrent,
		MaxWaitTime:          a.cfg.Import.MaxWaitTime,
		ImportTimeout:        a.cfg.Import.Timeout,
	}
}

// userError prefers the mapped user message when one exists.
func userError(err error) string {
	if core.IsUserFacing(err) {
		return fmt.Sprintf("%s\n  detail: %v", core.FormatUserError(err), err)
	}
	return err.Error()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", userError(err))
		os.Exit(1)
	}
}
