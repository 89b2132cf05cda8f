package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/contactbook/internal/logging"
)

// DefaultImportTimeout bounds a single import when none is configured.
const DefaultImportTimeout = 10 * time.Minute

// ServiceConfig tunes import concurrency and duration.
type ServiceConfig struct {
	MaxConcurrentImports int
	MaxWaitTime          time.Duration
	ImportTimeout        time.Duration
}

// Service is the entry point the CLI and HTTP layers use for CSV interchange.
type Service struct {
	store         Store
	limiter       *ImportLimiter
	importTimeout time.Duration
}

// ImportResult describes a finished import.
type ImportResult struct {
	ImportID  string
	Options   ImportOptions
	Tally     Tally
	BytesRead int64
	Duration  time.Duration
}

// NewService creates a Service backed by store.
func NewService(store Store, cfg ServiceConfig) *Service {
	timeout := cfg.ImportTimeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		store:         store,
		limiter:       NewImportLimiter(cfg.MaxConcurrentImports, cfg.MaxWaitTime),
		importTimeout: timeout,
	}
}

// Import runs one import of in against the service's store.
//
// Committing imports queue on the import limiter so only one transaction is
// open at a time; dry runs skip the queue since they never write. The result
// always carries the import ID, even when err is non-nil.
func (s *Service) Import(ctx context.Context, in io.Reader, opts ImportOptions) (ImportResult, error) {
	result := ImportResult{
		ImportID: uuid.New().String(),
		Options:  opts,
	}
	fields := append([]any{
		"import_id", result.ImportID,
		"tolerance", opts.Tolerance.String(),
		"execution", opts.Execution.String(),
	}, importLogAttrs(ctx)...)
	logger := logging.WithFields(ctx, fields...)

	if opts.Execution == Commit {
		if err := s.limiter.Acquire(ctx); err != nil {
			logger.Warn("import rejected", "error", err)
			return result, err
		}
		defer s.limiter.Release()
	}

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	start := time.Now()
	logger.Info("import started")

	counted := WrapForImport(in)
	tally, err := runImport(ctx, logger, s.store, counted, opts)
	result.BytesRead = counted.BytesRead
	result.Duration = time.Since(start)
	if err != nil {
		logger.Error("import aborted",
			"error", err,
			"bytes_read", result.BytesRead,
			"duration_ms", result.Duration.Milliseconds(),
		)
		return result, err
	}

	result.Tally = tally
	logger.Info("import finished",
		"imported", tally.Imported,
		"failed", tally.Failed,
		"bytes_read", result.BytesRead,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// Export writes every stored contact to w and returns how many were written.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	start := time.Now()
	n, err := Export(ctx, s.store, w)
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	logging.FromContext(ctx).Info("export finished",
		"contacts", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return n, nil
}

// ImportStatus reports the import limiter state.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until no committing import is running or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
