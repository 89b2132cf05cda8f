package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/contactbook/internal/compress"
	"github.com/JonMunkholm/contactbook/internal/core"
	"github.com/JonMunkholm/contactbook/internal/logging"
)

// ImportResponse is the JSON body returned by a finished import.
type ImportResponse struct {
	ImportID   string `json:"import_id"`
	Imported   int    `json:"imported"`
	Failed     int    `json:"failed"`
	Strict     bool   `json:"strict"`
	DryRun     bool   `json:"dry_run"`
	BytesRead  int64  `json:"bytes_read"`
	DurationMS int64  `json:"duration_ms"`
}

// HealthResponse is the JSON body of /healthz.
type HealthResponse struct {
	Status  string                   `json:"status"`
	Error   string                   `json:"error,omitempty"`
	Imports core.ImportLimiterStatus `json:"imports"`
}

// handleHealth reports store reachability and import load. While an import
// runs it holds the store (the only connection for sqlite), so the store is
// reported as reachable without a ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	imports := s.service.ImportStatus()
	resp := HealthResponse{Status: "ok", Imports: imports}
	status := http.StatusOK
	if s.health != nil && imports.Active == 0 {
		ctx, cancel := context.WithTimeout(r.Context(), s.healthTimeout)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			logging.FromContext(r.Context()).Warn("health check failed", "error", err)
			resp.Status = "unavailable"
			resp.Error = core.MapError(err).Message
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

// handleImportStatus returns the import limiter state.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ImportStatus())
}

// handleExport streams every contact as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	// Headers are only sent on the first write, so a failure before any
	// output can still become a JSON error.
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="contacts.csv"`)

	n, err := s.service.Export(r.Context(), w)
	if err != nil {
		if errors.Is(err, core.ErrStreamIO) {
			// Client went away mid-stream; nothing more can be sent.
			logging.FromContext(r.Context()).Warn("export interrupted", "error", err)
			return
		}
		w.Header().Del("Content-Disposition")
		respondError(w, r, err, "")
		return
	}
	logging.FromContext(r.Context()).Debug("export served", "contacts", n)
}

// handleImport applies a CSV upload. The body is either raw CSV or a
// multipart form with the file in the "file" field. A raw body may be sent
// with Content-Encoding gzip or zstd; an uploaded file is decompressed when
// its name ends in .gz or .zst.
//
// Query parameters:
//   - strict=true: abort and roll back on the first bad record
//   - dry_run=true: parse and count without writing
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	opts, err := parseImportOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Message: err.Error(),
			Code:    "REQ001",
		})
		return
	}
	codec, err := compress.FromEncoding(r.Header.Get("Content-Encoding"))
	if err != nil {
		writeJSON(w, http.StatusUnsupportedMediaType, ErrorResponse{
			Error:   err.Error(),
			Message: err.Error(),
			Action:  "Send the file uncompressed, gzip or zstd.",
			Code:    "REQ002",
		})
		return
	}

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	body, source, err := importBody(r, codec, maxSize, w)
	if err != nil {
		respondError(w, r, importBodyError(err, maxSize), "")
		return
	}
	defer body.Close()

	ctx := WithRequestMetadata(r.Context(), r, source)
	result, err := s.service.Import(ctx, body, opts)
	if err != nil {
		respondError(w, r, importBodyError(err, maxSize), result.ImportID)
		return
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		ImportID:   result.ImportID,
		Imported:   result.Tally.Imported,
		Failed:     result.Tally.Failed,
		Strict:     opts.Tolerance == core.Strict,
		DryRun:     opts.Execution == core.DryRun,
		BytesRead:  result.BytesRead,
		DurationMS: result.Duration.Milliseconds(),
	})
}

// parseImportOptions reads the strict and dry_run query flags.
func parseImportOptions(r *http.Request) (core.ImportOptions, error) {
	var opts core.ImportOptions

	strict, err := parseBoolParam(r, "strict")
	if err != nil {
		return opts, err
	}
	dryRun, err := parseBoolParam(r, "dry_run")
	if err != nil {
		return opts, err
	}

	if strict {
		opts.Tolerance = core.Strict
	}
	if dryRun {
		opts.Execution = core.DryRun
	}
	return opts, nil
}

func parseBoolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q", name, v)
	}
	return b, nil
}

// importBody returns the decompressed CSV stream and a name for it.
// Decompressed output is held to the same size limit as the upload.
func importBody(r *http.Request, codec compress.Codec, limit int64, w http.ResponseWriter) (io.ReadCloser, string, error) {
	var (
		raw    io.ReadCloser = r.Body
		source               = "request body"
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("%w: no file provided: %w", core.ErrStreamIO, err)
		}
		raw, source = file, header.Filename
		codec = compress.FromPath(header.Filename)
	}
	if codec == compress.None {
		return raw, source, nil
	}

	zr, err := compress.NewReader(raw, codec)
	if err != nil {
		raw.Close()
		return nil, "", fmt.Errorf("%w: %w", core.ErrStreamIO, err)
	}
	return &decodedBody{
		ReadCloser: http.MaxBytesReader(w, zr, limit),
		raw:        raw,
	}, source, nil
}

// decodedBody closes both the codec and the underlying upload.
type decodedBody struct {
	io.ReadCloser
	raw io.Closer
}

func (b *decodedBody) Close() error {
	b.ReadCloser.Close()
	return b.raw.Close()
}

// importBodyError reports a body that hit the size limit as ErrFileTooLarge.
func importBodyError(err error, limit int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit %d bytes", core.ErrFileTooLarge, limit)
	}
	return err
}
