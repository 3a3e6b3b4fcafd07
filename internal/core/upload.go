package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/VendorHub/internal/spreadsheet"
)

// DefaultMaxFileSize is the largest accepted spreadsheet (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// Accepted spreadsheet MIME types.
const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEXLS  = "application/vnd.ms-excel"
)

// CheckUpload validates an uploaded file before it is parsed. The MIME type
// decides when it names a spreadsheet; otherwise the extension must.
func CheckUpload(filename, contentType string, data []byte, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if filename == "" && data == nil {
		return ErrNoFile
	}
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%w: %d bytes exceeds the %dMB limit", ErrFileTooLarge, len(data), maxSize/(1024*1024))
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if mediaType == MIMEXLSX || mediaType == MIMEXLS {
			return nil
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return nil
	}
	return ErrUnsupportedFile
}

// ImportRequest is one uploaded spreadsheet to import for a vendor.
type ImportRequest struct {
	VendorID    string
	UserID      string
	Filename    string
	ContentType string
	Data        []byte
	DryRun      bool
	Overwrite   bool
}

// ImportResponse combines validation and execution outcomes.
type ImportResponse struct {
	Filename   string           `json:"filename"`
	Validation ValidationReport `json:"validation"`
	Result     ExecutionResult  `json:"result"`
	Duration   time.Duration    `json:"durationNs"`
}

// ImportSpreadsheet parses, validates and applies (or previews) an uploaded
// workbook. Upload and parse problems are returned as errors; execution
// problems are reported in the response's Result.
func (s *Service) ImportSpreadsheet(ctx context.Context, req ImportRequest) (*ImportResponse, error) {
	start := s.now()
	log := s.logger(ctx).With("vendor_id", req.VendorID, "filename", req.Filename, "dry_run", req.DryRun)

	if err := CheckUpload(req.Filename, req.ContentType, req.Data, s.cfg.MaxFileSize); err != nil {
		s.metrics.ImportRejected("invalid_file")
		return nil, err
	}

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		if errors.Is(err, ErrTooManyImports) {
			s.metrics.ImportRejected("busy")
		}
		return nil, err
	}
	defer release()
	s.metrics.ImportStarted()
	defer s.metrics.ImportFinished()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ImportTimeout)
	defer cancel()

	v, err := s.vendors.GetVendor(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}

	sheet, err := spreadsheet.Parse(bytes.NewReader(req.Data), s.registry)
	if err != nil {
		s.metrics.ImportRejected("parse")
		return nil, err
	}

	report := s.validator.ValidateSheet(v.Tier, sheet)
	opts := ImportOptions{
		VendorID:          req.VendorID,
		UserID:            req.UserID,
		OverwriteExisting: req.Overwrite,
		Filename:          req.Filename,
		DryRun:            req.DryRun,
	}

	var result ExecutionResult
	if req.DryRun {
		result = s.executor.Preview(ctx, report.Rows, opts)
	} else {
		result = s.executor.Execute(ctx, report.Rows, opts)
		if result.SuccessfulRows > 0 || result.Success {
			s.recordImportAudit(ctx, opts, result)
		}
	}

	elapsed := s.now().Sub(start)
	s.metrics.ObserveImport(importStatus(result), req.DryRun, result.SuccessfulRows, result.FailedRows, elapsed)
	log.Info("import processed",
		"success", result.Success,
		"total_rows", result.TotalRows,
		"successful_rows", result.SuccessfulRows,
		"failed_rows", result.FailedRows,
		"duration_ms", elapsed.Milliseconds())

	return &ImportResponse{
		Filename:   req.Filename,
		Validation: report,
		Result:     result,
		Duration:   elapsed,
	}, nil
}

func importStatus(r ExecutionResult) string {
	switch {
	case !r.Success:
		return string(HistoryFailed)
	case r.FailedRows > 0:
		return string(HistoryPartial)
	default:
		return string(HistorySuccess)
	}
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ImportStatus reports the import limiter's state.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}
