package core

import (
	"context"
	"fmt"
	"time"
)

// HistoryStatus is the outcome recorded for an import.
type HistoryStatus string

const (
	HistorySuccess HistoryStatus = "success"
	HistoryPartial HistoryStatus = "partial"
	HistoryFailed  HistoryStatus = "failed"
)

// DefaultHistoryLimit is used when a caller asks for no specific limit.
const DefaultHistoryLimit = 20

// ImportHistory is the persisted record of one non-dry-run import.
type ImportHistory struct {
	ID             string         `json:"id"`
	VendorID       string         `json:"vendorId"`
	UserID         string         `json:"userId"`
	Status         HistoryStatus  `json:"status"`
	RowsProcessed  int            `json:"rowsProcessed"`
	SuccessfulRows int            `json:"successfulRows"`
	FailedRows     int            `json:"failedRows"`
	Filename       string         `json:"filename,omitempty"`
	Changes        []ChangeRecord `json:"changes"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// ImportHistory returns the most recent imports for a vendor, newest first.
func (s *Service) ImportHistory(ctx context.Context, vendorID string, limit int) ([]ImportHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultHistoryLimit
	}
	if _, err := s.vendors.GetVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	history, err := s.history.ListImportHistory(ctx, vendorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list import history: %w", err)
	}
	return history, nil
}

// recordImportAudit logs a completed, non-dry-run import to the audit log.
func (s *Service) recordImportAudit(ctx context.Context, opts ImportOptions, result ExecutionResult) {
	s.audited(ctx, AuditLogParams{
		Action:       ActionImport,
		VendorID:     opts.VendorID,
		UserID:       opts.UserID,
		RowsAffected: result.SuccessfulRows,
		Details: map[string]any{
			"filename":      opts.Filename,
			"totalRows":     result.TotalRows,
			"failedRows":    result.FailedRows,
			"changedFields": result.ChangedFields(),
			"overwrite":     opts.OverwriteExisting,
			"success":       result.Success,
		},
	})
}
