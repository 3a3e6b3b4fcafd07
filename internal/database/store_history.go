package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/VendorHub/internal/core"
)

// CreateImportHistory records one import.
func (s *Store) CreateImportHistory(ctx context.Context, h core.ImportHistory) (*core.ImportHistory, error) {
	vendorID := ToPgUUID(h.VendorID)
	if !vendorID.Valid {
		return nil, core.ErrVendorNotFound
	}
	changes := h.Changes
	if changes == nil {
		changes = []core.ChangeRecord{}
	}
	payload, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("encode import changes: %w", err)
	}

	row, err := s.q.InsertImportHistory(ctx, InsertImportHistoryParams{
		VendorID:       vendorID,
		UserID:         h.UserID,
		Status:         string(h.Status),
		RowsProcessed:  int32(h.RowsProcessed),
		SuccessfulRows: int32(h.SuccessfulRows),
		FailedRows:     int32(h.FailedRows),
		Filename:       ToPgText(h.Filename),
		Changes:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("insert import history: %w", err)
	}
	return historyFromRow(row)
}

// ListImportHistory returns a vendor's imports, newest first.
func (s *Store) ListImportHistory(ctx context.Context, vendorID string, limit int) ([]core.ImportHistory, error) {
	pgID := ToPgUUID(vendorID)
	if !pgID.Valid {
		return []core.ImportHistory{}, nil
	}
	rows, err := s.q.ListImportHistory(ctx, ListImportHistoryParams{VendorID: pgID, Limit: int32(limit)})
	if err != nil {
		return nil, fmt.Errorf("list import history: %w", err)
	}

	out := make([]core.ImportHistory, 0, len(rows))
	for _, row := range rows {
		h, err := historyFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, nil
}

func historyFromRow(row ImportHistory) (*core.ImportHistory, error) {
	h := &core.ImportHistory{
		ID:             PgUUIDToString(row.ID),
		VendorID:       PgUUIDToString(row.VendorID),
		UserID:         row.UserID,
		Status:         core.HistoryStatus(row.Status),
		RowsProcessed:  int(row.RowsProcessed),
		SuccessfulRows: int(row.SuccessfulRows),
		FailedRows:     int(row.FailedRows),
		Filename:       PgTextToString(row.Filename),
		Changes:        []core.ChangeRecord{},
		CreatedAt:      row.CreatedAt.Time,
	}
	if len(row.Changes) > 0 {
		if err := json.Unmarshal(row.Changes, &h.Changes); err != nil {
			return nil, fmt.Errorf("decode import %s changes: %w", h.ID, err)
		}
	}
	return h, nil
}
