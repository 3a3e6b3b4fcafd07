package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/VendorHub/internal/core"
)

// InsertAuditLog writes one audit entry.
func (s *Store) InsertAuditLog(ctx context.Context, e core.AuditEntry) (*core.AuditEntry, error) {
	var details []byte
	if e.Details != nil {
		var err error
		details, err = json.Marshal(e.Details)
		if err != nil {
			details = nil // Fall back to nil if marshaling fails
		}
	}

	row, err := s.q.InsertAuditLog(ctx, InsertAuditLogParams{
		Action:       string(e.Action),
		Severity:     string(e.Severity),
		VendorID:     ToPgText(e.VendorID),
		UserID:       ToPgText(e.UserID),
		IpAddress:    ToInetAddr(e.IPAddress),
		UserAgent:    ToPgText(e.UserAgent),
		OldValue:     ToPgText(e.OldValue),
		NewValue:     ToPgText(e.NewValue),
		RowsAffected: ToPgInt4(e.RowsAffected),
		RequestID:    ToPgText(e.RequestID),
		Reason:       ToPgText(e.Reason),
		Details:      details,
	})
	if err != nil {
		return nil, err
	}
	return auditFromRow(row), nil
}

func auditWhere(filter core.AuditLogFilter) *WhereBuilder {
	wb := NewWhereBuilder()
	wb.Add("vendor_id", filter.VendorID)
	wb.Add("action", string(filter.Action))
	wb.AddTimestampRange("created_at", filter.StartTime, filter.EndTime)
	return wb
}

// ListAuditLog returns matching entries, newest first.
func (s *Store) ListAuditLog(ctx context.Context, filter core.AuditLogFilter) ([]core.AuditEntry, error) {
	wb := auditWhere(filter)
	whereClause, args := wb.Build()

	query := "SELECT " + auditLogColumns + " FROM audit_log" + whereClause +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", wb.NextArgIndex(), wb.NextArgIndex()+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]core.AuditEntry, 0)
	for rows.Next() {
		row, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *auditFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountAuditLog returns the number of entries matching filter.
func (s *Store) CountAuditLog(ctx context.Context, filter core.AuditLogFilter) (int64, error) {
	whereClause, args := auditWhere(filter).Build()
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_log"+whereClause, args...).Scan(&count)
	return count, err
}

// ArchiveAuditLog moves entries older than daysToKeep into the archive in
// batches, each in its own statement, until none remain.
func (s *Store) ArchiveAuditLog(ctx context.Context, daysToKeep, batchSize int) (int64, error) {
	var total int64
	for {
		n, err := s.q.ArchiveAuditLogBatch(ctx, ArchiveAuditLogBatchParams{
			DaysToKeep: int32(daysToKeep),
			BatchSize:  int32(batchSize),
		})
		if err != nil {
			return total, fmt.Errorf("archive audit log: %w", err)
		}
		total += n
		if n < int64(batchSize) {
			return total, nil
		}
		slog.Debug("archived audit log batch", "rows", n, "total", total)
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

// PurgeAuditArchive deletes archived entries older than yearsToKeep.
func (s *Store) PurgeAuditArchive(ctx context.Context, yearsToKeep int) (int64, error) {
	n, err := s.q.PurgeAuditArchive(ctx, int32(yearsToKeep))
	if err != nil {
		return 0, fmt.Errorf("purge audit archive: %w", err)
	}
	return n, nil
}

func auditFromRow(row AuditLog) *core.AuditEntry {
	entry := &core.AuditEntry{
		ID:        PgUUIDToString(row.ID),
		Action:    core.AuditAction(row.Action),
		Severity:  core.AuditSeverity(row.Severity),
		VendorID:  PgTextToString(row.VendorID),
		UserID:    PgTextToString(row.UserID),
		UserAgent: PgTextToString(row.UserAgent),
		OldValue:  PgTextToString(row.OldValue),
		NewValue:  PgTextToString(row.NewValue),
		RequestID: PgTextToString(row.RequestID),
		Reason:    PgTextToString(row.Reason),
		CreatedAt: row.CreatedAt.Time,
	}
	if row.IpAddress != nil {
		entry.IPAddress = row.IpAddress.String()
	}
	if row.RowsAffected.Valid {
		entry.RowsAffected = int(row.RowsAffected.Int32)
	}
	if row.Details != nil {
		_ = json.Unmarshal(row.Details, &entry.Details)
	}
	return entry
}
