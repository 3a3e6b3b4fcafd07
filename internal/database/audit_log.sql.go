package database

import (
	"context"
	"net/netip"

	"github.com/jackc/pgx/v5/pgtype"
)

const auditLogColumns = `id, action, severity, vendor_id, user_id, ip_address, user_agent,
    old_value, new_value, rows_affected, request_id, reason, details, created_at`

func scanAuditLog(row rowScanner) (AuditLog, error) {
	var i AuditLog
	err := row.Scan(
		&i.ID,
		&i.Action,
		&i.Severity,
		&i.VendorID,
		&i.UserID,
		&i.IpAddress,
		&i.UserAgent,
		&i.OldValue,
		&i.NewValue,
		&i.RowsAffected,
		&i.RequestID,
		&i.Reason,
		&i.Details,
		&i.CreatedAt,
	)
	return i, err
}

const insertAuditLog = `-- name: InsertAuditLog :one
INSERT INTO audit_log (
    action, severity, vendor_id, user_id, ip_address, user_agent,
    old_value, new_value, rows_affected, request_id, reason, details
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + auditLogColumns

type InsertAuditLogParams struct {
	Action       string
	Severity     string
	VendorID     pgtype.Text
	UserID       pgtype.Text
	IpAddress    *netip.Addr
	UserAgent    pgtype.Text
	OldValue     pgtype.Text
	NewValue     pgtype.Text
	RowsAffected pgtype.Int4
	RequestID    pgtype.Text
	Reason       pgtype.Text
	Details      []byte
}

func (q *Queries) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (AuditLog, error) {
	row := q.db.QueryRow(ctx, insertAuditLog,
		arg.Action,
		arg.Severity,
		arg.VendorID,
		arg.UserID,
		arg.IpAddress,
		arg.UserAgent,
		arg.OldValue,
		arg.NewValue,
		arg.RowsAffected,
		arg.RequestID,
		arg.Reason,
		arg.Details,
	)
	return scanAuditLog(row)
}

const archiveAuditLogBatch = `-- name: ArchiveAuditLogBatch :execrows
WITH moved AS (
    DELETE FROM audit_log
    WHERE id IN (
        SELECT id FROM audit_log
        WHERE created_at < now() - make_interval(days => $1::int)
        ORDER BY created_at
        LIMIT $2
    )
    RETURNING ` + auditLogColumns + `
)
INSERT INTO audit_log_archive (` + auditLogColumns + `)
SELECT ` + auditLogColumns + ` FROM moved
`

type ArchiveAuditLogBatchParams struct {
	DaysToKeep int32
	BatchSize  int32
}

func (q *Queries) ArchiveAuditLogBatch(ctx context.Context, arg ArchiveAuditLogBatchParams) (int64, error) {
	result, err := q.db.Exec(ctx, archiveAuditLogBatch, arg.DaysToKeep, arg.BatchSize)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const purgeAuditArchive = `-- name: PurgeAuditArchive :execrows
DELETE FROM audit_log_archive
WHERE created_at < now() - make_interval(years => $1::int)
`

func (q *Queries) PurgeAuditArchive(ctx context.Context, yearsToKeep int32) (int64, error) {
	result, err := q.db.Exec(ctx, purgeAuditArchive, yearsToKeep)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
