package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertImportHistory = `-- name: InsertImportHistory :one
INSERT INTO import_history (
    vendor_id, user_id, status, rows_processed, successful_rows, failed_rows, filename, changes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, vendor_id, user_id, status, rows_processed, successful_rows, failed_rows, filename, changes, created_at
`

type InsertImportHistoryParams struct {
	VendorID       pgtype.UUID
	UserID         string
	Status         string
	RowsProcessed  int32
	SuccessfulRows int32
	FailedRows     int32
	Filename       pgtype.Text
	Changes        []byte
}

func (q *Queries) InsertImportHistory(ctx context.Context, arg InsertImportHistoryParams) (ImportHistory, error) {
	row := q.db.QueryRow(ctx, insertImportHistory,
		arg.VendorID,
		arg.UserID,
		arg.Status,
		arg.RowsProcessed,
		arg.SuccessfulRows,
		arg.FailedRows,
		arg.Filename,
		arg.Changes,
	)
	var i ImportHistory
	err := row.Scan(
		&i.ID,
		&i.VendorID,
		&i.UserID,
		&i.Status,
		&i.RowsProcessed,
		&i.SuccessfulRows,
		&i.FailedRows,
		&i.Filename,
		&i.Changes,
		&i.CreatedAt,
	)
	return i, err
}

const listImportHistory = `-- name: ListImportHistory :many
SELECT id, vendor_id, user_id, status, rows_processed, successful_rows, failed_rows, filename, changes, created_at
FROM import_history
WHERE vendor_id = $1
ORDER BY created_at DESC
LIMIT $2
`

type ListImportHistoryParams struct {
	VendorID pgtype.UUID
	Limit    int32
}

func (q *Queries) ListImportHistory(ctx context.Context, arg ListImportHistoryParams) ([]ImportHistory, error) {
	rows, err := q.db.Query(ctx, listImportHistory, arg.VendorID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportHistory
	for rows.Next() {
		var i ImportHistory
		if err := rows.Scan(
			&i.ID,
			&i.VendorID,
			&i.UserID,
			&i.Status,
			&i.RowsProcessed,
			&i.SuccessfulRows,
			&i.FailedRows,
			&i.Filename,
			&i.Changes,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
