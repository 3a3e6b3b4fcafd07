package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const tierRequestColumns = `id, vendor_id, requested_by, current_tier, requested_tier, request_type,
    vendor_notes, status, requested_at, reviewed_at, reviewed_by, rejection_reason`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTierRequest(row rowScanner) (TierUpgradeRequest, error) {
	var i TierUpgradeRequest
	err := row.Scan(
		&i.ID,
		&i.VendorID,
		&i.RequestedBy,
		&i.CurrentTier,
		&i.RequestedTier,
		&i.RequestType,
		&i.VendorNotes,
		&i.Status,
		&i.RequestedAt,
		&i.ReviewedAt,
		&i.ReviewedBy,
		&i.RejectionReason,
	)
	return i, err
}

const insertTierRequest = `-- name: InsertTierRequest :one
INSERT INTO tier_upgrade_requests (
    vendor_id, requested_by, current_tier, requested_tier, request_type, vendor_notes, status, requested_at
) VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7)
RETURNING ` + tierRequestColumns

type InsertTierRequestParams struct {
	VendorID      pgtype.UUID
	RequestedBy   pgtype.Text
	CurrentTier   string
	RequestedTier string
	RequestType   string
	VendorNotes   pgtype.Text
	RequestedAt   pgtype.Timestamptz
}

func (q *Queries) InsertTierRequest(ctx context.Context, arg InsertTierRequestParams) (TierUpgradeRequest, error) {
	row := q.db.QueryRow(ctx, insertTierRequest,
		arg.VendorID,
		arg.RequestedBy,
		arg.CurrentTier,
		arg.RequestedTier,
		arg.RequestType,
		arg.VendorNotes,
		arg.RequestedAt,
	)
	return scanTierRequest(row)
}

const getTierRequest = `-- name: GetTierRequest :one
SELECT ` + tierRequestColumns + `
FROM tier_upgrade_requests
WHERE id = $1
`

func (q *Queries) GetTierRequest(ctx context.Context, id pgtype.UUID) (TierUpgradeRequest, error) {
	return scanTierRequest(q.db.QueryRow(ctx, getTierRequest, id))
}

const getPendingTierRequest = `-- name: GetPendingTierRequest :one
SELECT ` + tierRequestColumns + `
FROM tier_upgrade_requests
WHERE vendor_id = $1 AND status = 'pending'
LIMIT 1
`

func (q *Queries) GetPendingTierRequest(ctx context.Context, vendorID pgtype.UUID) (TierUpgradeRequest, error) {
	return scanTierRequest(q.db.QueryRow(ctx, getPendingTierRequest, vendorID))
}

// The status = 'pending' guard makes concurrent reviews of one request
// race safely: only the first update returns a row.
const reviewTierRequest = `-- name: ReviewTierRequest :one
UPDATE tier_upgrade_requests
SET status = $2,
    reviewed_at = $3,
    reviewed_by = $4,
    rejection_reason = $5
WHERE id = $1 AND status = 'pending'
RETURNING ` + tierRequestColumns

type ReviewTierRequestParams struct {
	ID              pgtype.UUID
	Status          string
	ReviewedAt      pgtype.Timestamptz
	ReviewedBy      pgtype.Text
	RejectionReason pgtype.Text
}

func (q *Queries) ReviewTierRequest(ctx context.Context, arg ReviewTierRequestParams) (TierUpgradeRequest, error) {
	row := q.db.QueryRow(ctx, reviewTierRequest,
		arg.ID,
		arg.Status,
		arg.ReviewedAt,
		arg.ReviewedBy,
		arg.RejectionReason,
	)
	return scanTierRequest(row)
}
