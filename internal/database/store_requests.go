package database

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/tier"
)

// CreateTierRequest inserts a pending request. The partial unique index on
// pending requests turns a concurrent duplicate into
// ErrPendingRequestExists.
func (s *Store) CreateTierRequest(ctx context.Context, req core.TierUpgradeRequest) (*core.TierUpgradeRequest, error) {
	vendorID := ToPgUUID(req.VendorID)
	if !vendorID.Valid {
		return nil, core.ErrVendorNotFound
	}
	row, err := s.q.InsertTierRequest(ctx, InsertTierRequestParams{
		VendorID:      vendorID,
		RequestedBy:   ToPgText(req.RequestedBy),
		CurrentTier:   req.CurrentTier.String(),
		RequestedTier: req.RequestedTier.String(),
		RequestType:   string(req.RequestType),
		VendorNotes:   ToPgText(req.VendorNotes),
		RequestedAt:   ToPgTimestamptz(req.RequestedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrPendingRequestExists
		}
		return nil, fmt.Errorf("insert tier request: %w", err)
	}
	return requestFromRow(row), nil
}

// GetTierRequest loads one request.
func (s *Store) GetTierRequest(ctx context.Context, id string) (*core.TierUpgradeRequest, error) {
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return nil, core.ErrRequestNotFound
	}
	row, err := s.q.GetTierRequest(ctx, pgID)
	if err != nil {
		if isNoRows(err) {
			return nil, core.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get tier request: %w", err)
	}
	return requestFromRow(row), nil
}

// FindPendingTierRequest returns the vendor's pending request, or nil.
func (s *Store) FindPendingTierRequest(ctx context.Context, vendorID string) (*core.TierUpgradeRequest, error) {
	pgID := ToPgUUID(vendorID)
	if !pgID.Valid {
		return nil, nil
	}
	row, err := s.q.GetPendingTierRequest(ctx, pgID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find pending tier request: %w", err)
	}
	return requestFromRow(row), nil
}

// ListTierRequests returns one page of matching requests, newest first,
// and the total match count.
func (s *Store) ListTierRequests(ctx context.Context, filter core.TierRequestFilter) ([]core.TierUpgradeRequest, int, error) {
	wb := NewWhereBuilder()
	wb.Add("status", string(filter.Status))
	wb.Add("request_type", string(filter.Type))
	if filter.VendorID != "" {
		pgID := ToPgUUID(filter.VendorID)
		if !pgID.Valid {
			return []core.TierUpgradeRequest{}, 0, nil
		}
		wb.Add("vendor_id", PgUUIDToString(pgID))
	}
	whereClause, args := wb.Build()

	var total int
	countQuery := "SELECT COUNT(*) FROM tier_upgrade_requests" + whereClause
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tier requests: %w", err)
	}

	query := "SELECT " + tierRequestColumns + " FROM tier_upgrade_requests" + whereClause +
		fmt.Sprintf(" ORDER BY requested_at DESC, id LIMIT $%d OFFSET $%d", wb.NextArgIndex(), wb.NextArgIndex()+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tier requests: %w", err)
	}
	defer rows.Close()

	out := make([]core.TierUpgradeRequest, 0)
	for rows.Next() {
		row, err := scanTierRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *requestFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateTierRequestStatus moves a pending request to a final status.
func (s *Store) UpdateTierRequestStatus(ctx context.Context, update core.TierRequestUpdate) (*core.TierUpgradeRequest, error) {
	return s.review(ctx, s.q, update)
}

// ApproveTierRequest marks the request approved and sets the vendor's tier
// in one transaction.
func (s *Store) ApproveTierRequest(ctx context.Context, update core.TierRequestUpdate, newTier tier.Level) (*core.TierUpgradeRequest, error) {
	var approved *core.TierUpgradeRequest
	err := s.withTx(ctx, func(q *Queries) error {
		req, err := s.review(ctx, q, update)
		if err != nil {
			return err
		}
		if err := updateTier(ctx, q, req.VendorID, newTier); err != nil {
			return err
		}
		approved = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (s *Store) review(ctx context.Context, q *Queries, update core.TierRequestUpdate) (*core.TierUpgradeRequest, error) {
	pgID := ToPgUUID(update.ID)
	if !pgID.Valid {
		return nil, core.ErrRequestNotFound
	}
	row, err := q.ReviewTierRequest(ctx, ReviewTierRequestParams{
		ID:              pgID,
		Status:          string(update.Status),
		ReviewedAt:      ToPgTimestamptz(update.ReviewedAt),
		ReviewedBy:      ToPgText(update.ReviewedBy),
		RejectionReason: ToPgText(update.RejectionReason),
	})
	if err == nil {
		return requestFromRow(row), nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("review tier request: %w", err)
	}

	// No pending row matched: either the id is unknown or it was decided.
	if _, getErr := q.GetTierRequest(ctx, pgID); getErr != nil {
		if isNoRows(getErr) {
			return nil, core.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get tier request: %w", getErr)
	}
	return nil, core.ErrInvalidTransition
}

func requestFromRow(row TierUpgradeRequest) *core.TierUpgradeRequest {
	return &core.TierUpgradeRequest{
		ID:              PgUUIDToString(row.ID),
		VendorID:        PgUUIDToString(row.VendorID),
		RequestedBy:     PgTextToString(row.RequestedBy),
		CurrentTier:     tier.ParseOrFree(row.CurrentTier),
		RequestedTier:   tier.ParseOrFree(row.RequestedTier),
		RequestType:     core.RequestType(row.RequestType),
		VendorNotes:     PgTextToString(row.VendorNotes),
		Status:          core.RequestStatus(row.Status),
		RequestedAt:     row.RequestedAt.Time,
		ReviewedAt:      PgTimestamptzToPtr(row.ReviewedAt),
		ReviewedBy:      PgTextToString(row.ReviewedBy),
		RejectionReason: PgTextToString(row.RejectionReason),
	}
}
