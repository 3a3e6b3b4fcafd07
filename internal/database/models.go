package database

import (
	"net/netip"

	"github.com/jackc/pgx/v5/pgtype"
)

type Vendor struct {
	ID        pgtype.UUID
	Tier      string
	Data      []byte
	Locations []byte
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type ImportHistory struct {
	ID             pgtype.UUID
	VendorID       pgtype.UUID
	UserID         string
	Status         string
	RowsProcessed  int32
	SuccessfulRows int32
	FailedRows     int32
	Filename       pgtype.Text
	Changes        []byte
	CreatedAt      pgtype.Timestamptz
}

type TierUpgradeRequest struct {
	ID              pgtype.UUID
	VendorID        pgtype.UUID
	RequestedBy     pgtype.Text
	CurrentTier     string
	RequestedTier   string
	RequestType     string
	VendorNotes     pgtype.Text
	Status          string
	RequestedAt     pgtype.Timestamptz
	ReviewedAt      pgtype.Timestamptz
	ReviewedBy      pgtype.Text
	RejectionReason pgtype.Text
}

type AuditLog struct {
	ID           pgtype.UUID
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
	CreatedAt    pgtype.Timestamptz
}
