package core

import (
	"context"

	"github.com/JonMunkholm/VendorHub/internal/tier"
	"github.com/JonMunkholm/VendorHub/internal/vendor"
)

// VendorStore persists vendor profiles.
type VendorStore interface {
	// GetVendor returns ErrVendorNotFound when no vendor has id.
	GetVendor(ctx context.Context, id string) (*vendor.Vendor, error)
	ListVendors(ctx context.Context, ids []string) ([]vendor.Vendor, error)
	// UpdateVendorFields merges changes into the vendor's values in one
	// statement.
	UpdateVendorFields(ctx context.Context, id string, changes map[string]any) error
	UpdateVendorTier(ctx context.Context, id string, t tier.Level) error
}

// ImportHistoryStore persists import history records.
type ImportHistoryStore interface {
	CreateImportHistory(ctx context.Context, h ImportHistory) (*ImportHistory, error)
	ListImportHistory(ctx context.Context, vendorID string, limit int) ([]ImportHistory, error)
}

// TierRequestStore persists tier upgrade requests.
type TierRequestStore interface {
	CreateTierRequest(ctx context.Context, req TierUpgradeRequest) (*TierUpgradeRequest, error)
	// GetTierRequest returns ErrRequestNotFound when no request has id.
	GetTierRequest(ctx context.Context, id string) (*TierUpgradeRequest, error)
	// FindPendingTierRequest returns nil, nil when the vendor has none.
	FindPendingTierRequest(ctx context.Context, vendorID string) (*TierUpgradeRequest, error)
	ListTierRequests(ctx context.Context, filter TierRequestFilter) ([]TierUpgradeRequest, int, error)
	// UpdateTierRequestStatus moves a pending request to a final status. It
	// returns ErrInvalidTransition when the request is no longer pending.
	UpdateTierRequestStatus(ctx context.Context, update TierRequestUpdate) (*TierUpgradeRequest, error)
	// ApproveTierRequest marks a pending request approved and sets the
	// vendor's tier atomically.
	ApproveTierRequest(ctx context.Context, update TierRequestUpdate, newTier tier.Level) (*TierUpgradeRequest, error)
}

// AuditStore persists the audit log and its archive.
type AuditStore interface {
	InsertAuditLog(ctx context.Context, entry AuditEntry) (*AuditEntry, error)
	ListAuditLog(ctx context.Context, filter AuditLogFilter) ([]AuditEntry, error)
	CountAuditLog(ctx context.Context, filter AuditLogFilter) (int64, error)
	ArchiveAuditLog(ctx context.Context, daysToKeep, batchSize int) (int64, error)
	PurgeAuditArchive(ctx context.Context, yearsToKeep int) (int64, error)
}
