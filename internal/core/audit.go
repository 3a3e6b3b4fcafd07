package core

import (
	"context"
	"fmt"
	"time"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionImport             AuditAction = "import"
	ActionTierChange         AuditAction = "tier_change"
	ActionTierRequestCreate  AuditAction = "tier_request_create"
	ActionTierRequestApprove AuditAction = "tier_request_approve"
	ActionTierRequestReject  AuditAction = "tier_request_reject"
	ActionTierRequestCancel  AuditAction = "tier_request_cancel"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow    AuditSeverity = "low"
	SeverityMedium AuditSeverity = "medium"
	SeverityHigh   AuditSeverity = "high"
)

// ParseAuditAction returns the action named by s.
func ParseAuditAction(s string) (AuditAction, bool) {
	switch a := AuditAction(s); a {
	case ActionImport, ActionTierChange, ActionTierRequestCreate,
		ActionTierRequestApprove, ActionTierRequestReject, ActionTierRequestCancel:
		return a, true
	}
	return "", false
}

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID           string         `json:"id"`
	Action       AuditAction    `json:"action"`
	Severity     AuditSeverity  `json:"severity"`
	VendorID     string         `json:"vendorId,omitempty"`
	UserID       string         `json:"userId,omitempty"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`
	OldValue     string         `json:"oldValue,omitempty"`
	NewValue     string         `json:"newValue,omitempty"`
	RowsAffected int            `json:"rowsAffected,omitempty"`
	RequestID    string         `json:"requestId,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
type AuditLogParams struct {
	Action       AuditAction
	VendorID     string
	UserID       string
	IPAddress    string
	UserAgent    string
	OldValue     string
	NewValue     string
	RowsAffected int
	RequestID    string // tier request the entry refers to
	Reason       string
	Details      map[string]any
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImport, ActionTierChange:
		return SeverityHigh
	case ActionTierRequestCreate, ActionTierRequestCancel:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// LogAudit creates a new audit log entry. IP address and user agent default
// to the values carried by ctx.
func (s *Service) LogAudit(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	client := ClientFromContext(ctx)
	if params.IPAddress == "" {
		params.IPAddress = client.IP
	}
	if params.UserAgent == "" {
		params.UserAgent = client.UserAgent
	}
	if params.UserID == "" {
		params.UserID = ActorFromContext(ctx).UserID
	}

	entry, err := s.audit.InsertAuditLog(ctx, AuditEntry{
		Action:       params.Action,
		Severity:     determineSeverity(params.Action),
		VendorID:     params.VendorID,
		UserID:       params.UserID,
		IPAddress:    params.IPAddress,
		UserAgent:    params.UserAgent,
		OldValue:     params.OldValue,
		NewValue:     params.NewValue,
		RowsAffected: params.RowsAffected,
		RequestID:    params.RequestID,
		Reason:       params.Reason,
		Details:      params.Details,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert audit log: %w", err)
	}
	return entry, nil
}

// AuditLogFilter contains filtering options for querying audit logs.
type AuditLogFilter struct {
	VendorID  string
	Action    AuditAction
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// AuditLogPage is one page of audit entries with the total match count.
type AuditLogPage struct {
	Entries []AuditEntry `json:"entries"`
	Total   int64        `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
}

// GetAuditLog retrieves audit log entries with optional filtering, newest
// first.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) (*AuditLogPage, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = DefaultHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	entries, err := s.audit.ListAuditLog(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	total, err := s.audit.CountAuditLog(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count audit log: %w", err)
	}
	if entries == nil {
		entries = []AuditEntry{}
	}

	return &AuditLogPage{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
