package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/VendorHub/internal/tier"
)

// RequestStatus is the lifecycle state of a tier upgrade request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// RequestType tells upgrades from downgrades.
type RequestType string

const (
	RequestUpgrade   RequestType = "upgrade"
	RequestDowngrade RequestType = "downgrade"
)

// Pagination bounds for request listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CanTransition reports whether a request may move from one status to
// another. Only pending requests move, and only to a final status.
func CanTransition(from, to RequestStatus) bool {
	if from != StatusPending {
		return false
	}
	switch to {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// ParseRequestStatus returns the status named by s.
func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch st := RequestStatus(strings.ToLower(s)); st {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return st, true
	}
	return "", false
}

// ParseRequestType returns the request type named by s.
func ParseRequestType(s string) (RequestType, bool) {
	switch rt := RequestType(strings.ToLower(s)); rt {
	case RequestUpgrade, RequestDowngrade:
		return rt, true
	}
	return "", false
}

// TierUpgradeRequest asks an admin to move a vendor to another tier.
type TierUpgradeRequest struct {
	ID              string        `json:"id"`
	VendorID        string        `json:"vendorId"`
	RequestedBy     string        `json:"requestedBy,omitempty"`
	CurrentTier     tier.Level    `json:"currentTier"`
	RequestedTier   tier.Level    `json:"requestedTier"`
	RequestType     RequestType   `json:"requestType"`
	VendorNotes     string        `json:"vendorNotes,omitempty"`
	Status          RequestStatus `json:"status"`
	RequestedAt     time.Time     `json:"requestedAt"`
	ReviewedAt      *time.Time    `json:"reviewedAt,omitempty"`
	ReviewedBy      string        `json:"reviewedBy,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
}

// TierRequestFilter selects requests for listing. Empty fields match all.
type TierRequestFilter struct {
	Status   RequestStatus
	Type     RequestType
	VendorID string
	Page     int // 1-based
	Limit    int
}

// Offset returns the row offset of the filter's page.
func (f TierRequestFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// TierRequestUpdate moves a pending request to Status.
type TierRequestUpdate struct {
	ID              string
	Status          RequestStatus
	ReviewedBy      string
	ReviewedAt      time.Time
	RejectionReason string
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// TierRequestPage is one page of tier requests.
type TierRequestPage struct {
	Requests   []TierUpgradeRequest `json:"requests"`
	Pagination Pagination           `json:"pagination"`
}

type requestInput struct {
	VendorNotes string `validate:"max=500"`
}

type rejectInput struct {
	RejectionReason string `validate:"required,min=10,max=1000"`
}

// RequestTierChange files a request to move a vendor to requested.
func (s *Service) RequestTierChange(ctx context.Context, vendorID, userID, requested, notes string) (*TierUpgradeRequest, error) {
	target, ok := tier.Parse(requested)
	if !ok || !target.IsVendorTier() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, requested)
	}
	notes = strings.TrimSpace(notes)
	if err := s.validateInput(requestInput{VendorNotes: notes}); err != nil {
		return nil, err
	}

	v, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if v.Tier == target {
		return nil, ErrSameTier
	}

	pending, err := s.requests.FindPendingTierRequest(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("find pending tier request: %w", err)
	}
	if pending != nil {
		return nil, ErrPendingRequestExists
	}

	reqType := RequestUpgrade
	if target < v.Tier {
		reqType = RequestDowngrade
	}

	req, err := s.requests.CreateTierRequest(ctx, TierUpgradeRequest{
		VendorID:      vendorID,
		RequestedBy:   userID,
		CurrentTier:   v.Tier,
		RequestedTier: target,
		RequestType:   reqType,
		VendorNotes:   notes,
		Status:        StatusPending,
		RequestedAt:   s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create tier request: %w", err)
	}

	s.metrics.TierRequest(string(ActionTierRequestCreate))
	s.audited(ctx, AuditLogParams{
		Action:    ActionTierRequestCreate,
		VendorID:  vendorID,
		UserID:    userID,
		OldValue:  v.Tier.String(),
		NewValue:  target.String(),
		RequestID: req.ID,
		Reason:    notes,
	})
	return req, nil
}

// ListTierRequests returns one page of requests matching filter, newest
// first.
func (s *Service) ListTierRequests(ctx context.Context, filter TierRequestFilter) (*TierRequestPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}

	reqs, total, err := s.requests.ListTierRequests(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tier requests: %w", err)
	}
	if reqs == nil {
		reqs = []TierUpgradeRequest{}
	}

	return &TierRequestPage{
		Requests: reqs,
		Pagination: Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: (total + filter.Limit - 1) / filter.Limit,
		},
	}, nil
}

// ApproveTierRequest approves a pending request and applies the new tier.
// Downgrades must pass the tier change check against the vendor's data.
func (s *Service) ApproveTierRequest(ctx context.Context, id, adminID string) (*TierUpgradeRequest, error) {
	req, err := s.pendingRequest(ctx, id, StatusApproved)
	if err != nil {
		return nil, err
	}

	v, err := s.vendors.GetVendor(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	if check := s.tiers.ValidateTierChange(v.Tier, req.RequestedTier, v.TierData()); !check.Valid {
		return nil, &TierChangeError{Errors: check.Errors}
	}

	approved, err := s.requests.ApproveTierRequest(ctx, TierRequestUpdate{
		ID:         id,
		Status:     StatusApproved,
		ReviewedBy: adminID,
		ReviewedAt: s.now(),
	}, req.RequestedTier)
	if err != nil {
		return nil, fmt.Errorf("approve tier request: %w", err)
	}

	s.metrics.TierRequest(string(ActionTierRequestApprove))
	s.metrics.TierChanged(v.Tier.String(), req.RequestedTier.String(), "request")
	s.audited(ctx, AuditLogParams{
		Action:    ActionTierRequestApprove,
		VendorID:  req.VendorID,
		UserID:    adminID,
		OldValue:  v.Tier.String(),
		NewValue:  req.RequestedTier.String(),
		RequestID: id,
	})
	return approved, nil
}

// RejectTierRequest rejects a pending request with a reason of 10 to 1000
// characters.
func (s *Service) RejectTierRequest(ctx context.Context, id, adminID, reason string) (*TierUpgradeRequest, error) {
	reason = strings.TrimSpace(reason)
	if err := s.validateInput(rejectInput{RejectionReason: reason}); err != nil {
		return nil, err
	}

	req, err := s.pendingRequest(ctx, id, StatusRejected)
	if err != nil {
		return nil, err
	}

	rejected, err := s.requests.UpdateTierRequestStatus(ctx, TierRequestUpdate{
		ID:              id,
		Status:          StatusRejected,
		ReviewedBy:      adminID,
		ReviewedAt:      s.now(),
		RejectionReason: reason,
	})
	if err != nil {
		return nil, fmt.Errorf("reject tier request: %w", err)
	}

	s.metrics.TierRequest(string(ActionTierRequestReject))
	s.audited(ctx, AuditLogParams{
		Action:    ActionTierRequestReject,
		VendorID:  req.VendorID,
		UserID:    adminID,
		RequestID: id,
		Reason:    reason,
	})
	return rejected, nil
}

// CancelTierRequest withdraws a pending request on behalf of its vendor.
func (s *Service) CancelTierRequest(ctx context.Context, id, vendorID, userID string) (*TierUpgradeRequest, error) {
	req, err := s.pendingRequest(ctx, id, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if req.VendorID != vendorID {
		return nil, ErrNotRequestOwner
	}

	cancelled, err := s.requests.UpdateTierRequestStatus(ctx, TierRequestUpdate{
		ID:         id,
		Status:     StatusCancelled,
		ReviewedBy: userID,
		ReviewedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("cancel tier request: %w", err)
	}

	s.metrics.TierRequest(string(ActionTierRequestCancel))
	s.audited(ctx, AuditLogParams{
		Action:    ActionTierRequestCancel,
		VendorID:  vendorID,
		UserID:    userID,
		RequestID: id,
	})
	return cancelled, nil
}

// TierChangeOutcome reports an admin direct tier change.
type TierChangeOutcome struct {
	VendorID string     `json:"vendorId"`
	OldTier  tier.Level `json:"oldTier"`
	NewTier  tier.Level `json:"newTier"`
	Changed  bool       `json:"changed"`
}

// SetVendorTier changes a vendor's tier directly. Downgrades are checked the
// same way as approved requests.
func (s *Service) SetVendorTier(ctx context.Context, vendorID, requested, adminID string) (*TierChangeOutcome, error) {
	target, ok := tier.Parse(requested)
	if !ok || !target.IsVendorTier() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, requested)
	}

	v, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	outcome := &TierChangeOutcome{VendorID: vendorID, OldTier: v.Tier, NewTier: target}
	if v.Tier == target {
		return outcome, nil
	}

	if check := s.tiers.ValidateTierChange(v.Tier, target, v.TierData()); !check.Valid {
		return nil, &TierChangeError{Errors: check.Errors}
	}
	if err := s.vendors.UpdateVendorTier(ctx, vendorID, target); err != nil {
		return nil, fmt.Errorf("update vendor tier: %w", err)
	}
	outcome.Changed = true

	s.metrics.TierChanged(v.Tier.String(), target.String(), "admin")
	s.audited(ctx, AuditLogParams{
		Action:   ActionTierChange,
		VendorID: vendorID,
		UserID:   adminID,
		OldValue: v.Tier.String(),
		NewValue: target.String(),
	})
	return outcome, nil
}

// pendingRequest loads a request and checks it may move to status.
func (s *Service) pendingRequest(ctx context.Context, id string, to RequestStatus) (*TierUpgradeRequest, error) {
	req, err := s.requests.GetTierRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(req.Status, to) {
		return nil, fmt.Errorf("%w (status %s)", ErrInvalidTransition, req.Status)
	}
	return req, nil
}

func (s *Service) validateInput(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &InputError{Message: err.Error()}
	}

	fe := verrs[0]
	switch fe.Field() {
	case "RejectionReason":
		return &InputError{Field: "rejectionReason", Message: "must be 10-1000 characters"}
	case "VendorNotes":
		return &InputError{Field: "vendorNotes", Message: "must be at most 500 characters"}
	}
	return &InputError{Field: fe.Field(), Message: "failed " + fe.Tag() + " check"}
}

// audited writes an audit entry, logging instead of failing the caller.
func (s *Service) audited(ctx context.Context, params AuditLogParams) {
	if _, err := s.LogAudit(ctx, params); err != nil {
		s.logger(ctx).Warn("audit entry not written", "action", params.Action, "vendor_id", params.VendorID, "error", err)
	}
}
