package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/VendorHub/internal/core"
)

type createTierRequestBody struct {
	RequestedTier tierValue `json:"requestedTier"`
	VendorNotes   string    `json:"vendorNotes"`
}

// handleCreateTierRequest files an upgrade or downgrade request for the vendor.
func (s *Server) handleCreateTierRequest(w http.ResponseWriter, r *http.Request) {
	var body createTierRequestBody
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	req, err := s.service.RequestTierChange(r.Context(), chi.URLParam(r, "id"), actor(r).UserID,
		string(body.RequestedTier), body.VendorNotes)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeCreated(w, req)
}

// handleCancelTierRequest withdraws the vendor's pending request.
func (s *Server) handleCancelTierRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.service.CancelTierRequest(r.Context(), chi.URLParam(r, "requestId"),
		chi.URLParam(r, "id"), actor(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, req)
}

// handleListTierRequests lists requests filtered by ?status= and
// ?requestType=, paginated by ?page= and ?limit=.
func (s *Server) handleListTierRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.TierRequestFilter{
		VendorID: q.Get("vendorId"),
		Page:     parseIntParam(r, "page", 1),
		Limit:    parseIntParam(r, "limit", core.DefaultPageSize),
	}

	if raw := q.Get("status"); raw != "" {
		status, ok := core.ParseRequestStatus(raw)
		if !ok {
			s.fail(w, r, &core.InputError{Field: "status", Message: "must be pending, approved, rejected or cancelled"})
			return
		}
		filter.Status = status
	}
	if raw := q.Get("requestType"); raw != "" {
		rt, ok := core.ParseRequestType(raw)
		if !ok {
			s.fail(w, r, &core.InputError{Field: "requestType", Message: "must be upgrade or downgrade"})
			return
		}
		filter.Type = rt
	}

	page, err := s.service.ListTierRequests(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, page)
}

// handleApproveTierRequest approves a pending request. The body is ignored.
func (s *Server) handleApproveTierRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.service.ApproveTierRequest(r.Context(), chi.URLParam(r, "id"), actor(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, req)
}

type rejectTierRequestBody struct {
	RejectionReason string `json:"rejectionReason"`
}

// handleRejectTierRequest rejects a pending request with a reason.
func (s *Server) handleRejectTierRequest(w http.ResponseWriter, r *http.Request) {
	var body rejectTierRequestBody
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	req, err := s.service.RejectTierRequest(r.Context(), chi.URLParam(r, "id"), actor(r).UserID, body.RejectionReason)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, req)
}

type setTierBody struct {
	Tier tierValue `json:"tier"`
}

// handleSetVendorTier changes a vendor's tier directly.
func (s *Server) handleSetVendorTier(w http.ResponseWriter, r *http.Request) {
	var body setTierBody
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	outcome, err := s.service.SetVendorTier(r.Context(), chi.URLParam(r, "id"), string(body.Tier), actor(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, outcome)
}
