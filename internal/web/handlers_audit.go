package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/VendorHub/internal/core"
)

const auditDateLayout = "2006-01-02"

// handleAuditLog lists audit entries.
// Query: vendorId, action, from, to (YYYY-MM-DD, inclusive), limit, offset.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.AuditLogFilter{
		VendorID: q.Get("vendorId"),
		Limit:    parseIntParam(r, "limit", core.DefaultHistoryLimit),
		Offset:   parseIntParam(r, "offset", 0),
	}

	if raw := q.Get("action"); raw != "" {
		action, ok := core.ParseAuditAction(raw)
		if !ok {
			s.fail(w, r, &core.InputError{Field: "action", Message: "is not a known audit action"})
			return
		}
		filter.Action = action
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(auditDateLayout, raw)
		if err != nil {
			s.fail(w, r, &core.InputError{Field: "from", Message: "must be a YYYY-MM-DD date"})
			return
		}
		filter.StartTime = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(auditDateLayout, raw)
		if err != nil {
			s.fail(w, r, &core.InputError{Field: "to", Message: "must be a YYYY-MM-DD date"})
			return
		}
		filter.EndTime = t.Add(24*time.Hour - time.Second)
	}

	page, err := s.service.GetAuditLog(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, page)
}
