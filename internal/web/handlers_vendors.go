package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/spreadsheet"
	"github.com/JonMunkholm/VendorHub/internal/tier"
)

// handleHealth reports liveness and, when configured, database readiness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			respondError(w, r, fmt.Errorf("health check: %w", err), http.StatusServiceUnavailable)
			return
		}
	}
	writeData(w, map[string]any{"status": "ok", "imports": s.service.ImportStatus()})
}

// handleFields returns the field catalog for ?tier= (default free).
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	t := tier.Free
	if raw := r.URL.Query().Get("tier"); raw != "" {
		parsed, ok := tier.Parse(raw)
		if !ok {
			s.fail(w, r, fmt.Errorf("%w: %q", core.ErrInvalidTier, raw))
			return
		}
		t = parsed
	}
	writeData(w, s.service.FieldCatalog(t))
}

// handleGetVendor returns the tier-stripped vendor with computed fields.
func (s *Server) handleGetVendor(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.VendorView(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, view)
}

// handleVendorTemplate downloads a blank template for the vendor's tier.
func (s *Server) handleVendorTemplate(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.service.VendorTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeWorkbook(w, filename, data)
}

// handleExportVendor downloads the vendor's data. ?metadata=true adds the
// export metadata sheet.
func (s *Server) handleExportVendor(w http.ResponseWriter, r *http.Request) {
	opts := spreadsheet.ExportOptions{IncludeMetadata: parseBoolParam(r, "metadata", false)}
	data, filename, err := s.service.ExportVendor(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeWorkbook(w, filename, data)
}

// handleImportHistory lists the vendor's recent imports.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", core.DefaultHistoryLimit)
	history, err := s.service.ImportHistory(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, history)
}

// handleListVendors returns tier-aware views of the vendors in ?ids=a,b.
// Unknown ids are left out.
func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 || len(ids) > 500 {
		s.fail(w, r, &core.InputError{Field: "ids", Message: "must list between 1 and 500 vendor ids"})
		return
	}

	views, err := s.service.VendorViews(r.Context(), ids)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, views)
}

// exportVendorsRequest is the body of a multi-vendor export.
type exportVendorsRequest struct {
	VendorIDs []string  `json:"vendorIds" validate:"required,min=1,max=500,dive,required"`
	Tier      tierValue `json:"tier"`
	Metadata  bool      `json:"metadata"`
}

// handleExportVendors exports several vendors into one workbook laid out for
// one tier.
func (s *Server) handleExportVendors(w http.ResponseWriter, r *http.Request) {
	var req exportVendorsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, &core.InputError{Field: "vendorIds", Message: "must list between 1 and 500 vendor ids"})
		return
	}

	t := tier.Free
	if raw := strings.TrimSpace(string(req.Tier)); raw != "" {
		parsed, ok := tier.Parse(raw)
		if !ok {
			s.fail(w, r, fmt.Errorf("%w: %q", core.ErrInvalidTier, raw))
			return
		}
		t = parsed
	}

	data, filename, err := s.service.ExportVendors(r.Context(), req.VendorIDs, t,
		spreadsheet.ExportOptions{IncludeMetadata: req.Metadata})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeWorkbook(w, filename, data)
}

// handleAdminTemplate downloads a blank template for any vendor tier.
func (s *Server) handleAdminTemplate(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "tier")
	t, ok := tier.Parse(raw)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: %q", core.ErrInvalidTier, raw))
		return
	}
	data, filename, err := s.service.GenerateTemplate(t)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeWorkbook(w, filename, data)
}

// handleImportStatus reports the import limiter's state.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.service.ImportStatus())
}
