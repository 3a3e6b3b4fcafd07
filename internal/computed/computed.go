// Package computed derives presentation-only vendor values. Nothing here is
// persisted.
package computed

import (
	"time"

	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/vendor"
)

// FieldYearsInBusiness is the key EnrichVendor adds to a vendor's values.
const FieldYearsInBusiness = "yearsInBusiness"

// YearConstraints is the accepted founded-year range, inclusive.
type YearConstraints struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Service computes derived fields against an injected clock.
type Service struct {
	now func() time.Time
}

// NewService creates a Service. A nil clock uses time.Now.
func NewService(now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{now: now}
}

func (s *Service) currentYear() int {
	return s.now().Year()
}

// IsValidFoundedYear reports whether year lies in [1800, current year].
func (s *Service) IsValidFoundedYear(year int) bool {
	return year >= fields.MinFoundedYear && year <= s.currentYear()
}

// FoundedYearConstraints returns the bounds IsValidFoundedYear enforces.
func (s *Service) FoundedYearConstraints() YearConstraints {
	return YearConstraints{Min: fields.MinFoundedYear, Max: s.currentYear()}
}

// YearsInBusiness returns current year minus foundedYear, or nil when the
// year is missing or out of range.
func (s *Service) YearsInBusiness(foundedYear *int) *int {
	if foundedYear == nil || !s.IsValidFoundedYear(*foundedYear) {
		return nil
	}
	years := s.currentYear() - *foundedYear
	return &years
}

// EnrichVendor returns a copy of v with yearsInBusiness added. The key is
// omitted when foundedYear is absent and set to nil when it is present but
// invalid. v is never modified.
func (s *Service) EnrichVendor(v vendor.Vendor) vendor.Vendor {
	out := v.Clone()

	founded, present := v.FoundedYear()
	if !present {
		return out
	}

	if years := s.YearsInBusiness(founded); years != nil {
		out.Values[FieldYearsInBusiness] = *years
	} else {
		out.Values[FieldYearsInBusiness] = nil
	}
	return out
}

// EnrichVendors maps EnrichVendor over vs.
func (s *Service) EnrichVendors(vs []vendor.Vendor) []vendor.Vendor {
	out := make([]vendor.Vendor, len(vs))
	for i, v := range vs {
		out[i] = s.EnrichVendor(v)
	}
	return out
}
