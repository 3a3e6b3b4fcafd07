package core

// validation.go provides row-level validation for spreadsheet data before import.
//
// Each parsed row is checked against the field registry and the vendor's tier:
//  1. Access: columns above the tier (or admin-only) must be left blank
//  2. Required: the tier's required fields must be non-empty
//  3. Type and constraints: each cell is parsed by its data type and checked
//     against max length, numeric range, allowed values and format rules
//
// Rows that pass carry the parsed values in Data, keyed by field name.

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/spreadsheet"
	"github.com/JonMunkholm/VendorHub/internal/tier"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()./-]{5,28}[0-9]$`)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string `json:"field"`           // Field name
	Column  string `json:"column"`          // Spreadsheet column label
	Value   string `json:"value,omitempty"` // The invalid value
	Message string `json:"message"`         // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: %s", e.Column, e.Message)
	}
	return e.Message
}

// ValidatedRow is one spreadsheet row after validation.
type ValidatedRow struct {
	RowNumber int               `json:"rowNumber"`
	Valid     bool              `json:"valid"`
	Data      map[string]any    `json:"data"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// ValidationSummary counts validated rows.
type ValidationSummary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// ValidationReport is the outcome of validating a parsed sheet.
type ValidationReport struct {
	Rows           []ValidatedRow    `json:"rows"`
	Summary        ValidationSummary `json:"summary"`
	UnknownColumns []string          `json:"unknownColumns,omitempty"`
}

// Validator validates rows against the field registry for a given tier.
type Validator struct {
	registry *fields.Registry
	tiers    *tier.Service
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator creates a validator. A nil now uses time.Now.
func NewValidator(registry *fields.Registry, tiers *tier.Service, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{
		registry: registry,
		tiers:    tiers,
		validate: validator.New(),
		now:      now,
	}
}

// ValidateSheet validates every row of a parsed sheet for a vendor at t.
func (v *Validator) ValidateSheet(t tier.Level, sheet *spreadsheet.Sheet) ValidationReport {
	report := ValidationReport{
		Rows:           make([]ValidatedRow, 0, len(sheet.Rows)),
		UnknownColumns: sheet.Unknown,
	}
	for _, row := range sheet.Rows {
		vr := v.ValidateRow(t, row.Number, row.Cells)
		report.Rows = append(report.Rows, vr)
		report.Summary.Total++
		if vr.Valid {
			report.Summary.Valid++
		} else {
			report.Summary.Invalid++
		}
	}
	return report
}

// ValidateRow validates a single row and returns all validation errors.
// cells maps field names to raw cell text.
func (v *Validator) ValidateRow(t tier.Level, number int, cells map[string]string) ValidatedRow {
	t = t.Normalize()
	result := ValidatedRow{RowNumber: number, Valid: true, Data: make(map[string]any)}

	fail := func(f fields.FieldMapping, value, msg string) {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   f.Name,
			Column:  f.Column,
			Value:   value,
			Message: msg,
		})
	}

	// Registry order keeps error output stable.
	for _, f := range v.registry.All() {
		raw, present := cells[f.Name]
		raw = strings.TrimSpace(raw)

		if raw == "" {
			if f.Required && f.Importable && v.tiers.ValidateFieldAccess(t, f.Name) {
				if !present {
					fail(f, "", fmt.Sprintf("%s column is missing", f.Column))
				} else {
					fail(f, "", fmt.Sprintf("%s is required", f.Column))
				}
			}
			continue
		}

		if f.IsAdmin() || !f.Importable {
			fail(f, raw, fmt.Sprintf("%s cannot be imported", f.Column))
			continue
		}
		if !v.tiers.ValidateFieldAccess(t, f.Name) {
			fail(f, raw, fmt.Sprintf("%s requires %s or higher", f.Column, f.Access.Label()))
			continue
		}

		parsed, err := f.ImportValue(raw)
		if err != nil {
			fail(f, raw, fmt.Sprintf("%s: %s", f.Column, err.Error()))
			continue
		}

		parsed, msg := v.checkConstraints(f, raw, parsed)
		if msg != "" {
			fail(f, raw, msg)
			continue
		}
		result.Data[f.Name] = parsed
	}

	return result
}

// checkConstraints applies format and constraint rules. It returns the value
// to store (allowed values are normalised to their canonical spelling) and
// an error message, empty when the value is acceptable.
func (v *Validator) checkConstraints(f fields.FieldMapping, raw string, parsed any) (any, string) {
	c := f.Constraints

	switch f.Type {
	case fields.TypeEmail:
		if v.validate.Var(raw, "email") != nil {
			return nil, fmt.Sprintf("%s must be a valid email address", f.Column)
		}
	case fields.TypeURL:
		lower := strings.ToLower(raw)
		if v.validate.Var(raw, "url") != nil ||
			!(strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")) {
			return nil, fmt.Sprintf("%s must be a valid http(s) URL", f.Column)
		}
	case fields.TypePhone:
		if !phonePattern.MatchString(raw) {
			return nil, fmt.Sprintf("%s must be a valid phone number", f.Column)
		}
	}

	if c.MaxLength > 0 {
		switch val := parsed.(type) {
		case string:
			if utf8.RuneCountInString(val) > c.MaxLength {
				return nil, fmt.Sprintf("%s exceeds maximum length of %d characters", f.Column, c.MaxLength)
			}
		case []string:
			for _, item := range val {
				if utf8.RuneCountInString(item) > c.MaxLength {
					return nil, fmt.Sprintf("%s items exceed maximum length of %d characters", f.Column, c.MaxLength)
				}
			}
		}
	}

	if len(c.AllowedValues) > 0 {
		s, _ := parsed.(string)
		matched := ""
		for _, allowed := range c.AllowedValues {
			if strings.EqualFold(allowed, s) {
				matched = allowed
				break
			}
		}
		if matched == "" {
			return nil, fmt.Sprintf("%s must be one of: %s", f.Column, strings.Join(c.AllowedValues, ", "))
		}
		parsed = matched
	}

	if n, ok := parsed.(float64); ok {
		if f.Type == fields.TypeYear {
			lo, hi := fields.MinFoundedYear, v.now().Year()
			if c.Min != nil {
				lo = int(*c.Min)
			}
			if !c.MaxCurrentYear && c.Max != nil {
				hi = int(*c.Max)
			}
			if n < float64(lo) || n > float64(hi) {
				return nil, fmt.Sprintf("%s must be between %d and %d", f.Column, lo, hi)
			}
			return parsed, ""
		}
		if c.Min != nil && n < *c.Min {
			return nil, fmt.Sprintf("%s must be at least %s", f.Column, fields.FormatNumber(*c.Min))
		}
		if c.Max != nil && n > *c.Max {
			return nil, fmt.Sprintf("%s must be at most %s", f.Column, fields.FormatNumber(*c.Max))
		}
	}

	return parsed, ""
}
