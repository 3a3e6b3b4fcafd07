// Package fields holds the vendor field mapping registry: the single source
// of truth binding internal field names to spreadsheet columns, tier access
// levels, data types and constraints.
package fields

import (
	"github.com/JonMunkholm/VendorHub/internal/tier"
)

// DataType is the expected type of a field value.
type DataType string

const (
	TypeString  DataType = "string"
	TypeNumber  DataType = "number"
	TypeEmail   DataType = "email"
	TypeURL     DataType = "url"
	TypePhone   DataType = "phone"
	TypeDate    DataType = "date"
	TypeBoolean DataType = "boolean"
	TypeYear    DataType = "year"
	TypeArray   DataType = "array"
)

// MinFoundedYear is the earliest founded year accepted anywhere.
const MinFoundedYear = 1800

// Constraints restrict the values a field accepts. Zero values mean "no
// constraint".
type Constraints struct {
	MaxLength     int
	Min           *float64
	Max           *float64
	AllowedValues []string
	// MaxCurrentYear caps the value at the current calendar year; it
	// overrides Max when set.
	MaxCurrentYear bool
}

// ExportFunc renders a stored value as a spreadsheet cell.
type ExportFunc func(v any) (string, error)

// ImportFunc parses a spreadsheet cell into a stored value.
type ImportFunc func(raw string) (any, error)

// FieldMapping describes one vendor field.
type FieldMapping struct {
	Name        string     // Internal field name (unique)
	Column      string     // Spreadsheet column label (unique)
	Access      tier.Level // Minimum tier, or tier.Admin
	Type        DataType
	Required    bool
	Exportable  bool
	Importable  bool
	Constraints Constraints
	Description string
	Example     string

	// Optional overrides of the per-type transforms.
	Export ExportFunc
	Import ImportFunc
}

// IsAdmin reports whether the field is admin-only.
func (f FieldMapping) IsAdmin() bool {
	return f.Access == tier.Admin
}

// ExportValue renders v with the field's export transform.
func (f FieldMapping) ExportValue(v any) (string, error) {
	if f.Export != nil {
		return f.Export(v)
	}
	return defaultExport(f.Type, v)
}

// ImportValue parses raw with the field's import transform. Blank input
// yields (nil, nil).
func (f FieldMapping) ImportValue(raw string) (any, error) {
	if f.Import != nil {
		return f.Import(raw)
	}
	return defaultImport(f.Type, raw)
}

func ptr(f float64) *float64 { return &f }
