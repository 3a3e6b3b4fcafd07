package fields

import (
	"fmt"
	"sync"

	"github.com/JonMunkholm/VendorHub/internal/tier"
)

// Registry is an immutable, ordered set of field mappings. Iteration order
// is definition order, which is also spreadsheet column order.
type Registry struct {
	fields   []FieldMapping
	byName   map[string]int
	byColumn map[string]int
}

// New builds a registry from mappings.
// Panics if a field name or column label appears twice.
func New(mappings []FieldMapping) *Registry {
	r := &Registry{
		fields:   make([]FieldMapping, len(mappings)),
		byName:   make(map[string]int, len(mappings)),
		byColumn: make(map[string]int, len(mappings)),
	}
	copy(r.fields, mappings)

	for i, f := range r.fields {
		if f.Name == "" || f.Column == "" {
			panic(fmt.Sprintf("field %d: name and column are required", i))
		}
		if _, exists := r.byName[f.Name]; exists {
			panic(fmt.Sprintf("field already registered: %s", f.Name))
		}
		if _, exists := r.byColumn[f.Column]; exists {
			panic(fmt.Sprintf("column already registered: %s", f.Column))
		}
		r.byName[f.Name] = i
		r.byColumn[f.Column] = i
	}

	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the vendor field registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New(vendorFields())
	})
	return defaultRegistry
}

// All returns every mapping in definition order.
func (r *Registry) All() []FieldMapping {
	out := make([]FieldMapping, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of registered fields.
func (r *Registry) Len() int {
	return len(r.fields)
}

// Field looks up a mapping by exact field name.
func (r *Registry) Field(name string) (FieldMapping, bool) {
	i, ok := r.byName[name]
	if !ok {
		return FieldMapping{}, false
	}
	return r.fields[i], true
}

// FieldByColumn looks up a mapping by exact column label.
func (r *Registry) FieldByColumn(column string) (FieldMapping, bool) {
	i, ok := r.byColumn[column]
	if !ok {
		return FieldMapping{}, false
	}
	return r.fields[i], true
}

func (r *Registry) filter(keep func(FieldMapping) bool) []FieldMapping {
	var out []FieldMapping
	for _, f := range r.fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// FieldsForTier returns the non-admin fields accessible at t.
func (r *Registry) FieldsForTier(t tier.Level) []FieldMapping {
	t = t.Normalize()
	return r.filter(func(f FieldMapping) bool {
		return !f.IsAdmin() && f.Access <= t
	})
}

// ExportableFieldsForTier returns accessible fields flagged exportable.
func (r *Registry) ExportableFieldsForTier(t tier.Level) []FieldMapping {
	t = t.Normalize()
	return r.filter(func(f FieldMapping) bool {
		return !f.IsAdmin() && f.Access <= t && f.Exportable
	})
}

// ImportableFieldsForTier returns accessible fields flagged importable.
func (r *Registry) ImportableFieldsForTier(t tier.Level) []FieldMapping {
	t = t.Normalize()
	return r.filter(func(f FieldMapping) bool {
		return !f.IsAdmin() && f.Access <= t && f.Importable
	})
}

// RequiredFieldsForTier returns accessible fields flagged required.
func (r *Registry) RequiredFieldsForTier(t tier.Level) []FieldMapping {
	t = t.Normalize()
	return r.filter(func(f FieldMapping) bool {
		return !f.IsAdmin() && f.Access <= t && f.Required
	})
}

// LockedFieldsForTier returns the non-admin fields above t. These drive
// upgrade prompts.
func (r *Registry) LockedFieldsForTier(t tier.Level) []FieldMapping {
	t = t.Normalize()
	return r.filter(func(f FieldMapping) bool {
		return !f.IsAdmin() && f.Access > t
	})
}

// AdminFields returns the admin-only fields.
func (r *Registry) AdminFields() []FieldMapping {
	return r.filter(FieldMapping.IsAdmin)
}

// HasFieldAccess reports whether field is accessible at t.
func (r *Registry) HasFieldAccess(t tier.Level, name string) bool {
	f, ok := r.Field(name)
	if !ok || f.IsAdmin() {
		return false
	}
	return f.Access <= t.Normalize()
}

// FieldCounts returns the number of fields at each access level.
func (r *Registry) FieldCounts() map[tier.Level]int {
	counts := map[tier.Level]int{
		tier.Free: 0, tier.Tier1: 0, tier.Tier2: 0, tier.Tier3: 0, tier.Admin: 0,
	}
	for _, f := range r.fields {
		counts[f.Access]++
	}
	return counts
}

// AccessLevels returns field name -> access level, the input for
// tier.NewPolicy.
func (r *Registry) AccessLevels() map[string]tier.Level {
	out := make(map[string]tier.Level, len(r.fields))
	for _, f := range r.fields {
		out[f.Name] = f.Access
	}
	return out
}

// Names returns field names in definition order.
func Names(fs []FieldMapping) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}
