package core

import (
	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/tier"
)

// FieldInfo describes one field to API clients.
type FieldInfo struct {
	Name          string          `json:"name"`
	Column        string          `json:"column"`
	Type          fields.DataType `json:"type"`
	Access        tier.Level      `json:"access"`
	Required      bool            `json:"required"`
	Locked        bool            `json:"locked"`
	MaxLength     int             `json:"maxLength,omitempty"`
	Min           *float64        `json:"min,omitempty"`
	Max           *float64        `json:"max,omitempty"`
	AllowedValues []string        `json:"allowedValues,omitempty"`
	Description   string          `json:"description,omitempty"`
	Example       string          `json:"example,omitempty"`
}

// FieldCatalog lists the fields a tier can use and the ones it would unlock
// by upgrading.
type FieldCatalog struct {
	Tier          tier.Level      `json:"tier"`
	Fields        []FieldInfo     `json:"fields"`
	Locked        []FieldInfo     `json:"locked"`
	LocationLimit int             `json:"locationLimit"`
	Features      map[string]bool `json:"features"`
	FieldCounts   map[string]int  `json:"fieldCounts"`
}

// FieldCatalog builds the catalog for tier t.
func (s *Service) FieldCatalog(t tier.Level) FieldCatalog {
	t = t.Normalize()
	cat := FieldCatalog{
		Tier:          t,
		Fields:        []FieldInfo{},
		Locked:        []FieldInfo{},
		LocationLimit: s.tiers.Policy().LocationLimit(t),
		Features:      make(map[string]bool),
		FieldCounts:   make(map[string]int),
	}

	for _, f := range s.registry.FieldsForTier(t) {
		cat.Fields = append(cat.Fields, fieldInfo(f, false))
	}
	for _, f := range s.registry.LockedFieldsForTier(t) {
		cat.Locked = append(cat.Locked, fieldInfo(f, true))
	}
	for _, feature := range s.tiers.Policy().Features() {
		cat.Features[feature] = s.tiers.CanAccessFeature(t, feature)
	}
	for level, n := range s.registry.FieldCounts() {
		cat.FieldCounts[level.String()] = n
	}
	return cat
}

func fieldInfo(f fields.FieldMapping, locked bool) FieldInfo {
	return FieldInfo{
		Name:          f.Name,
		Column:        f.Column,
		Type:          f.Type,
		Access:        f.Access,
		Required:      f.Required,
		Locked:        locked,
		MaxLength:     f.Constraints.MaxLength,
		Min:           f.Constraints.Min,
		Max:           f.Constraints.Max,
		AllowedValues: f.Constraints.AllowedValues,
		Description:   f.Description,
		Example:       f.Example,
	}
}
