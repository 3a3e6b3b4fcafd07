package tier

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Unlimited is the location limit value meaning "no cap".
const Unlimited = -1

// Feature names understood by the default policy.
const (
	FeatureMultipleLocations = "multipleLocations"
	FeatureVideoIntroduction = "videoIntroduction"
	FeatureCaseStudies       = "caseStudies"
	FeatureTeamMembers       = "teamMembers"
	FeatureAdvancedAnalytics = "advancedAnalytics"
	FeaturePromotionPack     = "promotionPack"
	FeatureEditorialContent  = "editorialContent"
)

// PolicyConfig is the tunable part of the policy table. It can be loaded
// from YAML:
//
//	location_limits:
//	  free: 1
//	  tier1: 3
//	  tier2: 10
//	  tier3: -1
//	features:
//	  multipleLocations: tier1
//	  promotionPack: tier3
type PolicyConfig struct {
	LocationLimits map[string]int    `yaml:"location_limits"`
	Features       map[string]string `yaml:"features"`
}

// DefaultPolicyConfig returns the production limits and feature table.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		LocationLimits: map[string]int{
			"free":  1,
			"tier1": 3,
			"tier2": 10,
			"tier3": Unlimited,
		},
		Features: map[string]string{
			FeatureMultipleLocations: "tier1",
			FeatureVideoIntroduction: "tier1",
			FeatureCaseStudies:       "tier2",
			FeatureTeamMembers:       "tier2",
			FeatureAdvancedAnalytics: "tier2",
			FeaturePromotionPack:     "tier3",
			FeatureEditorialContent:  "tier3",
		},
	}
}

// LoadPolicyConfig reads a YAML policy file. Missing sections fall back to
// the defaults; keys present in the file override them.
func LoadPolicyConfig(path string) (PolicyConfig, error) {
	cfg := DefaultPolicyConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read policy file: %w", err)
	}

	var file PolicyConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	for k, v := range file.LocationLimits {
		cfg.LocationLimits[k] = v
	}
	for k, v := range file.Features {
		cfg.Features[k] = v
	}
	return cfg, nil
}

// Policy is the immutable tier policy table: location caps, feature
// minimum tiers and the access level of every known field. Build it once
// with NewPolicy and share it; nothing mutates it afterwards.
type Policy struct {
	locationLimits [4]int
	features       map[string]Level
	fieldAccess    map[string]Level
	fieldNames     []string
}

// NewPolicy validates cfg and freezes it together with the field access
// table (usually fields.Registry.AccessLevels()).
func NewPolicy(cfg PolicyConfig, fieldAccess map[string]Level) (*Policy, error) {
	p := &Policy{
		features:    make(map[string]Level, len(cfg.Features)),
		fieldAccess: make(map[string]Level, len(fieldAccess)),
	}

	for _, l := range VendorLevels {
		limit, ok := cfg.LocationLimits[l.String()]
		if !ok {
			return nil, fmt.Errorf("policy: missing location limit for %s", l)
		}
		if limit < Unlimited {
			return nil, fmt.Errorf("policy: location limit for %s must be >= -1, got %d", l, limit)
		}
		p.locationLimits[l] = limit
	}

	for name, raw := range cfg.Features {
		l, ok := Parse(raw)
		if !ok {
			return nil, fmt.Errorf("policy: feature %q has unknown tier %q", name, raw)
		}
		p.features[name] = l
	}

	for name, l := range fieldAccess {
		p.fieldAccess[name] = l
		p.fieldNames = append(p.fieldNames, name)
	}
	sort.Strings(p.fieldNames)

	return p, nil
}

// LocationLimit returns the location cap for a tier (Unlimited for no cap).
func (p *Policy) LocationLimit(l Level) int {
	return p.locationLimits[l.Normalize()]
}

// FeatureTier returns the minimum tier for a feature.
func (p *Policy) FeatureTier(feature string) (Level, bool) {
	l, ok := p.features[feature]
	return l, ok
}

// FieldAccess returns the access level of a field.
func (p *Policy) FieldAccess(field string) (Level, bool) {
	l, ok := p.fieldAccess[field]
	return l, ok
}

// Features returns all feature names, sorted.
func (p *Policy) Features() []string {
	names := make([]string, 0, len(p.features))
	for name := range p.features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
