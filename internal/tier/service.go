package tier

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// LocationsKey is the data key holding a vendor's locations.
const LocationsKey = "locations"

// LocationCheck is the result of ValidateLocationLimit.
type LocationCheck struct {
	Valid      bool   `json:"valid"`
	MaxAllowed int    `json:"maxAllowed"`
	Unlimited  bool   `json:"unlimited"`
	Message    string `json:"message,omitempty"`
}

// TierChangeResult is the result of ValidateTierChange.
type TierChangeResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Service centralises every tier entitlement decision. It is safe for
// concurrent use; all methods are pure functions of the policy and inputs.
type Service struct {
	policy *Policy
}

// NewService creates a Service over an immutable policy.
func NewService(policy *Policy) *Service {
	return &Service{policy: policy}
}

// LoadService builds a Service from the YAML policy at path, or from the
// defaults when path is empty.
func LoadService(path string, fieldAccess map[string]Level) (*Service, error) {
	cfg := DefaultPolicyConfig()
	if path != "" {
		loaded, err := LoadPolicyConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	policy, err := NewPolicy(cfg, fieldAccess)
	if err != nil {
		return nil, fmt.Errorf("tier policy: %w", err)
	}
	return NewService(policy), nil
}

// Policy returns the policy table the service was built with.
func (s *Service) Policy() *Policy {
	return s.policy
}

// ValidateFieldAccess reports whether a vendor at tier may read or write field.
// Unknown fields and admin-only fields are never accessible.
func (s *Service) ValidateFieldAccess(t Level, field string) bool {
	access, ok := s.policy.FieldAccess(field)
	if !ok || access == Admin {
		return false
	}
	return t.Normalize() >= access
}

// ValidateLocationLimit checks a requested location count against the cap.
func (s *Service) ValidateLocationLimit(t Level, requested int) LocationCheck {
	t = t.Normalize()
	limit := s.policy.LocationLimit(t)
	if limit == Unlimited {
		return LocationCheck{Valid: true, MaxAllowed: Unlimited, Unlimited: true}
	}

	check := LocationCheck{Valid: requested <= limit, MaxAllowed: limit}
	if !check.Valid {
		check.Message = fmt.Sprintf("Location limit exceeded: %s tier allows up to %d location(s), requested %d",
			t.Label(), limit, requested)
	}
	return check
}

// CanAccessFeature reports whether tier unlocks the named feature.
func (s *Service) CanAccessFeature(t Level, feature string) bool {
	required, ok := s.policy.FeatureTier(feature)
	if !ok {
		return false
	}
	return t.Normalize() >= required
}

// AccessibleFields returns the fields a tier can access, sorted by name.
func (s *Service) AccessibleFields(t Level) []string {
	var out []string
	for _, name := range s.policy.fieldNames {
		if s.ValidateFieldAccess(t, name) {
			out = append(out, name)
		}
	}
	return out
}

// StripInaccessible returns a copy of data holding only the keys a vendor
// at tier may see. Keys that are not registered fields (such as locations)
// pass through unchanged.
func (s *Service) StripInaccessible(t Level, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if _, known := s.policy.FieldAccess(k); known && !s.ValidateFieldAccess(t, k) {
			continue
		}
		out[k] = v
	}
	return out
}

// ValidateTierChange checks whether a vendor holding currentData can move
// from one tier to another. Upgrades always pass. A downgrade fails for
// every populated field above the target tier and when the vendor has more
// locations than the target tier allows.
func (s *Service) ValidateTierChange(from, to Level, currentData map[string]any) TierChangeResult {
	from, to = from.Normalize(), to.Normalize()
	if to >= from {
		return TierChangeResult{Valid: true}
	}

	var errs []string

	keys := make([]string, 0, len(currentData))
	for k := range currentData {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, field := range keys {
		access, ok := s.policy.FieldAccess(field)
		if !ok || access == Admin || access <= to {
			continue
		}
		if !IsPopulated(currentData[field]) {
			continue
		}
		errs = append(errs, fmt.Sprintf("Field %q requires %s or higher; clear it before downgrading to %s",
			field, access.Label(), to.Label()))
	}

	if n := countItems(currentData[LocationsKey]); n > 0 {
		if check := s.ValidateLocationLimit(to, n); !check.Valid {
			errs = append(errs, fmt.Sprintf("Location count %d exceeds the %s limit of %d; remove Locations before downgrading",
				n, to.Label(), check.MaxAllowed))
		}
	}

	if len(errs) > 0 {
		return TierChangeResult{Valid: false, Errors: errs}
	}
	return TierChangeResult{Valid: true}
}

// IsPopulated reports whether v holds a meaningful value: nil, blank
// strings, empty collections and false are empty.
func IsPopulated(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case bool:
		return x
	case []string:
		return len(x) > 0
	case []any:
		return len(x) > 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return IsPopulated(rv.Elem().Interface())
	}
	return true
}

func countItems(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len()
	}
	return 0
}
