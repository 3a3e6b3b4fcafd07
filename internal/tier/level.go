// Package tier defines the vendor tier hierarchy and the entitlement checks
// built on top of it.
//
// Tiers form a total order: free < tier1 < tier2 < tier3. Field access levels
// reuse the same scale with one extra level, Admin, that no vendor tier can
// reach.
package tier

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is an ordinal entitlement level.
type Level int

const (
	Free Level = iota
	Tier1
	Tier2
	Tier3
	// Admin is a field access level only; vendors never hold it.
	Admin
)

// VendorLevels lists the tiers a vendor can hold, lowest first.
var VendorLevels = []Level{Free, Tier1, Tier2, Tier3}

// String returns the canonical name: free, tier1, tier2, tier3 or admin.
func (l Level) String() string {
	switch l {
	case Free:
		return "free"
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Label returns a display name used in spreadsheets and messages.
func (l Level) Label() string {
	switch l {
	case Free:
		return "Free"
	case Tier1:
		return "Tier 1"
	case Tier2:
		return "Tier 2"
	case Tier3:
		return "Tier 3"
	case Admin:
		return "Admin"
	default:
		return l.String()
	}
}

// IsVendorTier reports whether l is one of free..tier3.
func (l Level) IsVendorTier() bool {
	return l >= Free && l <= Tier3
}

// AtLeast reports whether l is at or above other in the tier order.
func (l Level) AtLeast(other Level) bool {
	return l >= other
}

// Normalize clamps out-of-range vendor tiers to Free.
func (l Level) Normalize() Level {
	if !l.IsVendorTier() {
		return Free
	}
	return l
}

// Parse converts a tier name to a Level. It accepts the canonical names
// (case-insensitive, surrounding space ignored) and the digits 0-3.
// The second result is false when the input was not recognised; the
// returned Level is then Free.
func Parse(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free", "0":
		return Free, true
	case "tier1", "1":
		return Tier1, true
	case "tier2", "2":
		return Tier2, true
	case "tier3", "3":
		return Tier3, true
	default:
		return Free, false
	}
}

// ParseOrFree is Parse without the ok flag. Unknown tiers are free.
func ParseOrFree(s string) Level {
	l, _ := Parse(s)
	return l
}

// parseAccess also accepts "admin"; used for field access levels.
func parseAccess(s string) (Level, bool) {
	if strings.EqualFold(strings.TrimSpace(s), "admin") {
		return Admin, true
	}
	return Parse(s)
}

// MarshalJSON encodes the level by name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level name. Unknown names decode to Free.
func (l *Level) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int
		if err2 := json.Unmarshal(b, &n); err2 != nil {
			return fmt.Errorf("tier: %w", err)
		}
		*l = Level(n).Normalize()
		return nil
	}
	parsed, ok := parseAccess(s)
	if !ok {
		parsed = Free
	}
	*l = parsed
	return nil
}
