package tier

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testService(t *testing.T) *Service {
	t.Helper()
	p, err := NewPolicy(DefaultPolicyConfig(), map[string]Level{
		"name":             Free,
		"contactEmail":     Free,
		"website":          Tier1,
		"foundedYear":      Tier1,
		"caseStudies":      Tier2,
		"editorialContent": Tier3,
		"adminNotes":       Admin,
	})
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	return NewService(p)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{in: "free", want: Free, wantOK: true},
		{in: "tier1", want: Tier1, wantOK: true},
		{in: "TIER2", want: Tier2, wantOK: true},
		{in: " tier3 ", want: Tier3, wantOK: true},
		{in: "3", want: Tier3, wantOK: true},
		{in: "0", want: Free, wantOK: true},
		{in: "platinum", want: Free, wantOK: false},
		{in: "", want: Free, wantOK: false},
		{in: "admin", want: Free, wantOK: false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	for i := 1; i < len(VendorLevels); i++ {
		if !VendorLevels[i].AtLeast(VendorLevels[i-1]) || VendorLevels[i-1].AtLeast(VendorLevels[i]) {
			t.Fatalf("expected %v > %v", VendorLevels[i], VendorLevels[i-1])
		}
	}
	if Admin.IsVendorTier() {
		t.Fatal("admin must not be a vendor tier")
	}
	if Level(42).Normalize() != Free {
		t.Fatal("out-of-range level should normalize to free")
	}
}

func TestLevelJSON(t *testing.T) {
	b, err := json.Marshal(Tier2)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"tier2"` {
		t.Errorf("Marshal(Tier2) = %s", b)
	}

	var l Level
	if err := json.Unmarshal([]byte(`"bogus"`), &l); err != nil {
		t.Fatal(err)
	}
	if l != Free {
		t.Errorf("unknown tier decoded to %v, want free", l)
	}
	if err := json.Unmarshal([]byte(`3`), &l); err != nil {
		t.Fatal(err)
	}
	if l != Tier3 {
		t.Errorf("numeric tier decoded to %v, want tier3", l)
	}
}

func TestValidateFieldAccess(t *testing.T) {
	s := testService(t)

	tests := []struct {
		tier  Level
		field string
		want  bool
	}{
		{Free, "name", true},
		{Free, "website", false},
		{Tier1, "website", true},
		{Tier1, "caseStudies", false},
		{Tier3, "editorialContent", true},
		{Tier3, "adminNotes", false},
		{Tier3, "noSuchField", false},
		{Level(-7), "name", true},
		{Level(-7), "website", false},
	}

	for _, tt := range tests {
		if got := s.ValidateFieldAccess(tt.tier, tt.field); got != tt.want {
			t.Errorf("ValidateFieldAccess(%v, %q) = %v, want %v", tt.tier, tt.field, got, tt.want)
		}
	}
}

func TestValidateLocationLimit(t *testing.T) {
	s := testService(t)

	if c := s.ValidateLocationLimit(Free, 1); !c.Valid || c.MaxAllowed != 1 {
		t.Errorf("free/1 = %+v, want valid with max 1", c)
	}

	c := s.ValidateLocationLimit(Free, 2)
	if c.Valid {
		t.Fatal("free/2 should be invalid")
	}
	if c.MaxAllowed != 1 {
		t.Errorf("MaxAllowed = %d, want 1", c.MaxAllowed)
	}
	if !strings.Contains(c.Message, "Location") || !strings.Contains(c.Message, "1") {
		t.Errorf("message %q should name the cap and mention Location", c.Message)
	}

	if c := s.ValidateLocationLimit(Tier1, 3); !c.Valid {
		t.Error("tier1/3 should be valid")
	}
	if c := s.ValidateLocationLimit(Tier2, 11); c.Valid || c.MaxAllowed != 10 {
		t.Errorf("tier2/11 = %+v", c)
	}
	if c := s.ValidateLocationLimit(Tier3, 10000); !c.Valid || !c.Unlimited {
		t.Errorf("tier3 should be unlimited, got %+v", c)
	}
}

func TestCanAccessFeature(t *testing.T) {
	s := testService(t)

	tests := []struct {
		tier    Level
		feature string
		want    bool
	}{
		{Free, FeatureMultipleLocations, false},
		{Tier1, FeatureMultipleLocations, true},
		{Tier1, FeatureAdvancedAnalytics, false},
		{Tier2, FeatureAdvancedAnalytics, true},
		{Tier2, FeaturePromotionPack, false},
		{Tier3, FeaturePromotionPack, true},
		{Tier3, "teleportation", false},
	}

	for _, tt := range tests {
		if got := s.CanAccessFeature(tt.tier, tt.feature); got != tt.want {
			t.Errorf("CanAccessFeature(%v, %q) = %v, want %v", tt.tier, tt.feature, got, tt.want)
		}
	}
}

func TestAccessibleFields(t *testing.T) {
	s := testService(t)

	got := strings.Join(s.AccessibleFields(Free), ",")
	if got != "contactEmail,name" {
		t.Errorf("AccessibleFields(free) = %s", got)
	}

	prev := 0
	for _, l := range VendorLevels {
		n := len(s.AccessibleFields(l))
		if n < prev {
			t.Fatalf("AccessibleFields(%v) shrank from %d to %d", l, prev, n)
		}
		prev = n
	}
	if prev != 6 {
		t.Errorf("tier3 should see every non-admin field, got %d", prev)
	}
}

func TestValidateTierChange(t *testing.T) {
	s := testService(t)

	if r := s.ValidateTierChange(Free, Tier1, map[string]any{}); !r.Valid {
		t.Errorf("upgrade should be valid, got %+v", r)
	}

	r := s.ValidateTierChange(Tier1, Free, map[string]any{"website": "https://x.com"})
	if r.Valid {
		t.Fatal("downgrade with populated website should be invalid")
	}
	if len(r.Errors) != 1 || !strings.Contains(r.Errors[0], "website") {
		t.Errorf("errors = %v, want one naming website", r.Errors)
	}

	r = s.ValidateTierChange(Tier3, Free, map[string]any{
		"website":          "https://x.com",
		"editorialContent": []string{"Feature"},
		"caseStudies":      []string{},
		"adminNotes":       "internal",
		"foundedYear":      nil,
		"locations":        []map[string]any{{"city": "Monaco"}, {"city": "Antibes"}},
	})
	if r.Valid {
		t.Fatal("expected invalid downgrade")
	}
	if len(r.Errors) != 3 {
		t.Fatalf("errors = %v, want 3 (editorialContent, website, locations)", r.Errors)
	}
	if !strings.Contains(r.Errors[2], "Location") {
		t.Errorf("last error %q should mention Location", r.Errors[2])
	}

	if r := s.ValidateTierChange(Tier2, Tier1, map[string]any{"website": "https://x.com", "locations": []any{1, 2, 3}}); !r.Valid {
		t.Errorf("tier2->tier1 within limits should be valid, got %v", r.Errors)
	}
}

func TestStripInaccessible(t *testing.T) {
	s := testService(t)

	got := s.StripInaccessible(Free, map[string]any{
		"name":       "Acme",
		"website":    "https://acme.test",
		"adminNotes": "hidden",
		"locations":  []any{"x"},
	})
	if _, ok := got["website"]; ok {
		t.Error("website should be stripped for free")
	}
	if _, ok := got["adminNotes"]; ok {
		t.Error("admin fields should be stripped")
	}
	if got["name"] != "Acme" || got["locations"] == nil {
		t.Errorf("unexpected projection %v", got)
	}
}

func TestLoadPolicyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "location_limits:\n  free: 2\nfeatures:\n  advancedAnalytics: tier1\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadPolicyConfig(path)
	if err != nil {
		t.Fatalf("LoadPolicyConfig() error = %v", err)
	}
	if cfg.LocationLimits["free"] != 2 || cfg.LocationLimits["tier3"] != Unlimited {
		t.Errorf("limits = %v", cfg.LocationLimits)
	}

	p, err := NewPolicy(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := NewService(p)
	if !s.CanAccessFeature(Tier1, FeatureAdvancedAnalytics) {
		t.Error("override should unlock advancedAnalytics at tier1")
	}
	if !s.ValidateLocationLimit(Free, 2).Valid {
		t.Error("override should allow 2 locations on free")
	}
}

func TestNewPolicy_Invalid(t *testing.T) {
	cfg := DefaultPolicyConfig()
	cfg.Features["bogus"] = "gold"
	if _, err := NewPolicy(cfg, nil); err == nil {
		t.Error("expected error for unknown feature tier")
	}

	cfg = DefaultPolicyConfig()
	delete(cfg.LocationLimits, "tier2")
	if _, err := NewPolicy(cfg, nil); err == nil {
		t.Error("expected error for missing location limit")
	}
}

func TestLoadService(t *testing.T) {
	s, err := LoadService("", nil)
	if err != nil {
		t.Fatalf("LoadService(\"\") error = %v", err)
	}
	if got := s.Policy().LocationLimit(Tier3); got != Unlimited {
		t.Errorf("default tier3 limit = %d, want Unlimited", got)
	}

	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("location_limits:\n  tier1: 9\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err = LoadService(path, nil)
	if err != nil {
		t.Fatalf("LoadService(%s) error = %v", path, err)
	}
	if got := s.Policy().LocationLimit(Tier1); got != 9 {
		t.Errorf("tier1 limit = %d, want 9", got)
	}

	if _, err := LoadService(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("expected error for missing policy file")
	}
}
