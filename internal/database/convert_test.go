package database

import (
	"testing"
	"time"
)

func TestToPgText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string
	}{
		{name: "simple text", input: "hello", wantValid: true, wantValue: "hello"},
		{name: "trims whitespace", input: "  padded  ", wantValid: true, wantValue: "padded"},
		{name: "empty string", input: "", wantValid: false},
		{name: "only whitespace", input: " \t\n ", wantValid: false},
		{name: "unicode", input: "Ålesund Marine", wantValid: true, wantValue: "Ålesund Marine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgText(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgText(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && got.String != tt.wantValue {
				t.Errorf("ToPgText(%q).String = %q, want %q", tt.input, got.String, tt.wantValue)
			}
			if back := PgTextToString(got); back != tt.wantValue {
				t.Errorf("PgTextToString() = %q, want %q", back, tt.wantValue)
			}
		})
	}
}

func TestToPgInt4(t *testing.T) {
	if got := ToPgInt4(0); got.Valid {
		t.Errorf("ToPgInt4(0) should be invalid")
	}
	if got := ToPgInt4(42); !got.Valid || got.Int32 != 42 {
		t.Errorf("ToPgInt4(42) = %+v", got)
	}
}

func TestToPgUUID(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
	}{
		{"valid lowercase", "0b6f1c3e-8d2a-4f7e-9c41-2f5d8a7b6c10", true},
		{"valid uppercase", "0B6F1C3E-8D2A-4F7E-9C41-2F5D8A7B6C10", true},
		{"empty", "", false},
		{"not a uuid", "vendor-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToPgUUID(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToPgUUID(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if tt.wantValid && PgUUIDToString(got) != "0b6f1c3e-8d2a-4f7e-9c41-2f5d8a7b6c10" {
				t.Errorf("round trip = %q", PgUUIDToString(got))
			}
			if !tt.wantValid && PgUUIDToString(got) != "" {
				t.Errorf("invalid uuid should render empty")
			}
		})
	}
}

func TestToPgTimestamptz(t *testing.T) {
	if got := ToPgTimestamptz(time.Time{}); got.Valid {
		t.Error("zero time should be NULL")
	}
	if PgTimestamptzToPtr(ToPgTimestamptz(time.Time{})) != nil {
		t.Error("NULL should convert to nil")
	}

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	ptr := PgTimestamptzToPtr(ToPgTimestamptz(now))
	if ptr == nil || !ptr.Equal(now) {
		t.Errorf("round trip = %v, want %v", ptr, now)
	}
}

func TestToInetAddr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"203.0.113.7", "203.0.113.7"},
		{"203.0.113.7:51234", "203.0.113.7"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"2001:db8::1", "2001:db8::1"},
		{"", ""},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToInetAddr(tt.input)
			if tt.want == "" {
				if got != nil {
					t.Errorf("ToInetAddr(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("ToInetAddr(%q) = %v, want %s", tt.input, got, tt.want)
			}
		})
	}
}
