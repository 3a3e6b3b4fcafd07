package fields

// transforms.go converts between stored values and spreadsheet cells.
//
// Stored values are the JSON-friendly shapes kept in a vendor's data map:
// string, float64 (numbers and years), bool, []string and dates as
// YYYY-MM-DD strings. Values read back from JSON arrive as []any and
// float64, so every export path accepts those too.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ArraySeparator joins array values in exported cells.
const ArraySeparator = "; "

var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "01/02/2006", "1/2/2006", "02.01.2006",
	"Jan 2, 2006", "2 Jan 2006", time.RFC3339,
}

func defaultExport(t DataType, v any) (string, error) {
	if v == nil {
		return "", nil
	}

	switch t {
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("expected boolean, got %T", v)
		}
		if b {
			return "Yes", nil
		}
		return "No", nil

	case TypeArray:
		items, err := ToStrings(v)
		if err != nil {
			return "", err
		}
		return strings.Join(items, ArraySeparator), nil

	case TypeNumber, TypeYear:
		f, ok := ToFloat(v)
		if !ok {
			return "", fmt.Errorf("expected number, got %T", v)
		}
		return FormatNumber(f), nil

	case TypeDate:
		switch d := v.(type) {
		case time.Time:
			return d.Format("2006-01-02"), nil
		case string:
			return d, nil
		}
		return "", fmt.Errorf("expected date, got %T", v)
	}

	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return fmt.Sprintf("%v", v), nil
}

func defaultImport(t DataType, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	switch t {
	case TypeBoolean:
		b, ok := ParseBool(raw)
		if !ok {
			return nil, fmt.Errorf("must be Yes/No, true/false or 1/0")
		}
		return b, nil

	case TypeArray:
		return SplitList(raw), nil

	case TypeNumber:
		f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid number format")
		}
		return f, nil

	case TypeYear:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f != math.Trunc(f) {
			return nil, fmt.Errorf("must be a four-digit year")
		}
		return f, nil

	case TypeDate:
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, raw); err == nil {
				return d.Format("2006-01-02"), nil
			}
		}
		// Excel serial dates come through as plain numbers.
		if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
			base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
			return base.AddDate(0, 0, int(serial)).Format("2006-01-02"), nil
		}
		return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD)")
	}

	return raw, nil
}

// ParseBool accepts yes/no, y/n, true/false and 1/0 in any case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true, true
	case "no", "n", "false", "0":
		return false, true
	}
	return false, false
}

// SplitList splits on semicolons and newlines, trimming and dropping blanks.
func SplitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ToStrings converts []string, []any or a single string to []string.
func ToStrings(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return x, nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case float64, int, int64, bool:
				out = append(out, fmt.Sprintf("%v", s))
			default:
				return nil, fmt.Errorf("unsupported array item %T", item)
			}
		}
		return out, nil
	case string:
		return SplitList(x), nil
	}
	return nil, fmt.Errorf("expected array, got %T", v)
}

// ToFloat converts the numeric shapes a stored value can take.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// FormatNumber prints integers without a decimal point.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
