package spreadsheet

import (
	"regexp"
	"strings"
	"time"

	"github.com/JonMunkholm/VendorHub/internal/tier"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// GenerateFilename names an export file:
//
//	<vendor>_vendor_data[_<tier>]_YYYY-MM-DD.xlsx
//
// Runs of non-alphanumeric characters in the vendor name collapse to "_".
// An empty name uses "vendor". A nil tier omits the tier segment.
func GenerateFilename(vendorName string, t *tier.Level, now time.Time) string {
	prefix := strings.Trim(nonAlnum.ReplaceAllString(vendorName, "_"), "_")
	if prefix == "" {
		prefix = "vendor"
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("_vendor_data")
	if t != nil {
		b.WriteString("_")
		b.WriteString(t.Normalize().String())
	}
	b.WriteString("_")
	b.WriteString(now.Format("2006-01-02"))
	b.WriteString(".xlsx")
	return b.String()
}

// TemplateFilename names a blank import template.
func TemplateFilename(t tier.Level, now time.Time) string {
	return "vendor_import_template_" + t.Normalize().String() + "_" + now.Format("2006-01-02") + ".xlsx"
}
