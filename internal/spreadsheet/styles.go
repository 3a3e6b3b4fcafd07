package spreadsheet

import (
	"fmt"

	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/xuri/excelize/v2"
)

// Brand colours.
const (
	colorHeaderFill  = "1F3A5F"
	colorHeaderFont  = "FFFFFF"
	colorExampleFont = "808080"
	colorStripeFill  = "F2F6FA"
	colorBannerFill  = "D9E7F5"
	colorWarning     = "9C5700"
)

// styles holds the style ids registered on one workbook.
type styles struct {
	header   int
	example  int
	stripe   int
	title    int
	subtitle int
	banner   int
	heading  int
	body     int
	warning  int
}

func newStyles(f *excelize.File) (*styles, error) {
	var s styles
	thin := []excelize.Border{
		{Type: "left", Color: "BFBFBF", Style: 1},
		{Type: "right", Color: "BFBFBF", Style: 1},
		{Type: "top", Color: "BFBFBF", Style: 1},
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}

	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: colorHeaderFont, Size: 11},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeaderFill}},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    thin,
		}},
		{&s.example, &excelize.Style{
			Font: &excelize.Font{Italic: true, Color: colorExampleFont},
		}},
		{&s.stripe, &excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorStripeFill}},
		}},
		{&s.title, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 16, Color: colorHeaderFill},
		}},
		{&s.subtitle, &excelize.Style{
			Font: &excelize.Font{Italic: true, Color: colorExampleFont},
		}},
		{&s.banner, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 12, Color: colorHeaderFill},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorBannerFill}},
		}},
		{&s.heading, &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 12},
		}},
		{&s.body, &excelize.Style{
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		}},
		{&s.warning, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: colorWarning},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, fmt.Errorf("create style: %w", err)
		}
		*d.dst = id
	}
	return &s, nil
}

// columnWidth picks a column width from the field's data type.
func columnWidth(f fields.FieldMapping) float64 {
	switch f.Type {
	case fields.TypeBoolean, fields.TypeYear:
		return 14
	case fields.TypeNumber, fields.TypeDate, fields.TypePhone:
		return 18
	case fields.TypeEmail:
		return 30
	case fields.TypeURL, fields.TypeArray:
		return 40
	}
	if f.Constraints.MaxLength > 1000 {
		return 50
	}
	if len(f.Constraints.AllowedValues) > 0 {
		return 26
	}
	return 24
}
