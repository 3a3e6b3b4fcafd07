package spreadsheet

import (
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/tier"
	"github.com/JonMunkholm/VendorHub/internal/vendor"
	"github.com/xuri/excelize/v2"
)

// MetadataRows is how far the metadata block pushes the header down.
const MetadataRows = 3

// ExportOptions controls vendor exports.
type ExportOptions struct {
	IncludeMetadata bool
	Title           string // Defaults to "Vendor Data Export"
}

// Export writes the exportable fields of vs for tier t, one row per vendor.
// Values that fail their export transform are left blank.
func (g *Generator) Export(vs []vendor.Vendor, t tier.Level, opts ExportOptions) ([]byte, error) {
	t = t.Normalize()
	cols := g.registry.ExportableFieldsForTier(t)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SheetData); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	headerRow := 1
	if opts.IncludeMetadata {
		if err := g.writeMetadata(f, st, t, len(vs), opts.Title); err != nil {
			return nil, err
		}
		headerRow += MetadataRows
	}

	if err := g.writeHeader(f, st, cols, headerRow, false); err != nil {
		return nil, err
	}

	for i, v := range vs {
		row := headerRow + 1 + i
		if err := writeVendorRow(f, cols, row, v); err != nil {
			return nil, err
		}
		if i%2 == 1 && len(cols) > 0 {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(cols), row)
			if err := f.SetCellStyle(SheetData, first, last, st.stripe); err != nil {
				return nil, fmt.Errorf("style row %d: %w", row, err)
			}
		}
	}

	if err := freezeHeader(f, headerRow); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeMetadata(f *excelize.File, st *styles, t tier.Level, count int, title string) error {
	if title == "" {
		title = "Vendor Data Export"
	}
	w := &sheetWriter{f: f, sheet: SheetData, row: 1}
	w.line(title, st.title)
	w.line(fmt.Sprintf("Exported %s | %s tier | %d vendor(s)",
		g.now().UTC().Format("2006-01-02 15:04:05 UTC"), t.Label(), count), st.subtitle)
	return w.err
}

func writeVendorRow(f *excelize.File, cols []fields.FieldMapping, row int, v vendor.Vendor) error {
	for i, col := range cols {
		value, ok := cellValue(col, v.Value(col.Name))
		if !ok {
			slog.Debug("export transform skipped",
				"vendor_id", v.ID,
				"field", col.Name,
			)
			continue
		}
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetData, cell, value); err != nil {
			return fmt.Errorf("set %s row %d: %w", col.Column, row, err)
		}
	}
	return nil
}

// cellValue converts a stored value to what goes in the cell: numbers stay
// numeric, everything else goes through the field's export transform.
// ok is false when the transform failed.
func cellValue(col fields.FieldMapping, v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	if col.Export == nil && (col.Type == fields.TypeNumber || col.Type == fields.TypeYear) {
		if n, ok := fields.ToFloat(v); ok {
			return n, true
		}
	}
	s, err := col.ExportValue(v)
	if err != nil {
		return nil, false
	}
	if s == "" {
		return nil, true
	}
	return s, true
}
