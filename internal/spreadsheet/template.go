// Package spreadsheet builds and reads the .xlsx workbooks vendors use to
// exchange profile data: tier-specific import templates, vendor exports and
// the parser that turns an uploaded workbook back into rows.
package spreadsheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/JonMunkholm/VendorHub/internal/tier"
	"github.com/xuri/excelize/v2"
)

const (
	// SheetData is the worksheet holding vendor rows.
	SheetData = "Vendor Data"

	// SheetInstructions is the read-only help sheet in a template.
	SheetInstructions = "Instructions"

	// RequiredMarker is appended to required column headers.
	RequiredMarker = " *"

	// ValidationLastRow is the last row covered by column data validation.
	ValidationLastRow = 1000

	commentAuthor = "VendorHub"
	defaultSheet  = "Sheet1"
)

// Generator builds workbooks from a field registry.
type Generator struct {
	registry *fields.Registry
	now      func() time.Time
}

// NewGenerator creates a Generator. A nil clock uses time.Now.
func NewGenerator(registry *fields.Registry, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{registry: registry, now: now}
}

// Template builds an import template for a vendor tier: a "Vendor Data"
// sheet with annotated headers, one example row and per-column validation,
// plus a protected "Instructions" sheet.
func (g *Generator) Template(t tier.Level) ([]byte, error) {
	t = t.Normalize()
	cols := g.registry.ImportableFieldsForTier(t)
	if len(cols) == 0 {
		return nil, fmt.Errorf("no importable fields for tier %s", t)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SheetData); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := g.writeHeader(f, st, cols, 1, true); err != nil {
		return nil, err
	}
	if err := g.writeExampleRow(f, st, cols); err != nil {
		return nil, err
	}
	for i, col := range cols {
		if err := g.addValidation(f, i+1, col); err != nil {
			return nil, err
		}
	}
	if err := freezeHeader(f, 1); err != nil {
		return nil, err
	}

	if err := g.writeInstructions(f, st, t, cols); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// writeHeader writes column labels on row and sizes each column. With
// annotate set, required columns get the marker and every header gets a
// comment describing the field.
func (g *Generator) writeHeader(f *excelize.File, st *styles, cols []fields.FieldMapping, row int, annotate bool) error {
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}

		label := col.Column
		if annotate && col.Required {
			label += RequiredMarker
		}
		if err := f.SetCellValue(SheetData, cell, label); err != nil {
			return fmt.Errorf("set header %s: %w", col.Column, err)
		}

		if annotate {
			if err := f.AddComment(SheetData, excelize.Comment{
				Author: commentAuthor,
				Cell:   cell,
				Paragraph: []excelize.RichTextRun{
					{Text: col.Column + "\n", Font: &excelize.Font{Bold: true}},
					{Text: g.describe(col)},
				},
			}); err != nil {
				return fmt.Errorf("add comment %s: %w", col.Column, err)
			}
		}

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetData, name, name, columnWidth(col)); err != nil {
			return fmt.Errorf("set width %s: %w", col.Column, err)
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(cols), row)
	first, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetCellStyle(SheetData, first, last, st.header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return f.SetRowHeight(SheetData, row, 30)
}

// describe summarises a field for its header comment.
func (g *Generator) describe(col fields.FieldMapping) string {
	var lines []string
	if col.Description != "" {
		lines = append(lines, col.Description)
	}
	if col.Required {
		lines = append(lines, "Required: Yes")
	} else {
		lines = append(lines, "Required: No")
	}
	if col.Constraints.MaxLength > 0 {
		lines = append(lines, fmt.Sprintf("Max length: %d characters", col.Constraints.MaxLength))
	}
	if lo, hi, ok := g.bounds(col); ok {
		lines = append(lines, fmt.Sprintf("Range: %s to %s", fields.FormatNumber(lo), fields.FormatNumber(hi)))
	} else if col.Constraints.Min != nil {
		lines = append(lines, fmt.Sprintf("Minimum: %s", fields.FormatNumber(*col.Constraints.Min)))
	}
	if len(col.Constraints.AllowedValues) > 0 {
		lines = append(lines, "Allowed values: "+strings.Join(col.Constraints.AllowedValues, ", "))
	}
	switch col.Type {
	case fields.TypeArray:
		lines = append(lines, "Separate multiple values with semicolons")
	case fields.TypeBoolean:
		lines = append(lines, "Enter Yes or No")
	case fields.TypeDate:
		lines = append(lines, "Format: YYYY-MM-DD")
	}
	if col.Example != "" {
		lines = append(lines, "Example: "+col.Example)
	}
	return strings.Join(lines, "\n")
}

// bounds returns the closed numeric range of a field, resolving the
// current-year cap against the generator clock.
func (g *Generator) bounds(col fields.FieldMapping) (float64, float64, bool) {
	c := col.Constraints
	if c.Min == nil {
		return 0, 0, false
	}
	switch {
	case c.MaxCurrentYear:
		return *c.Min, float64(g.now().Year()), true
	case c.Max != nil:
		return *c.Min, *c.Max, true
	}
	return 0, 0, false
}

func (g *Generator) writeExampleRow(f *excelize.File, st *styles, cols []fields.FieldMapping) error {
	for i, col := range cols {
		if col.Example == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetData, cell, exampleValue(col)); err != nil {
			return fmt.Errorf("set example %s: %w", col.Column, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 2)
	return f.SetCellStyle(SheetData, "A2", last, st.example)
}

// exampleValue writes numeric examples as numbers so they satisfy the
// column's own validation.
func exampleValue(col fields.FieldMapping) any {
	if col.Type == fields.TypeNumber || col.Type == fields.TypeYear {
		if n, ok := fields.ToFloat(col.Example); ok {
			return n
		}
	}
	return col.Example
}

func (g *Generator) addValidation(f *excelize.File, colNum int, col fields.FieldMapping) error {
	name, err := excelize.ColumnNumberToName(colNum)
	if err != nil {
		return err
	}

	dv := excelize.NewDataValidation(true)
	dv.Sqref = fmt.Sprintf("%s2:%s%d", name, name, ValidationLastRow)

	switch {
	case len(col.Constraints.AllowedValues) > 0:
		if err := dv.SetDropList(col.Constraints.AllowedValues); err != nil {
			// Lists too long for an inline formula stay unvalidated.
			return nil
		}
		dv.SetError(excelize.DataValidationErrorStyleStop, col.Column,
			"Choose a value from the list")

	case col.Type == fields.TypeBoolean:
		if err := dv.SetDropList([]string{"Yes", "No"}); err != nil {
			return err
		}
		dv.SetError(excelize.DataValidationErrorStyleStop, col.Column, "Enter Yes or No")

	case col.Type == fields.TypeYear || col.Type == fields.TypeNumber:
		lo, hi, ok := g.bounds(col)
		if !ok {
			return nil
		}
		kind := excelize.DataValidationTypeDecimal
		if col.Type == fields.TypeYear {
			kind = excelize.DataValidationTypeWhole
		}
		if err := dv.SetRange(lo, hi, kind, excelize.DataValidationOperatorBetween); err != nil {
			return fmt.Errorf("range validation %s: %w", col.Column, err)
		}
		dv.SetError(excelize.DataValidationErrorStyleStop, col.Column,
			fmt.Sprintf("Enter a value between %s and %s", fields.FormatNumber(lo), fields.FormatNumber(hi)))

	case col.Constraints.MaxLength > 0:
		if err := dv.SetRange(0, col.Constraints.MaxLength,
			excelize.DataValidationTypeTextLength, excelize.DataValidationOperatorBetween); err != nil {
			return fmt.Errorf("length validation %s: %w", col.Column, err)
		}
		dv.SetError(excelize.DataValidationErrorStyleStop, col.Column,
			fmt.Sprintf("Maximum %d characters", col.Constraints.MaxLength))

	default:
		return nil
	}

	if err := f.AddDataValidation(SheetData, dv); err != nil {
		return fmt.Errorf("add validation %s: %w", col.Column, err)
	}
	return nil
}

func freezeHeader(f *excelize.File, headerRow int) error {
	return f.SetPanes(SheetData, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: fmt.Sprintf("A%d", headerRow+1),
		ActivePane:  "bottomLeft",
	})
}

func (g *Generator) writeInstructions(f *excelize.File, st *styles, t tier.Level, cols []fields.FieldMapping) error {
	if _, err := f.NewSheet(SheetInstructions); err != nil {
		return fmt.Errorf("create instructions: %w", err)
	}
	if err := f.SetColWidth(SheetInstructions, "A", "A", 110); err != nil {
		return err
	}

	w := &sheetWriter{f: f, sheet: SheetInstructions, row: 1}

	w.line("VendorHub Vendor Data Template", st.title)
	w.line(fmt.Sprintf("Tier: %s (%d fields available)", t.Label(), len(cols)), st.banner)
	w.line("Generated "+g.now().UTC().Format("2006-01-02"), st.subtitle)
	w.blank()

	w.line("How to use this template", st.heading)
	steps := []string{
		"Fill in your company information on the \"Vendor Data\" sheet, starting at row 2.",
		"Row 2 holds example values. Replace them with your own data or delete the row.",
		"Hover over a column header to see what the field expects.",
		"Columns marked with * are required.",
		"Save the file as .xlsx and upload it from your vendor dashboard.",
		"Review the preview before confirming the import.",
	}
	for i, step := range steps {
		w.line(fmt.Sprintf("%d. %s", i+1, step), st.body)
	}
	w.blank()

	w.line("Required fields", st.heading)
	for _, col := range cols {
		if col.Required {
			w.line(fmt.Sprintf("• %s: %s", col.Column, col.Description), st.body)
		}
	}
	w.blank()

	w.line("Optional fields", st.heading)
	for _, col := range cols {
		if !col.Required {
			w.line(fmt.Sprintf("• %s: %s", col.Column, col.Description), st.body)
		}
	}
	w.blank()

	w.line("Important", st.heading)
	cautions := []string{
		"Do not rename, reorder or delete the column headers.",
		"Blank cells are ignored and never clear existing data.",
		"Values for fields above your tier are rejected.",
		"The data sheet validates values as you type; invalid cells are refused.",
	}
	for _, c := range cautions {
		w.line("• "+c, st.warning)
	}
	w.blank()

	w.line("Tips", st.heading)
	tips := []string{
		"Separate multiple values (certifications, awards, team members) with semicolons.",
		"Enter dates as YYYY-MM-DD.",
		"Use full URLs including https://.",
	}
	if locked := g.registry.LockedFieldsForTier(t); len(locked) > 0 {
		tips = append(tips, fmt.Sprintf("Upgrade your tier to unlock %d more fields.", len(locked)))
	}
	for _, tip := range tips {
		w.line("• "+tip, st.body)
	}

	if w.err != nil {
		return fmt.Errorf("write instructions: %w", w.err)
	}

	return f.ProtectSheet(SheetInstructions, &excelize.SheetProtectionOptions{
		SelectLockedCells:   true,
		SelectUnlockedCells: true,
	})
}

// sheetWriter appends single-cell lines down column A, keeping the first
// error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *sheetWriter) line(text string, style int) {
	if w.err != nil {
		return
	}
	cell := fmt.Sprintf("A%d", w.row)
	if err := w.f.SetCellValue(w.sheet, cell, text); err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellStyle(w.sheet, cell, cell, style); err != nil {
		w.err = err
		return
	}
	w.row++
}

func (w *sheetWriter) blank() {
	w.row++
}
