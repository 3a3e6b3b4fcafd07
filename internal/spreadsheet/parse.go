package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/VendorHub/internal/fields"
	"github.com/xuri/excelize/v2"
)

// MaxHeaderSearchRows is how many leading rows are searched for the header.
const MaxHeaderSearchRows = 10

// MaxDataRows caps the data rows accepted from one workbook.
const MaxDataRows = 5000

var (
	ErrInvalidWorkbook = errors.New("invalid spreadsheet: file is not a readable .xlsx workbook")
	ErrHeaderNotFound  = errors.New("header row not found: no known column labels in the first 10 rows")
	ErrNoDataRows      = errors.New("no data rows after header")
	ErrTooManyRows     = fmt.Errorf("too many rows: at most %d data rows per import", MaxDataRows)
)

// Row is one non-blank data row keyed by field name. Number is the
// 1-based spreadsheet row.
type Row struct {
	Number int
	Cells  map[string]string
}

// Sheet is a parsed workbook.
type Sheet struct {
	Name      string
	HeaderRow int                   // 1-based
	Columns   []fields.FieldMapping // recognised columns, in sheet order
	Unknown   []string              // header labels that match no field
	Rows      []Row
}

// Parse reads the "Vendor Data" sheet (or the first sheet) of an .xlsx
// workbook and maps its columns to registry fields.
func Parse(r io.Reader, registry *fields.Registry) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrInvalidWorkbook
	}
	name := sheets[0]
	for _, s := range sheets {
		if s == SheetData {
			name = s
			break
		}
	}

	records, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	headerIdx := findHeader(records, registry)
	if headerIdx < 0 {
		return nil, ErrHeaderNotFound
	}

	sheet := &Sheet{Name: name, HeaderRow: headerIdx + 1}

	// position -> field name
	positions := make(map[int]string)
	seen := make(map[string]bool)
	for i, raw := range records[headerIdx] {
		label := cleanHeader(raw)
		if label == "" {
			continue
		}
		col, ok := registry.FieldByColumn(label)
		if !ok || seen[col.Name] {
			sheet.Unknown = append(sheet.Unknown, label)
			continue
		}
		seen[col.Name] = true
		positions[i] = col.Name
		sheet.Columns = append(sheet.Columns, col)
	}

	for i := headerIdx + 1; i < len(records); i++ {
		record := records[i]
		if isEmptyRow(record) {
			continue
		}
		if len(sheet.Rows) == MaxDataRows {
			return nil, ErrTooManyRows
		}

		cells := make(map[string]string, len(positions))
		for pos, field := range positions {
			if pos < len(record) {
				cells[field] = strings.TrimSpace(record[pos])
			} else {
				cells[field] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, Row{Number: i + 1, Cells: cells})
	}

	if len(sheet.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return sheet, nil
}

// findHeader returns the index of the first row in which known column labels
// make up at least half of the non-blank cells, or -1.
func findHeader(records [][]string, registry *fields.Registry) int {
	limit := min(len(records), MaxHeaderSearchRows)
	for i := 0; i < limit; i++ {
		known, filled := 0, 0
		for _, cell := range records[i] {
			label := cleanHeader(cell)
			if label == "" {
				continue
			}
			filled++
			if _, ok := registry.FieldByColumn(label); ok {
				known++
			}
		}
		if known > 0 && known*2 >= filled {
			return i
		}
	}
	return -1
}

// cleanHeader trims a header label and strips the required marker.
func cleanHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, strings.TrimSpace(RequiredMarker))
	return strings.TrimSpace(s)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
