package xlsx

import (
	"fmt"
	"math"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
)

// defaultWidth is the width excelize reports for a column without an explicit width.
const defaultWidth = 9.140625

// Options controls Import.
type Options struct {
	// Sheets limits the import to the named worksheets. Empty imports all of them.
	Sheets []string
}

// Import reads an Excel file. Each worksheet becomes a sheet holding one table whose first
// non-empty row is the header row. Explicit column widths are kept as pixel widths.
func Import(path string, opts Options) (models.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return models.Workbook{}, err
	}
	defer f.Close()
	return ImportFile(f, opts)
}

// ImportFile converts an open Excel file.
func ImportFile(f *excelize.File, opts Options) (models.Workbook, error) {
	var wb models.Workbook
	for _, name := range f.GetSheetList() {
		if len(opts.Sheets) > 0 && !slices.Contains(opts.Sheets, name) {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return models.Workbook{}, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheet := models.Sheet{Name: name}
		if t, ok := readTable(f, name, rows); ok {
			sheet.Tables = []models.Table{t}
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}

func readTable(f *excelize.File, name string, rows [][]string) (models.Table, bool) {
	for len(rows) > 0 && isEmpty(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return models.Table{}, false
	}

	t := models.Table{Headers: escape(rows[0])}
	for _, row := range rows[1:] {
		t.Rows = append(t.Rows, escape(row))
	}

	widths := models.ColumnMap{}
	for col := range t.Width() {
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			continue
		}
		w, err := f.GetColWidth(name, colName)
		if err != nil || math.Abs(w-defaultWidth) < 1e-6 {
			continue
		}
		if next, err := widths.With(col, WidthToPixels(w)); err == nil {
			widths = next
		}
	}
	if len(widths) > 0 {
		t.Metadata.Visual = &models.VisualMetadata{ColumnWidths: widths}
	}
	return t, true
}

// escape makes cell text safe for a GFM row.
func escape(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = parser.EncodeCell(cell, true)
	}
	return out
}

func isEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
