// Package xlsx converts between the workbook model and Excel files.
package xlsx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
)

// ErrNoSheets is returned when exporting a workbook without sheets.
var ErrNoSheets = errors.New("workbook has no sheets")

const maxSheetName = 31

// Export writes one worksheet per sheet. Tables are stacked top to bottom with a blank row
// between them; each starts with its header row. Column widths come from the first table
// that sets one. The first table with column filters gets the sheet's auto filter.
func Export(wb models.Workbook) (*excelize.File, error) {
	if len(wb.Sheets) == 0 {
		return nil, ErrNoSheets
	}
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	used := map[string]bool{}

	for i, sheet := range wb.Sheets {
		name := sheetName(sheet.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				f.Close()
				return nil, fmt.Errorf("sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}
	return f, nil
}

// ExportFile exports wb and saves it to path.
func ExportFile(wb models.Workbook, path string) error {
	f, err := Export(wb)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, name string, sheet models.Sheet) error {
	row := 1
	widths := map[int]float64{}
	filtered := false
	for _, t := range sheet.Tables {
		if len(t.Headers) == 0 && len(t.Rows) == 0 {
			continue
		}
		top := row
		if err := writeRow(f, name, row, t.Headers, false); err != nil {
			return err
		}
		row++
		for _, cells := range t.Rows {
			if err := writeRow(f, name, row, cells, true); err != nil {
				return err
			}
			row++
		}
		if v := t.Metadata.Visual; !filtered && v != nil && len(v.Filters) > 0 && t.Width() > 0 {
			ref, err := parser.FormatRange(models.CellRange{MinR: top - 1, MaxR: row - 2, MinC: 0, MaxC: t.Width() - 1})
			if err != nil {
				return err
			}
			if err := f.AutoFilter(name, ref, nil); err != nil {
				return err
			}
			filtered = true
		}
		row++

		for col := range t.Width() {
			if _, ok := widths[col]; ok {
				continue
			}
			if px, ok := columnPixels(t, col); ok {
				widths[col] = px
			}
		}
	}

	for col, px := range widths {
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, colName, colName, PixelsToWidth(px)); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, name string, row int, cells []string, typed bool) error {
	if len(cells) == 0 {
		return nil
	}
	values := make([]any, len(cells))
	for i, cell := range cells {
		text := parser.DecodeCell(cell)
		if typed && text != "" {
			values[i] = parser.ParseValue(text)
		} else {
			values[i] = text
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(name, cell, &values)
}

// columnPixels returns a column's width in pixels, preferring visual.column_widths over
// visual.columns[].width and the legacy columnWidths map.
func columnPixels(t models.Table, col int) (float64, bool) {
	if v := t.Metadata.Visual; v != nil {
		if px, ok := number(v.ColumnWidths, col); ok {
			return px, true
		}
		if spec, ok := v.Column(col); ok && spec.Width != nil {
			return *spec.Width, true
		}
	}
	return number(t.Metadata.ColumnWidths, col)
}

func number(c models.ColumnMap, col int) (float64, bool) {
	raw, ok := c.Get(col)
	if !ok {
		return 0, false
	}
	var px float64
	if err := json.Unmarshal(raw, &px); err != nil || px <= 0 {
		return 0, false
	}
	return px, true
}

// sheetName makes a name Excel accepts: no reserved characters, at most 31 characters,
// unique within the file.
func sheetName(name string, i int, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Sheet" + strconv.Itoa(i+1)
	}
	name = truncate(name, maxSheetName)

	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
