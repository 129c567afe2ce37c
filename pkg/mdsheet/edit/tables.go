package edit

import (
	"fmt"
	"slices"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
)

// DefaultHeaders are the columns of a new sheet or table when none are given.
var DefaultHeaders = []string{"Column 1", "Column 2", "Column 3"}

// newTable builds a table with one empty body row.
func newTable(name string, headers []string) models.Table {
	if headers == nil {
		headers = DefaultHeaders
	}
	cols := make([]string, len(headers))
	for i, h := range headers {
		cols[i] = parser.EncodeCell(h, true)
	}
	return models.Table{
		Name:    name,
		Headers: cols,
		Rows:    [][]string{make([]string, len(cols))},
	}
}

// updateSheet replaces one sheet with the result of fn.
func updateSheet(wb models.Workbook, s int, fn func(models.Sheet) (models.Sheet, error)) (models.Workbook, error) {
	if err := checkIndex("sheet", s, len(wb.Sheets)); err != nil {
		return wb, err
	}
	sheet, err := fn(wb.Sheets[s])
	if err != nil {
		return wb, err
	}
	sheets := slices.Clone(wb.Sheets)
	sheets[s] = sheet
	return wb.WithSheets(sheets), nil
}

// updateTable replaces one table with the result of fn.
func updateTable(wb models.Workbook, s, t int, fn func(models.Table) (models.Table, error)) (models.Workbook, error) {
	return updateSheet(wb, s, func(sheet models.Sheet) (models.Sheet, error) {
		if err := checkIndex("table", t, len(sheet.Tables)); err != nil {
			return sheet, err
		}
		table, err := fn(sheet.Tables[t])
		if err != nil {
			return sheet, err
		}
		tables := slices.Clone(sheet.Tables)
		tables[t] = table
		return sheet.WithTables(tables), nil
	})
}

// AddTable appends a table to a sheet. An empty name becomes "New Table N".
func AddTable(wb models.Workbook, s int, name string, headers []string) (models.Workbook, error) {
	return updateSheet(wb, s, func(sheet models.Sheet) (models.Sheet, error) {
		if name == "" {
			name = fmt.Sprintf("New Table %d", len(sheet.Tables)+1)
		}
		return sheet.WithTables(append(slices.Clone(sheet.Tables), newTable(name, headers))), nil
	})
}

// DeleteTable removes a table from a sheet.
func DeleteTable(wb models.Workbook, s, t int) (models.Workbook, error) {
	return updateSheet(wb, s, func(sheet models.Sheet) (models.Sheet, error) {
		if err := checkIndex("table", t, len(sheet.Tables)); err != nil {
			return sheet, err
		}
		return sheet.WithTables(slices.Delete(slices.Clone(sheet.Tables), t, t+1)), nil
	})
}

// RenameTable sets a table's heading.
func RenameTable(wb models.Workbook, s, t int, name string) (models.Workbook, error) {
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		table.Name = name
		return table, nil
	})
}

// UpdateTableMetadata sets a table's heading and description.
func UpdateTableMetadata(wb models.Workbook, s, t int, name, description string) (models.Workbook, error) {
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		table.Name = name
		table.Description = description
		return table, nil
	})
}
