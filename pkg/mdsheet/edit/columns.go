package edit

import (
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/remap"
)

// remapColumns applies one column map to everything a table indexes by column: headers,
// every row, alignments and the column-keyed metadata.
func remapColumns(table models.Table, m remap.Map) models.Table {
	table.Headers = remap.ApplySlice(table.Headers, m, "")
	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		rows[i] = remap.ApplySlice(row, m, "")
	}
	table.Rows = rows
	table.Alignments = remap.ApplySlice(table.Alignments, m, models.AlignDefault)
	table.Metadata = remap.ApplyTable(table.Metadata, m)
	return table
}

// InsertColumn inserts a column named name before index at, clamped to [0, columns].
func InsertColumn(wb models.Workbook, s, t, at int, name string) (models.Workbook, error) {
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		n := table.ColumnCount()
		at = max(0, min(at, n))
		table = remapColumns(table, remap.Insert(n, at))
		if len(table.Headers) == 0 {
			// A header-less table grows its header row from nothing.
			table.Headers = make([]string, n+1)
		}
		table.Headers[at] = parser.EncodeCell(name, true)
		return table, nil
	})
}

// DeleteColumns removes the given columns. Out-of-range indices are ignored.
func DeleteColumns(wb models.Workbook, s, t int, cols []int) (models.Workbook, error) {
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		m := remap.Delete(table.ColumnCount(), cols)
		if m.IsIdentity() {
			return table, nil
		}
		return remapColumns(table, m), nil
	})
}

// MoveColumns lifts the selected columns out and reinserts them as one block before column
// target of the original table. Widths, filters, validation and formats travel with them.
func MoveColumns(wb models.Workbook, s, t int, cols []int, target int) (models.Workbook, error) {
	if len(cols) == 0 || target < 0 {
		return wb, ErrInvalidTarget
	}
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		n := table.ColumnCount()
		sel := remap.Normalize(cols, n)
		if len(sel) == 0 || droppedOnItself(sel, target) {
			return table, nil
		}
		return remapColumns(table, remap.Move(n, sel, target)), nil
	})
}

// ClearColumns empties every body cell of the given columns.
func ClearColumns(wb models.Workbook, s, t int, cols []int) (models.Workbook, error) {
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		rows := models.CopyRows(table.Rows)
		for _, row := range rows {
			for _, c := range cols {
				if c >= 0 && c < len(row) {
					row[c] = ""
				}
			}
		}
		table.Rows = rows
		return table, nil
	})
}
