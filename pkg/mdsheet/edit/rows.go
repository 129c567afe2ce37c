package edit

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/remap"
)

// InsertRow inserts an empty row before index at, clamped to [0, len(rows)].
func InsertRow(wb models.Workbook, s, t, at int) (models.Workbook, error) {
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		at = max(0, min(at, len(table.Rows)))
		table.Rows = slices.Insert(slices.Clone(table.Rows), at, make([]string, len(table.Headers)))
		return table, nil
	})
}

// DeleteRows removes the given rows. Out-of-range indices are ignored.
func DeleteRows(wb models.Workbook, s, t int, rows []int) (models.Workbook, error) {
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		m := remap.Delete(len(table.Rows), rows)
		table.Rows = remap.ApplySlice(table.Rows, m, nil)
		return table, nil
	})
}

// MoveRows lifts the selected rows out and reinserts them as one block before row target of
// the original table. Dropping a contiguous selection onto itself or its end changes nothing.
func MoveRows(wb models.Workbook, s, t int, rows []int, target int) (models.Workbook, error) {
	if len(rows) == 0 || target < 0 {
		return wb, ErrInvalidTarget
	}
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		sel := remap.Normalize(rows, len(table.Rows))
		if len(sel) == 0 || droppedOnItself(sel, target) {
			return table, nil
		}
		table.Rows = remap.ApplySlice(table.Rows, remap.Move(len(table.Rows), sel, target), nil)
		return table, nil
	})
}

func droppedOnItself(sel []int, target int) bool {
	return remap.Contiguous(sel) && target >= sel[0] && target <= sel[len(sel)-1]+1
}

// SortRows stably sorts the body rows by one column.
//
// The column is numeric when its visual.columns entry says so, or when every non-empty value
// parses as a number once thousands separators are removed. Numeric values that fail to parse
// sort below every number. Text compares case-insensitively. Rows with equal keys keep their
// order in both directions.
func SortRows(wb models.Workbook, s, t, col int, ascending bool) (models.Workbook, error) {
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		if err := checkIndex("column", col, max(table.ColumnCount(), table.Width())); err != nil {
			return table, err
		}
		rows := slices.Clone(table.Rows)
		dir := 1
		if !ascending {
			dir = -1
		}
		if numericColumn(table, col) {
			key := func(r []string) float64 {
				if col >= len(r) {
					return math.Inf(-1)
				}
				v, ok := parser.ParseNumber(r[col])
				if !ok {
					return math.Inf(-1)
				}
				return v
			}
			slices.SortStableFunc(rows, func(a, b []string) int { return dir * cmp.Compare(key(a), key(b)) })
		} else {
			key := func(r []string) string {
				if col >= len(r) {
					return ""
				}
				return strings.ToLower(r[col])
			}
			slices.SortStableFunc(rows, func(a, b []string) int { return dir * strings.Compare(key(a), key(b)) })
		}
		table.Rows = rows
		return table, nil
	})
}

func numericColumn(table models.Table, col int) bool {
	if spec, ok := table.Metadata.Visual.Column(col); ok && spec.Type != "" {
		return spec.Type == "number"
	}
	seen := false
	for _, row := range table.Rows {
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			continue
		}
		if _, ok := parser.ParseNumber(row[col]); !ok {
			return false
		}
		seen = true
	}
	return seen
}
