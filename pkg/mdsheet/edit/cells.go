package edit

import (
	"fmt"
	"slices"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/parser"
)

// HeaderRow addresses the header row in cell operations.
const HeaderRow = -1

// grid is a mutable working copy of a table's cells.
type grid struct {
	headers []string
	rows    [][]string
}

func newGrid(table models.Table) *grid {
	return &grid{headers: slices.Clone(table.Headers), rows: models.CopyRows(table.Rows)}
}

// fit grows the grid so (row, col) exists. New header cells are named "Col N".
func (g *grid) fit(row, col int) {
	for len(g.headers) <= col {
		g.headers = append(g.headers, fmt.Sprintf("Col %d", len(g.headers)+1))
	}
	for len(g.rows) <= row {
		g.rows = append(g.rows, make([]string, len(g.headers)))
	}
	if row >= 0 {
		for len(g.rows[row]) <= col {
			g.rows[row] = append(g.rows[row], "")
		}
	}
}

func (g *grid) get(row, col int) string {
	if row == HeaderRow {
		if col < len(g.headers) {
			return g.headers[col]
		}
		return ""
	}
	if row < len(g.rows) && col < len(g.rows[row]) {
		return g.rows[row][col]
	}
	return ""
}

func (g *grid) set(row, col int, value string) {
	g.fit(row, col)
	if row == HeaderRow {
		g.headers[col] = value
		return
	}
	g.rows[row][col] = value
}

func (g *grid) apply(table models.Table) models.Table {
	table.Headers = g.headers
	table.Rows = g.rows
	return table
}

// UpdateCell writes one cell, growing the table when the cell lies outside it.
// Row HeaderRow addresses the header row. The value is encoded with schema so the
// rendered row parses back to the same cell.
func UpdateCell(wb models.Workbook, s, t, row, col int, value string, schema parser.Schema) (models.Workbook, error) {
	if row < HeaderRow {
		return wb, &IndexError{Kind: "row", Index: row}
	}
	if col < 0 {
		return wb, &IndexError{Kind: "column", Index: col}
	}
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		g := newGrid(table)
		g.set(row, col, schema.Cell(value))
		return g.apply(table), nil
	})
}

// PasteCells writes a block of values with its top-left corner at (row, col), growing the
// table as needed. With includeHeaders the first line of data replaces header cells.
// Values are encoded like UpdateCell.
func PasteCells(wb models.Workbook, s, t, row, col int, data [][]string, includeHeaders bool, schema parser.Schema) (models.Workbook, error) {
	if row < 0 {
		return wb, &IndexError{Kind: "row", Index: row}
	}
	if col < 0 {
		return wb, &IndexError{Kind: "column", Index: col}
	}
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		g := newGrid(table)
		body := data
		if includeHeaders && len(data) > 0 {
			for j, v := range data[0] {
				g.set(HeaderRow, col+j, schema.Cell(v))
			}
			body = data[1:]
		}
		for i, line := range body {
			for j, v := range line {
				g.set(row+i, col+j, schema.Cell(v))
			}
		}
		return g.apply(table), nil
	})
}

// MoveCells moves a rectangular block of body cells so its top-left corner lands on
// (row, col). Source cells left behind are cleared; the table grows to fit the destination.
// Overlapping source and destination are handled by reading the block first.
func MoveCells(wb models.Workbook, s, t int, src models.CellRange, row, col int) (models.Workbook, error) {
	if !src.Valid() || row < 0 || col < 0 {
		return wb, ErrInvalidTarget
	}
	if row == src.MinR && col == src.MinC {
		return updateTable(wb, s, t, func(table models.Table) (models.Table, error) { return table, nil })
	}
	return updateTable(wb, s, t, func(table models.Table) (models.Table, error) {
		g := newGrid(table)
		block := make([][]string, src.Height())
		for i := range block {
			block[i] = make([]string, src.Width())
			for j := range block[i] {
				block[i][j] = g.get(src.MinR+i, src.MinC+j)
			}
		}
		g.fit(row+src.Height()-1, col+src.Width()-1)
		for r := src.MinR; r <= src.MaxR && r < len(g.rows); r++ {
			for c := src.MinC; c <= src.MaxC && c < len(g.rows[r]); c++ {
				g.rows[r][c] = ""
			}
		}
		for i, line := range block {
			for j, v := range line {
				g.set(row+i, col+j, v)
			}
		}
		return g.apply(table), nil
	})
}
