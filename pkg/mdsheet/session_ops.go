package mdsheet

import (
	"encoding/json"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/edit"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
)

// AddSheet inserts a sheet.
func (s *Session) AddSheet(p edit.AddSheetParams) (Update, error) {
	structure := s.structure()
	return s.update("addSheet", func(wb models.Workbook) (models.Workbook, error) {
		return edit.AddSheet(wb, p, structure)
	})
}

// RenameSheet renames a sheet.
func (s *Session) RenameSheet(sheet int, name string) (Update, error) {
	return s.update("renameSheet", func(wb models.Workbook) (models.Workbook, error) {
		return edit.RenameSheet(wb, sheet, name)
	})
}

// DeleteSheet removes a sheet.
func (s *Session) DeleteSheet(sheet int) (Update, error) {
	return s.update("deleteSheet", func(wb models.Workbook) (models.Workbook, error) {
		return edit.DeleteSheet(wb, sheet)
	})
}

// MoveSheet moves a sheet to a new physical position, optionally placing its tab.
func (s *Session) MoveSheet(from, to int, tabTarget *int) (Update, error) {
	structure := s.structure()
	return s.update("moveSheet", func(wb models.Workbook) (models.Workbook, error) {
		return edit.MoveSheet(wb, from, to, tabTarget, structure)
	})
}

// UpdateSheetMetadata replaces a sheet's metadata.
func (s *Session) UpdateSheetMetadata(sheet int, meta map[string]any) (Update, error) {
	return s.update("updateSheetMetadata", func(wb models.Workbook) (models.Workbook, error) {
		return edit.UpdateSheetMetadata(wb, sheet, meta)
	})
}

// AddTable appends a table to a sheet.
func (s *Session) AddTable(sheet int, name string, headers []string) (Update, error) {
	return s.update("addTable", func(wb models.Workbook) (models.Workbook, error) {
		return edit.AddTable(wb, sheet, name, headers)
	})
}

// DeleteTable removes a table.
func (s *Session) DeleteTable(sheet, table int) (Update, error) {
	return s.update("deleteTable", func(wb models.Workbook) (models.Workbook, error) {
		return edit.DeleteTable(wb, sheet, table)
	})
}

// RenameTable renames a table.
func (s *Session) RenameTable(sheet, table int, name string) (Update, error) {
	return s.update("renameTable", func(wb models.Workbook) (models.Workbook, error) {
		return edit.RenameTable(wb, sheet, table, name)
	})
}

// UpdateTableMetadata sets a table's name and description.
func (s *Session) UpdateTableMetadata(sheet, table int, name, description string) (Update, error) {
	return s.update("updateTableMetadata", func(wb models.Workbook) (models.Workbook, error) {
		return edit.UpdateTableMetadata(wb, sheet, table, name, description)
	})
}

// UpdateVisualMetadata merges keys into a table's visual metadata.
func (s *Session) UpdateVisualMetadata(sheet, table int, visual json.RawMessage) (Update, error) {
	return s.update("updateVisualMetadata", func(wb models.Workbook) (models.Workbook, error) {
		return edit.UpdateVisualMetadata(wb, sheet, table, visual)
	})
}

// UpdateCell writes one cell.
func (s *Session) UpdateCell(sheet, table, row, col int, value string) (Update, error) {
	return s.update("updateCell", func(wb models.Workbook) (models.Workbook, error) {
		return edit.UpdateCell(wb, sheet, table, row, col, value, s.schema)
	})
}

// InsertRow inserts an empty row.
func (s *Session) InsertRow(sheet, table, at int) (Update, error) {
	return s.update("insertRow", func(wb models.Workbook) (models.Workbook, error) {
		return edit.InsertRow(wb, sheet, table, at)
	})
}

// DeleteRows removes rows.
func (s *Session) DeleteRows(sheet, table int, rows []int) (Update, error) {
	return s.update("deleteRows", func(wb models.Workbook) (models.Workbook, error) {
		return edit.DeleteRows(wb, sheet, table, rows)
	})
}

// MoveRows moves rows as one block before target.
func (s *Session) MoveRows(sheet, table int, rows []int, target int) (Update, error) {
	return s.update("moveRows", func(wb models.Workbook) (models.Workbook, error) {
		return edit.MoveRows(wb, sheet, table, rows, target)
	})
}

// SortRows sorts body rows by one column.
func (s *Session) SortRows(sheet, table, col int, ascending bool) (Update, error) {
	return s.update("sortRows", func(wb models.Workbook) (models.Workbook, error) {
		return edit.SortRows(wb, sheet, table, col, ascending)
	})
}

// InsertColumn inserts a column.
func (s *Session) InsertColumn(sheet, table, at int, name string) (Update, error) {
	return s.update("insertColumn", func(wb models.Workbook) (models.Workbook, error) {
		return edit.InsertColumn(wb, sheet, table, at, name)
	})
}

// DeleteColumns removes columns.
func (s *Session) DeleteColumns(sheet, table int, cols []int) (Update, error) {
	return s.update("deleteColumns", func(wb models.Workbook) (models.Workbook, error) {
		return edit.DeleteColumns(wb, sheet, table, cols)
	})
}

// MoveColumns moves columns as one block before target.
func (s *Session) MoveColumns(sheet, table int, cols []int, target int) (Update, error) {
	return s.update("moveColumns", func(wb models.Workbook) (models.Workbook, error) {
		return edit.MoveColumns(wb, sheet, table, cols, target)
	})
}

// ClearColumns empties the body cells of columns.
func (s *Session) ClearColumns(sheet, table int, cols []int) (Update, error) {
	return s.update("clearColumns", func(wb models.Workbook) (models.Workbook, error) {
		return edit.ClearColumns(wb, sheet, table, cols)
	})
}

// UpdateColumnWidth stores a column width.
func (s *Session) UpdateColumnWidth(sheet, table, col int, width float64) (Update, error) {
	return s.update("updateColumnWidth", func(wb models.Workbook) (models.Workbook, error) {
		return edit.UpdateColumnWidth(wb, sheet, table, col, width)
	})
}

// UpdateColumnFilter stores a column filter.
func (s *Session) UpdateColumnFilter(sheet, table, col int, hidden []string) (Update, error) {
	return s.update("updateColumnFilter", func(wb models.Workbook) (models.Workbook, error) {
		return edit.UpdateColumnFilter(wb, sheet, table, col, hidden)
	})
}

// UpdateColumnFormat stores a column format.
func (s *Session) UpdateColumnFormat(sheet, table, col int, format json.RawMessage) (Update, error) {
	return s.update("updateColumnFormat", func(wb models.Workbook) (models.Workbook, error) {
		return edit.UpdateColumnFormat(wb, sheet, table, col, format)
	})
}

// UpdateColumnAlign sets a column alignment.
func (s *Session) UpdateColumnAlign(sheet, table, col int, align models.Alignment) (Update, error) {
	return s.update("updateColumnAlign", func(wb models.Workbook) (models.Workbook, error) {
		return edit.UpdateColumnAlign(wb, sheet, table, col, align)
	})
}

// PasteCells writes a block of values.
func (s *Session) PasteCells(sheet, table, row, col int, data [][]string, includeHeaders bool) (Update, error) {
	return s.update("pasteCells", func(wb models.Workbook) (models.Workbook, error) {
		return edit.PasteCells(wb, sheet, table, row, col, data, includeHeaders, s.schema)
	})
}

// MoveCells moves a block of cells.
func (s *Session) MoveCells(sheet, table int, src models.CellRange, row, col int) (Update, error) {
	return s.update("moveCells", func(wb models.Workbook) (models.Workbook, error) {
		return edit.MoveCells(wb, sheet, table, src, row, col)
	})
}

// UpdateTabOrder replaces the tab order.
func (s *Session) UpdateTabOrder(order []models.TabOrderEntry) (Update, error) {
	return s.update("updateTabOrder", func(wb models.Workbook) (models.Workbook, error) {
		return edit.UpdateTabOrder(wb, order), nil
	})
}

// AddDocument inserts a document section.
func (s *Session) AddDocument(p edit.AddDocumentParams) (Update, error) {
	return s.updateText("addDocument", func(text string, wb models.Workbook) (edit.TextEdit, error) {
		return edit.AddDocument(text, wb, s.layout, p)
	})
}

// RenameDocument renames a document section.
func (s *Session) RenameDocument(doc int, title string) (Update, error) {
	return s.updateText("renameDocument", func(text string, wb models.Workbook) (edit.TextEdit, error) {
		return edit.RenameDocument(text, wb, s.layout, doc, title)
	})
}

// DeleteDocument removes a document section.
func (s *Session) DeleteDocument(doc int) (Update, error) {
	return s.updateText("deleteDocument", func(text string, wb models.Workbook) (edit.TextEdit, error) {
		return edit.DeleteDocument(text, wb, s.layout, doc)
	})
}

// MoveDocumentSection moves a document section.
func (s *Session) MoveDocumentSection(p edit.MoveDocumentParams) (Update, error) {
	return s.updateText("moveDocumentSection", func(text string, wb models.Workbook) (edit.TextEdit, error) {
		return edit.MoveDocumentSection(text, wb, s.layout, p)
	})
}

// MoveWorkbookSection moves the workbook region.
func (s *Session) MoveWorkbookSection(p edit.MoveWorkbookParams) (Update, error) {
	return s.updateText("moveWorkbookSection", func(text string, wb models.Workbook) (edit.TextEdit, error) {
		return edit.MoveWorkbookSection(text, wb, s.layout, p)
	})
}
