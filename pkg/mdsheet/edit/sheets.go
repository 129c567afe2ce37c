package edit

import (
	"fmt"
	"slices"

	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/models"
	"github.com/ukaji3/mdsheet-go/pkg/mdsheet/taborder"
)

// AddSheetParams describes a new sheet.
type AddSheetParams struct {
	// Name defaults to the first free "Sheet N".
	Name string
	// Headers default to DefaultHeaders.
	Headers []string
	// Index is the physical position; nil or out of range appends.
	Index *int
	// TabPosition is the display position of the new tab; nil appends it.
	TabPosition *int
}

// orderFor returns the current tab order, synthesized from structure when absent.
func orderFor(wb models.Workbook, structure []models.Section) []models.TabOrderEntry {
	if wb.Metadata.TabOrder != nil {
		return slices.Clone(wb.Metadata.TabOrder)
	}
	return taborder.Synthesize(structure, len(wb.Sheets))
}

// AddSheet inserts a sheet holding one table with a single empty row.
//
// The new sheet gets a tab entry, and entries of later sheets are renumbered. An order that
// ends up listing only the sheets in physical order is dropped.
func AddSheet(wb models.Workbook, p AddSheetParams, structure []models.Section) (models.Workbook, error) {
	n := len(wb.Sheets)
	at := n
	if p.Index != nil && *p.Index >= 0 && *p.Index <= n {
		at = *p.Index
	}
	name := p.Name
	if name == "" {
		name = freeSheetName(wb.Sheets)
	}
	sheet := models.Sheet{Name: name, Tables: []models.Table{newTable("", p.Headers)}}

	pos := -1
	if p.TabPosition != nil {
		pos = *p.TabPosition
	}
	order := taborder.Insert(orderFor(wb, structure), models.ItemSheet, at, pos)
	if taborder.IsTrivial(order, n+1) {
		order = nil
	}

	out := wb.WithSheets(slices.Insert(slices.Clone(wb.Sheets), at, sheet))
	out.Metadata = wb.Metadata.WithTabOrder(order)
	return out, nil
}

func freeSheetName(sheets []models.Sheet) string {
	for i := len(sheets) + 1; ; i++ {
		name := fmt.Sprintf("Sheet %d", i)
		if !slices.ContainsFunc(sheets, func(s models.Sheet) bool { return s.Name == name }) {
			return name
		}
	}
}

// DeleteSheet removes a sheet and its tab entry.
func DeleteSheet(wb models.Workbook, s int) (models.Workbook, error) {
	if err := checkIndex("sheet", s, len(wb.Sheets)); err != nil {
		return wb, err
	}
	out := wb.WithSheets(slices.Delete(slices.Clone(wb.Sheets), s, s+1))
	if wb.Metadata.TabOrder != nil {
		out.Metadata = wb.Metadata.WithTabOrder(taborder.Remove(wb.Metadata.TabOrder, models.ItemSheet, s))
	}
	return out, nil
}

// RenameSheet sets a sheet's heading.
func RenameSheet(wb models.Workbook, s int, name string) (models.Workbook, error) {
	return updateSheet(wb, s, func(sheet models.Sheet) (models.Sheet, error) {
		sheet.Name = name
		return sheet, nil
	})
}

// MoveSheet moves sheet from to physical index to (pop then insert, clamped), renumbering
// the tab order. With tabTarget the moved tab is also placed at that display position.
func MoveSheet(wb models.Workbook, from, to int, tabTarget *int, structure []models.Section) (models.Workbook, error) {
	n := len(wb.Sheets)
	if err := checkIndex("sheet", from, n); err != nil {
		return wb, err
	}
	to = max(0, min(to, n-1))

	sheets := slices.Clone(wb.Sheets)
	moved := sheets[from]
	sheets = slices.Insert(slices.Delete(sheets, from, from+1), to, moved)
	out := wb.WithSheets(sheets)

	if wb.Metadata.TabOrder == nil && tabTarget == nil {
		return out, nil
	}
	order := taborder.Reconcile(orderFor(wb, structure), models.ItemSheet, from, to, tabTarget)
	out.Metadata = wb.Metadata.WithTabOrder(order)
	return out, nil
}

// UpdateTabOrder replaces the tab order. A nil order removes it.
func UpdateTabOrder(wb models.Workbook, order []models.TabOrderEntry) models.Workbook {
	out := wb
	out.Metadata = wb.Metadata.WithTabOrder(slices.Clone(order))
	return out
}
